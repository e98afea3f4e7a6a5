// Package remote implements the HTTP client for the remote configuration
// service, the authoritative store for tenant agent configuration and
// knowledge-base records.
//
// # Surface
//
// The service exposes whole-object replace for the configuration and
// per-record CRUD for knowledge bases:
//
//   - GET    /api/admin/agent-config/{tenantID}
//   - PUT    /api/admin/agent-config/{tenantID}
//   - GET    /api/knowledge-bases/{tenantID}
//   - POST   /api/knowledge-bases/{tenantID}
//   - PUT    /api/knowledge-bases/{tenantID}/{kbID}
//   - DELETE /api/knowledge-bases/{tenantID}/{kbID}
//
// There is no batch or transaction support: every call stands alone, and the
// reconciler built on top of this client inherits that contract.
//
// # Errors
//
// Transport failures surface as ordinary errors; non-2xx responses become a
// *StatusError carrying the status code and a short body prefix.
package remote
