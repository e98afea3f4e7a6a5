// Package gateway hosts the admin HTTP server.
//
// # Routes
//
// Thin forwards to the remote configuration service:
//
//   - GET/PUT /api/admin/agent-config/{tenantID} (reads served through a TTL cache)
//   - GET/POST /api/knowledge-bases/{tenantID}
//   - PUT/DELETE /api/knowledge-bases/{tenantID}/{kbID}
//
// Reconciliation and history:
//
//   - POST /api/admin/tenants/{tenantID}/save — run the reconciler over a
//     submitted draft, returning the per-operation report and the rehydrated
//     record list
//   - GET /api/admin/tenants/{tenantID}/saves — persisted save history
//
// Utility:
//
//   - POST /api/admin/preview — render knowledge-base markdown to HTML
//   - GET /health, /health/ready
//
// # Save semantics
//
// The save endpoint is best-effort, mirroring the backend's lack of
// transactions: a response with success=false can still have changed remote
// state, and the operations list says exactly which calls failed. A second
// save for the same tenant while one runs is rejected with 409.
//
// # Serving
//
// The server listens on a plain TCP address or, when configured, joins a
// tailnet via tsnet (optionally exposed publicly with Funnel).
package gateway
