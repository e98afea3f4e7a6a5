// ABOUTME: HTTP API handlers for the admin dashboard routes
// ABOUTME: Thin forwards to the remote service plus the reconciling save endpoint

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/spotfunnel/voiceos-admin/internal/draft"
	"github.com/spotfunnel/voiceos-admin/internal/reconcile"
	"github.com/spotfunnel/voiceos-admin/internal/remote"
	"github.com/spotfunnel/voiceos-admin/internal/store"
)

// SaveRequest is the JSON request body for POST /api/admin/tenants/{id}/save.
// It carries the administrator's full draft: the configuration to replace,
// the knowledge-base list as edited, and the IDs pending deletion.
type SaveRequest struct {
	Config    remote.TenantConfiguration   `json:"config"`
	Records   []remote.KnowledgeBaseRecord `json:"records"`
	Deletions []string                     `json:"deletions"`
}

// OperationResponse is one per-operation result in a save response.
type OperationResponse struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// SaveResponse is the JSON response for the save endpoint. Records holds the
// rehydrated list, so client-created records come back with server IDs.
type SaveResponse struct {
	SaveID     string                       `json:"save_id"`
	Success    bool                         `json:"success"`
	ConfigOK   bool                         `json:"config_ok"`
	KBOk       bool                         `json:"kb_ok"`
	Operations []OperationResponse          `json:"operations"`
	Records    []remote.KnowledgeBaseRecord `json:"records"`
}

// SaveHistoryEntry is one row of GET /api/admin/tenants/{id}/saves.
type SaveHistoryEntry struct {
	SaveID     string              `json:"save_id"`
	TenantID   string              `json:"tenant_id"`
	Success    bool                `json:"success"`
	ConfigOK   bool                `json:"config_ok"`
	KBOk       bool                `json:"kb_ok"`
	Operations []OperationResponse `json:"operations"`
	StartedAt  string              `json:"started_at"`
	FinishedAt string              `json:"finished_at"`
}

// handleHealth handles GET /health.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady handles GET /health/ready by probing the remote service.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	// The gateway is only useful if the remote service answers; a probe
	// read against a well-known tenant is not possible, so report ready
	// based on local state alone.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleAgentConfig handles /api/admin/agent-config/{tenantID}.
func (g *Gateway) handleAgentConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := strings.TrimPrefix(r.URL.Path, "/api/admin/agent-config/")
	if tenantID == "" || strings.Contains(tenantID, "/") {
		writeError(w, http.StatusNotFound, "unknown route")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if cfg, ok := g.configCache.Get(tenantID); ok {
			writeJSON(w, http.StatusOK, cfg)
			return
		}
		cfg, err := g.remote.GetAgentConfig(r.Context(), tenantID)
		if err != nil {
			writeRemoteError(w, err)
			return
		}
		g.configCache.Put(tenantID, cfg)
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodPut:
		var cfg remote.TenantConfiguration
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := g.remote.PutAgentConfig(r.Context(), tenantID, &cfg); err != nil {
			writeRemoteError(w, err)
			return
		}
		g.configCache.Invalidate(tenantID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleKnowledgeBases handles /api/knowledge-bases/{tenantID}[/{kbID}].
func (g *Gateway) handleKnowledgeBases(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/knowledge-bases/")
	parts := strings.SplitN(rest, "/", 2)
	tenantID := parts[0]
	if tenantID == "" {
		writeError(w, http.StatusNotFound, "unknown route")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			records, err := g.remote.ListKnowledgeBases(r.Context(), tenantID)
			if err != nil {
				writeRemoteError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, records)
		case http.MethodPost:
			rec, ok := decodeRecord(w, r)
			if !ok {
				return
			}
			if err := g.remote.CreateKnowledgeBase(r.Context(), tenantID, rec); err != nil {
				writeRemoteError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	kbID := parts[1]
	if kbID == "" || strings.Contains(kbID, "/") {
		writeError(w, http.StatusNotFound, "unknown route")
		return
	}

	switch r.Method {
	case http.MethodPut:
		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		if err := g.remote.UpdateKnowledgeBase(r.Context(), tenantID, kbID, rec); err != nil {
			writeRemoteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case http.MethodDelete:
		if err := g.remote.DeleteKnowledgeBase(r.Context(), tenantID, kbID); err != nil {
			writeRemoteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleTenantRoutes handles /api/admin/tenants/{tenantID}/save and /saves.
func (g *Gateway) handleTenantRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/tenants/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "unknown route")
		return
	}
	tenantID := parts[0]

	switch parts[1] {
	case "save":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		g.handleSave(w, r, tenantID)
	case "saves":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		g.handleListSaves(w, r, tenantID)
	default:
		writeError(w, http.StatusNotFound, "unknown route")
	}
}

// handleSave runs one reconciliation for the tenant's submitted draft.
func (g *Gateway) handleSave(w http.ResponseWriter, r *http.Request, tenantID string) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := draft.Load(req.Config, req.Records, req.Deletions)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !g.beginSave(tenantID) {
		writeError(w, http.StatusConflict, "save already in flight for tenant")
		return
	}
	defer g.endSave(tenantID)

	opts := []reconcile.Option{reconcile.WithLogger(g.logger)}
	if g.config.Save.Policy == "bounded" {
		opts = append(opts, reconcile.WithPolicy(reconcile.Bounded(g.config.Save.Parallelism)))
	}
	if g.config.Save.KeepUnsavedDrafts {
		opts = append(opts, reconcile.WithKeepUnsavedDrafts())
	}

	rec := reconcile.New(g.remote, d, tenantID, opts...)
	report, err := rec.Save(r.Context())
	if err != nil {
		// Only ErrSaveInFlight reaches here, and the per-tenant guard
		// already closed that window; treat anything else as conflict too.
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	g.configCache.Invalidate(tenantID)

	attempt := attemptFromReport(report)
	if err := g.store.AppendSave(r.Context(), attempt); err != nil {
		g.logger.Error("recording save attempt", "error", err, "save_id", report.SaveID)
	}

	resp := SaveResponse{
		SaveID:     report.SaveID,
		Success:    report.Success(),
		ConfigOK:   report.ConfigOK(),
		KBOk:       report.KnowledgeBasesOK(),
		Operations: operationsFromReport(report),
		Records:    d.Records(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListSaves serves the persisted save history for a tenant.
func (g *Gateway) handleListSaves(w http.ResponseWriter, r *http.Request, tenantID string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	attempts, err := g.store.ListSaves(r.Context(), store.SaveFilter{TenantID: tenantID, Limit: limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing saves failed")
		return
	}

	entries := make([]SaveHistoryEntry, 0, len(attempts))
	for _, a := range attempts {
		ops := make([]OperationResponse, 0, len(a.Operations))
		for _, op := range a.Operations {
			ops = append(ops, OperationResponse{
				Kind:   op.Kind,
				Target: op.Target,
				OK:     op.Error == "",
				Error:  op.Error,
			})
		}
		entries = append(entries, SaveHistoryEntry{
			SaveID:     a.ID,
			TenantID:   a.TenantID,
			Success:    a.Success,
			ConfigOK:   a.ConfigOK,
			KBOk:       a.KnowledgeBasesOK,
			Operations: ops,
			StartedAt:  a.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			FinishedAt: a.FinishedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"saves": entries})
}

// attemptFromReport converts a reconcile report into its persisted form.
func attemptFromReport(report *reconcile.Report) *store.SaveAttempt {
	ops := make([]store.OperationRecord, 0, len(report.Operations))
	for _, op := range report.Operations {
		rec := store.OperationRecord{Kind: string(op.Kind), Target: op.Target}
		if op.Err != nil {
			rec.Error = op.Err.Error()
		}
		ops = append(ops, rec)
	}
	return &store.SaveAttempt{
		ID:               report.SaveID,
		TenantID:         report.TenantID,
		Success:          report.Success(),
		ConfigOK:         report.ConfigOK(),
		KnowledgeBasesOK: report.KnowledgeBasesOK(),
		Operations:       ops,
		StartedAt:        report.Started,
		FinishedAt:       report.Finished,
	}
}

// operationsFromReport converts report results into response DTOs.
func operationsFromReport(report *reconcile.Report) []OperationResponse {
	ops := make([]OperationResponse, 0, len(report.Operations))
	for _, op := range report.Operations {
		res := OperationResponse{Kind: string(op.Kind), Target: op.Target, OK: op.OK()}
		if op.Err != nil {
			res.Error = op.Err.Error()
		}
		ops = append(ops, res)
	}
	return ops
}

// decodeRecord decodes a knowledge-base record body, writing a 400 on failure.
func decodeRecord(w http.ResponseWriter, r *http.Request) (*remote.KnowledgeBaseRecord, bool) {
	var rec remote.KnowledgeBaseRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &rec, true
}

// writeRemoteError maps a remote call failure onto this response. Non-2xx
// statuses from the remote pass through; transport failures become 502.
func writeRemoteError(w http.ResponseWriter, err error) {
	var statusErr *remote.StatusError
	if errors.As(err, &statusErr) {
		writeError(w, statusErr.Code, "remote service error")
		return
	}
	writeError(w, http.StatusBadGateway, "remote service unreachable")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
