// ABOUTME: Tests for the remote configuration service client
// ABOUTME: Verifies request shapes against an httptest server

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

func newCaptureServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.EscapedPath()
		captured.Auth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		captured.Body = body
		w.WriteHeader(status)
		if response != "" {
			w.Write([]byte(response))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestGetAgentConfig(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK,
		`{"tenant_id":"acme","system_prompt":"be helpful"}`)

	client := NewClient(srv.URL, "tok", time.Second)
	cfg, err := client.GetAgentConfig(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/api/admin/agent-config/acme", captured.Path)
	assert.Equal(t, "Bearer tok", captured.Auth)
	assert.Equal(t, "be helpful", cfg.SystemPrompt)
}

func TestPutAgentConfigForcesTenantID(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, "")

	client := NewClient(srv.URL, "tok", time.Second)
	err := client.PutAgentConfig(context.Background(), "acme", &TenantConfiguration{
		TenantID:     "someone-else",
		SystemPrompt: "be helpful",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "/api/admin/agent-config/acme", captured.Path)

	var sent TenantConfiguration
	require.NoError(t, json.Unmarshal(captured.Body, &sent))
	assert.Equal(t, "acme", sent.TenantID, "path tenant wins over body tenant")
}

func TestListKnowledgeBases(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK,
		`[{"id":"1","name":"A","content":"x"},{"id":"2","name":"B","content":"y"}]`)

	client := NewClient(srv.URL, "tok", time.Second)
	records, err := client.ListKnowledgeBases(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, "/api/knowledge-bases/acme", captured.Path)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "B", records[1].Name)
}

func TestCreateKnowledgeBaseStripsID(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusCreated, "")

	client := NewClient(srv.URL, "tok", time.Second)
	err := client.CreateKnowledgeBase(context.Background(), "acme", &KnowledgeBaseRecord{
		ID:      "stale-local-id",
		Name:    "FAQs",
		Content: "q and a",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/api/knowledge-bases/acme", captured.Path)

	var sent KnowledgeBaseRecord
	require.NoError(t, json.Unmarshal(captured.Body, &sent))
	assert.Empty(t, sent.ID, "server assigns IDs")
	assert.Equal(t, "FAQs", sent.Name)
}

func TestUpdateKnowledgeBase(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, "")

	client := NewClient(srv.URL, "tok", time.Second)
	err := client.UpdateKnowledgeBase(context.Background(), "acme", "42", &KnowledgeBaseRecord{
		ID:      "42",
		Name:    "Pricing",
		Content: "tiers",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "/api/knowledge-bases/acme/42", captured.Path)
}

func TestDeleteKnowledgeBase(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusNoContent, "")

	client := NewClient(srv.URL, "tok", time.Second)
	err := client.DeleteKnowledgeBase(context.Background(), "acme", "17")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, "/api/knowledge-bases/acme/17", captured.Path)
}

func TestNonSuccessStatusBecomesStatusError(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusForbidden, `{"error":"no such tenant"}`)

	client := NewClient(srv.URL, "tok", time.Second)
	_, err := client.GetAgentConfig(context.Background(), "acme")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Contains(t, statusErr.Body, "no such tenant")
}

func TestPathEscaping(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusNoContent, "")

	client := NewClient(srv.URL, "tok", time.Second)
	err := client.DeleteKnowledgeBase(context.Background(), "acme", "id/with spaces")
	require.NoError(t, err)

	assert.Equal(t, "/api/knowledge-bases/acme/id%2Fwith%20spaces", captured.Path)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `[]`)

	client := NewClient(srv.URL, "", time.Second)
	_, err := client.ListKnowledgeBases(context.Background(), "acme")
	require.NoError(t, err)

	assert.Empty(t, captured.Auth)
}

func TestPersisted(t *testing.T) {
	assert.False(t, (&KnowledgeBaseRecord{Name: "A"}).Persisted())
	assert.True(t, (&KnowledgeBaseRecord{ID: "7", Name: "A"}).Persisted())
}
