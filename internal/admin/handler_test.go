package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/sentinel"
)

type stubLister struct {
	events    []audit.Event
	err       error
	lastLimit int
}

func (s *stubLister) List(_ context.Context, limit int) ([]audit.Event, error) {
	s.lastLimit = limit
	return s.events, s.err
}

func serve(lister AuditLister, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(lister, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleRecentAudit(t *testing.T) {
	lister := &stubLister{events: []audit.Event{{ID: "e1", Action: string(audit.EventIBANValidated)}}}

	w := serve(lister, "/admin/audit/recent?limit=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, lister.lastLimit)

	var resp AuditEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "e1", resp.Events[0].ID)
}

func TestHandleRecentAudit_Limits(t *testing.T) {
	lister := &stubLister{}

	w := serve(lister, "/admin/audit/recent")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultAuditLimit, lister.lastLimit)
	assert.JSONEq(t, `{"events":[],"total":0}`, w.Body.String())

	serve(lister, "/admin/audit/recent?limit=100000")
	assert.Equal(t, maxAuditLimit, lister.lastLimit)

	for _, bad := range []string{"0", "-1", "abc"} {
		w := serve(lister, "/admin/audit/recent?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestHandleRecentAudit_StoreError(t *testing.T) {
	w := serve(&stubLister{err: errors.New("db gone")}, "/admin/audit/recent")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db gone")
}

func TestHandleRecentAudit_StoreUnavailable(t *testing.T) {
	err := fmt.Errorf("query audit events: %w: %w", sentinel.ErrUnavailable, errors.New("connection refused"))
	w := serve(&stubLister{err: err}, "/admin/audit/recent")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
