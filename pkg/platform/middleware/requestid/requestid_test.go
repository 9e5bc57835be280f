package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibancheck/pkg/requestcontext"
)

func serve(t *testing.T, inbound string) (ctxID string, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestcontext.RequestID(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		r.Header.Set(Header, inbound)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return ctxID, rec
}

func TestGeneratesIDWhenMissing(t *testing.T) {
	id, rec := serve(t, "")

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.Header().Get(Header))
}

func TestReusesWellFormedInboundID(t *testing.T) {
	id, rec := serve(t, "trace-abc.123")

	assert.Equal(t, "trace-abc.123", id)
	assert.Equal(t, "trace-abc.123", rec.Header().Get(Header))
}

func TestReplacesMalformedInboundID(t *testing.T) {
	id, _ := serve(t, "bad id with spaces")

	assert.NotEqual(t, "bad id with spaces", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
