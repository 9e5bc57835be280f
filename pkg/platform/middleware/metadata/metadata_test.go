package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibancheck/pkg/requestcontext"
)

func mustTrust(t *testing.T, entries ...string) TrustedProxies {
	t.Helper()
	trusted, err := ParseTrustedProxies(entries)
	require.NoError(t, err)
	return trusted
}

func TestParseTrustedProxies(t *testing.T) {
	trusted := mustTrust(t, "10.0.0.0/8", "127.0.0.1", "::1", "192.168.1.77/24")

	assert.True(t, trusted.Contains("10.20.30.40"))
	assert.True(t, trusted.Contains("127.0.0.1"))
	assert.True(t, trusted.Contains("::1"))
	assert.True(t, trusted.Contains("::ffff:127.0.0.1"), "IPv4-mapped addresses match their IPv4 entry")
	assert.True(t, trusted.Contains("192.168.1.5"), "host bits in a prefix are masked")
	assert.False(t, trusted.Contains("127.0.0.2"))
	assert.False(t, trusted.Contains("not-an-ip"))

	for _, bad := range []string{"10.0.0.0/33", "proxy.internal", ""} {
		_, err := ParseTrustedProxies([]string{bad})
		assert.Error(t, err, "entry %q", bad)
	}

	none, err := ParseTrustedProxies(nil)
	require.NoError(t, err)
	assert.False(t, none.Contains("127.0.0.1"))
}

func TestClientIPFromRequest(t *testing.T) {
	proxies := []string{"10.0.0.0/8"}

	tests := []struct {
		name    string
		trusted []string
		headers map[string]string
		remote  string
		want    string
	}{
		{"untrusted peer ignores forwarded for", nil, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "203.0.113.50:4000", "203.0.113.50"},
		{"untrusted peer ignores real ip", nil, map[string]string{"X-Real-IP": "198.51.100.1"}, "203.0.113.50:4000", "203.0.113.50"},
		{"trusted proxy single hop", proxies, map[string]string{"X-Forwarded-For": " 203.0.113.8 "}, "10.0.0.2:4000", "203.0.113.8"},
		{"trusted chain skips inner proxies", proxies, map[string]string{"X-Forwarded-For": "198.51.100.4, 203.0.113.7, 10.0.0.9"}, "10.0.0.2:4000", "203.0.113.7"},
		{"spoofed left-most entry is not used", proxies, map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7"}, "10.0.0.2:4000", "203.0.113.7"},
		{"chain of proxies only", proxies, map[string]string{"X-Forwarded-For": "10.1.1.1, 10.0.0.9"}, "10.0.0.2:4000", "10.1.1.1"},
		{"trusted proxy real ip", proxies, map[string]string{"X-Real-IP": "198.51.100.1"}, "10.0.0.2:4000", "198.51.100.1"},
		{"trusted proxy without headers", proxies, nil, "10.0.0.2:4000", "10.0.0.2"},
		{"remote ipv6", nil, nil, "[::1]:8080", "::1"},
		{"no port", nil, nil, "192.0.2.11", "192.0.2.11"},
		{"nothing", nil, nil, "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, mustTrust(t, tt.trusted...)))
		})
	}
}

func TestClientMetadata_RotatingForwardedForKeepsOneAddress(t *testing.T) {
	seen := map[string]int{}
	h := ClientMetadata(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[requestcontext.ClientIP(r.Context())]++
	}))

	for _, spoofed := range []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		r := httptest.NewRequest(http.MethodPost, "/v1/iban/validate", nil)
		r.RemoteAddr = "203.0.113.50:51000"
		r.Header.Set("X-Forwarded-For", spoofed)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	assert.Equal(t, map[string]int{"203.0.113.50": 5}, seen)
}

func TestClientMetadataPopulatesContext(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(mustTrust(t, "192.0.2.0/24"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:1234"
	r.Header.Set("X-Forwarded-For", "198.51.100.77")
	r.Header.Set("User-Agent", "ibancheck-test")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.77", ip)
	assert.Equal(t, "ibancheck-test", ua)
}
