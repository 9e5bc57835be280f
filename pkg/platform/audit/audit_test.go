package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventIBANValidated.Category())
	assert.Equal(t, CategorySecurity, EventRateLimitExceeded.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}

func TestFingerprinter(t *testing.T) {
	f, err := NewFingerprinter([]byte("k1"))
	require.NoError(t, err)
	other, err := NewFingerprinter([]byte("k2"))
	require.NoError(t, err)

	a := f.Fingerprint("DE89370400440532013000")
	assert.Len(t, a, 32)
	assert.Equal(t, a, f.Fingerprint("DE89370400440532013000"), "stable for the same key")
	assert.NotEqual(t, a, f.Fingerprint("DE89370400440532013001"))
	assert.NotEqual(t, a, other.Fingerprint("DE89370400440532013000"), "key changes the digest")
	assert.NotContains(t, a, "370400")
}

func TestFingerprinter_KeyTooLong(t *testing.T) {
	_, err := NewFingerprinter([]byte(strings.Repeat("k", 65)))
	require.Error(t, err)
}

func TestFingerprinter_Nil(t *testing.T) {
	var f *Fingerprinter
	assert.Empty(t, f.Fingerprint("DE89370400440532013000"))
}
