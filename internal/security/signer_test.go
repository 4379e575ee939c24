package security

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	signer, err := NewStateSigner()
	require.NoError(t, err)

	signed, err := signer.Sign(map[string]interface{}{
		"total":    12345.0,
		"true_apy": 11.2,
	})
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKey(), signed.PublicKey)

	ok, err := Verify(signed)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	signer, err := NewStateSigner()
	require.NoError(t, err)

	signed, err := signer.Sign(map[string]interface{}{"total": 100.0})
	require.NoError(t, err)

	signed.Payload = json.RawMessage(`{"total":999}`)
	ok, err := Verify(signed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsAlteredTimestamp(t *testing.T) {
	signer, err := NewStateSigner()
	require.NoError(t, err)

	signed, err := signer.Sign(map[string]interface{}{"total": 100.0})
	require.NoError(t, err)

	signed.SignedAt++
	ok, err := Verify(signed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedSignature(t *testing.T) {
	signer, err := NewStateSigner()
	require.NoError(t, err)

	signed, err := signer.Sign(map[string]interface{}{"total": 100.0})
	require.NoError(t, err)

	signed.Signature = "not-hex"
	_, err = Verify(signed)
	assert.Error(t, err)

	signed.Signature = "0x0102"
	_, err = Verify(signed)
	assert.Error(t, err)
}
