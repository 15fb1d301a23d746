package testsig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flightsurety/flightsurety/crypto"
)

func CreateSignerAndVerifier(t *testing.T) (crypto.Signer, crypto.Verifier) {
	t.Helper()
	signer, err := crypto.NewInMemorySecp256K1Signer()
	require.NoError(t, err)

	verifier, err := signer.Verifier()
	require.NoError(t, err)
	return signer, verifier
}

// NewSigners creates n signers with random keys.
func NewSigners(t *testing.T, n int) []crypto.Signer {
	t.Helper()
	signers := make([]crypto.Signer, n)
	for i := range signers {
		signers[i], _ = CreateSignerAndVerifier(t)
	}
	return signers
}
