package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigner_SignAndVerify(t *testing.T) {
	signer, err := NewInMemorySecp256K1Signer()
	require.NoError(t, err)
	data := []byte("register airline")

	sig, err := signer.SignBytes(data)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	verifier, err := signer.Verifier()
	require.NoError(t, err)
	require.NoError(t, verifier.VerifyBytes(sig, data))
	require.ErrorIs(t, verifier.VerifyBytes(sig, []byte("fund")), ErrVerificationFailed)
	require.EqualError(t, verifier.VerifyBytes(sig[:64], data), "signature length is 64 b (expected 65 b)")

	pub, err := verifier.MarshalPublicKey()
	require.NoError(t, err)
	require.Len(t, pub, 33)
	v2, err := NewVerifierSecp256k1(pub)
	require.NoError(t, err)
	require.NoError(t, v2.VerifyBytes(sig, data))

	addr, err := PubKeyToAddress(pub)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), addr)
}

func TestSigner_FromKey(t *testing.T) {
	signer, err := NewInMemorySecp256K1Signer()
	require.NoError(t, err)
	key, err := signer.MarshalPrivateKey()
	require.NoError(t, err)

	restored, err := NewInMemorySecp256K1SignerFromKey(key)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), restored.Address())

	_, err = NewInMemorySecp256K1SignerFromKey([]byte{1, 2, 3})
	require.ErrorContains(t, err, "invalid private key")

	var nilSigner *InMemorySecp256K1Signer
	_, err = nilSigner.SignBytes(key)
	require.EqualError(t, err, "signer is nil")
}

func TestRecoverAddress(t *testing.T) {
	signer, err := NewInMemorySecp256K1Signer()
	require.NoError(t, err)
	data := []byte{1, 2, 3}
	sig, err := signer.SignBytes(data)
	require.NoError(t, err)

	addr, err := RecoverAddress(sig, data)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), addr)

	// different data recovers some other key
	addr, err = RecoverAddress(sig, []byte{3, 2, 1})
	require.NoError(t, err)
	require.NotEqual(t, signer.Address(), addr)

	_, err = RecoverAddress(nil, data)
	require.EqualError(t, err, "signature length is 0 b (expected 65 b)")
}

func TestNewVerifierSecp256k1_InvalidKey(t *testing.T) {
	_, err := NewVerifierSecp256k1([]byte{1})
	require.EqualError(t, err, "invalid public key length 1")

	_, err = NewVerifierSecp256k1(make([]byte, 33))
	require.ErrorContains(t, err, "invalid public key")
}
