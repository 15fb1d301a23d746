package crypto

import (
	"crypto/ecdsa"

	"github.com/flightsurety/flightsurety/types"
)

type (
	// Signer component for digitally signing data.
	Signer interface {
		// SignBytes hashes the data with Keccak-256 and signs the hash using the
		// private key of the Signer. Returns 65 byte recoverable signature.
		SignBytes(data []byte) ([]byte, error)
		// MarshalPrivateKey returns the private key bytes so these could be unmarshalled later to create the Signer.
		MarshalPrivateKey() ([]byte, error)
		// Verifier returns a verifier that verifies using the public key part.
		Verifier() (Verifier, error)
		// Address returns the principal address derived from the public key.
		Address() types.Address
	}

	// Verifier component for verifying signatures.
	Verifier interface {
		// VerifyBytes verifies the bytes against the signature, using the internal public key.
		VerifyBytes(sig []byte, data []byte) error
		// MarshalPublicKey marshal verifier public key to bytes.
		MarshalPublicKey() ([]byte, error)
		// UnmarshalPubKey returns the public key of the verifier.
		UnmarshalPubKey() (*ecdsa.PublicKey, error)
	}
)
