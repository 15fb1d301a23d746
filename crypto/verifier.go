package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/flightsurety/flightsurety/types"
)

var ErrVerificationFailed = errors.New("verification failed")

type verifierSecp256k1 struct {
	key *ecdsa.PublicKey
}

// NewVerifierSecp256k1 creates new verifier from compressed or uncompressed public key bytes.
func NewVerifierSecp256k1(pubKey []byte) (Verifier, error) {
	var key *ecdsa.PublicKey
	var err error
	switch len(pubKey) {
	case 33:
		key, err = ethcrypto.DecompressPubkey(pubKey)
	case 65:
		key, err = ethcrypto.UnmarshalPubkey(pubKey)
	default:
		return nil, fmt.Errorf("invalid public key length %d", len(pubKey))
	}
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return &verifierSecp256k1{key: key}, nil
}

func (v *verifierSecp256k1) VerifyBytes(sig []byte, data []byte) error {
	if len(sig) != SignatureLength {
		return fmt.Errorf("signature length is %d b (expected %d b)", len(sig), SignatureLength)
	}
	if !ethcrypto.VerifySignature(v.MarshalPublicKeyUncompressed(), ethcrypto.Keccak256(data), sig[:64]) {
		return ErrVerificationFailed
	}
	return nil
}

// MarshalPublicKey returns the compressed public key.
func (v *verifierSecp256k1) MarshalPublicKey() ([]byte, error) {
	return ethcrypto.CompressPubkey(v.key), nil
}

func (v *verifierSecp256k1) MarshalPublicKeyUncompressed() []byte {
	return ethcrypto.FromECDSAPub(v.key)
}

func (v *verifierSecp256k1) UnmarshalPubKey() (*ecdsa.PublicKey, error) {
	return v.key, nil
}

/*
RecoverAddress returns the address of the key which created the signature
"sig" over the Keccak-256 hash of "data".
*/
func RecoverAddress(sig []byte, data []byte) (types.Address, error) {
	if len(sig) != SignatureLength {
		return types.Address{}, fmt.Errorf("signature length is %d b (expected %d b)", len(sig), SignatureLength)
	}
	pub, err := ethcrypto.SigToPub(ethcrypto.Keccak256(data), sig)
	if err != nil {
		return types.Address{}, fmt.Errorf("recovering public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// PubKeyToAddress returns the address of the compressed or uncompressed public key.
func PubKeyToAddress(pubKey []byte) (types.Address, error) {
	v, err := NewVerifierSecp256k1(pubKey)
	if err != nil {
		return types.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*v.(*verifierSecp256k1).key), nil
}
