package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/flightsurety/flightsurety/types"
)

// SignatureLength is the length of the recoverable signature [R || S || V].
const SignatureLength = ethcrypto.SignatureLength

// InMemorySecp256K1Signer keeps the private key in memory, used by tests,
// the genesis command and development setups.
type InMemorySecp256K1Signer struct {
	key *ecdsa.PrivateKey
}

// NewInMemorySecp256K1Signer generates new key and creates a new InMemorySecp256K1Signer.
func NewInMemorySecp256K1Signer() (*InMemorySecp256K1Signer, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating secp256k1 key: %w", err)
	}
	return &InMemorySecp256K1Signer{key: key}, nil
}

// NewInMemorySecp256K1SignerFromKey creates new InMemorySecp256K1Signer from private key bytes.
func NewInMemorySecp256K1SignerFromKey(privKey []byte) (*InMemorySecp256K1Signer, error) {
	key, err := ethcrypto.ToECDSA(privKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &InMemorySecp256K1Signer{key: key}, nil
}

func (s *InMemorySecp256K1Signer) SignBytes(data []byte) ([]byte, error) {
	if s == nil {
		return nil, errors.New("signer is nil")
	}
	return s.SignHash(ethcrypto.Keccak256(data))
}

// SignHash signs 32 byte hash.
func (s *InMemorySecp256K1Signer) SignHash(hash []byte) ([]byte, error) {
	if s == nil {
		return nil, errors.New("signer is nil")
	}
	sig, err := ethcrypto.Sign(hash, s.key)
	if err != nil {
		return nil, fmt.Errorf("signing hash: %w", err)
	}
	return sig, nil
}

func (s *InMemorySecp256K1Signer) MarshalPrivateKey() ([]byte, error) {
	if s == nil {
		return nil, errors.New("signer is nil")
	}
	return ethcrypto.FromECDSA(s.key), nil
}

func (s *InMemorySecp256K1Signer) Verifier() (Verifier, error) {
	if s == nil {
		return nil, errors.New("signer is nil")
	}
	return &verifierSecp256k1{key: &s.key.PublicKey}, nil
}

func (s *InMemorySecp256K1Signer) Address() types.Address {
	return ethcrypto.PubkeyToAddress(s.key.PublicKey)
}
