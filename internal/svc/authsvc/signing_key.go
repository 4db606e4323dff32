package authsvc

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgrijalva/jwt-go"
)

var (
	// ErrUnknownSigningMethod is returned for signing methods other than HS256 and PS256.
	ErrUnknownSigningMethod = errors.New("unknown signing method")
	// ErrNoSecret is returned when HS256 is selected without a secret.
	ErrNoSecret = errors.New("no signing secret")
	// ErrInvalidSigningKey is returned when the key file does not hold a PEM encoded RSA private key.
	ErrInvalidSigningKey = errors.New("invalid signing key")
)

const (
	// KeyType is the PEM block type for RSA private keys.
	KeyType = "RSA PRIVATE KEY"

	// DefaultKeySize is the RSA key size in bits used when generating a signing key.
	DefaultKeySize = 2048

	// MinSecretLength is the shortest HS256 secret accepted.
	MinSecretLength = 32
)

// signingKeys pairs a JWT signing method with the keys to sign and verify with.
type signingKeys struct {
	method jwt.SigningMethod
	sign   any
	verify any
}

func newSigningKeys(cfg AuthConfig) (signingKeys, error) {
	switch cfg.SigningMethod {
	case jwt.SigningMethodHS256.Alg():
		return signingKeys{
			method: jwt.SigningMethodHS256,
			sign:   []byte(cfg.Secret),
			verify: []byte(cfg.Secret),
		}, nil
	case jwt.SigningMethodPS256.Alg():
		key, err := LoadOrCreatePrivateKey(cfg.SigningKeyFile)
		if err != nil {
			return signingKeys{}, fmt.Errorf("load signing key: %w", err)
		}

		return signingKeys{
			method: jwt.SigningMethodPS256,
			sign:   key,
			verify: &key.PublicKey,
		}, nil
	default:
		return signingKeys{}, fmt.Errorf("%w: %q", ErrUnknownSigningMethod, cfg.SigningMethod)
	}
}

// DecodePrivateKey parses a PEM encoded PKCS #1 RSA private key.
func DecodePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != KeyType {
		return nil, ErrInvalidSigningKey
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Join(ErrInvalidSigningKey, err)
	}

	return key, nil
}

// EncodePrivateKey encodes an RSA private key as a PEM PKCS #1 block.
func EncodePrivateKey(key *rsa.PrivateKey) []byte {
	//nolint:exhaustruct
	return pem.EncodeToMemory(&pem.Block{
		Type:  KeyType,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// LoadOrCreatePrivateKey reads the RSA private key stored at path.
// If the file does not exist, a new key is generated and written there with owner-only permissions.
func LoadOrCreatePrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return DecodePrivateKey(data)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key, err := rsa.GenerateKey(rand.Reader, DefaultKeySize)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	if err := os.WriteFile(path, EncodePrivateKey(key), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}

	return key, nil
}
