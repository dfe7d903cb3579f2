package sessionx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// signer signs session cookies with a single Ed25519 key identified by kid.
type signer struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// newSignerFromPEM loads an Ed25519 private key from PKCS8 PEM bytes.
func newSignerFromPEM(kid string, pemKey []byte) (*signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("sessionx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("sessionx: expected PRIVATE KEY, got %q", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("sessionx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("sessionx: not an Ed25519 private key")
	}

	return &signer{
		kid: kid,
		key: key,
		pub: key.Public().(ed25519.PublicKey),
	}, nil
}

// sign turns claims into a signed JWT string with the kid header set.
func (s *signer) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// newKid returns a short URL-safe random key identifier.
func newKid() (string, error) {
	var b [9]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("sessionx: generate kid: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
