// Package crypto seals voucher credentials at rest.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/lnpos/voucherd/internal/domain/voucher"
)

const (
	ciphertextVersion = "v1"
	minSecretLength   = 16
	keyInfo           = "voucherd issuer-ref v1"
)

var additionalData = []byte("voucher.issuer_ref")

// CredentialCipher is an XChaCha20-Poly1305 sealer keyed by HKDF-SHA256 over
// the configured secret. Output is "v1:" followed by base64url(nonce||box).
type CredentialCipher struct {
	aead interface {
		NonceSize() int
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

var _ voucher.CredentialCipher = (*CredentialCipher)(nil)

func NewCredentialCipher(secret string) (*CredentialCipher, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("credential secret must be at least %d bytes", minSecretLength)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive credential key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init credential cipher: %w", err)
	}

	return &CredentialCipher{aead: aead}, nil
}

func (c *CredentialCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), additionalData)
	return ciphertextVersion + ":" + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *CredentialCipher) Decrypt(ciphertext string) (string, error) {
	version, payload, ok := strings.Cut(ciphertext, ":")
	if !ok || version != ciphertextVersion {
		return "", fmt.Errorf("%w: unknown format", voucher.ErrCredentialCorrupt)
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", voucher.ErrCredentialCorrupt, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", fmt.Errorf("%w: truncated", voucher.ErrCredentialCorrupt)
	}

	nonce, box := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, box, additionalData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", voucher.ErrCredentialCorrupt, err)
	}

	return string(plain), nil
}
