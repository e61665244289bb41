// internal/infra/secrets/secrets.go
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySalt       = "video-xapi-credentials"
	keyIterations = 4096
	keyLength     = 32 // AES-256
)

// Codec encrypts and decrypts credential values at rest with AES-256-GCM.
// The key is derived from a deployment-wide secret via PBKDF2. Encrypt and
// Decrypt are strictly symmetric: every value written with Encrypt reads
// back with Decrypt.
type Codec struct {
	key []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("secrets: deployment secret is empty")
	}
	key := pbkdf2.Key([]byte(secret), []byte(keySalt), keyIterations, keyLength, sha256.New)
	return &Codec{key: key}, nil
}

// Encrypt returns base64(nonce || ciphertext) with a random nonce per value.
// Empty input encrypts to the empty string.
func (c *Codec) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets: generating nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or wrongly keyed input fails
// authentication and returns an error.
func (c *Codec) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("secrets: decoding ciphertext: %w", err)
	}

	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("secrets: ciphertext shorter than nonce")
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("secrets: decrypting value: %w", err)
	}
	return string(plain), nil
}

func (c *Codec) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("secrets: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: creating GCM: %w", err)
	}
	return gcm, nil
}
