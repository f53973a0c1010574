// Package fieldcrypt encrypts individual PII columns before they reach a store.
//
// Stored values look like "enc:v1:<base64(nonce||ciphertext)>". Values without
// the prefix are treated as legacy plaintext and returned unchanged on decrypt.
package fieldcrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const prefix = "enc:v1:"

var hkdfInfo = []byte("frontdesk field encryption v1")

// ErrTampered is returned when a stored value fails authentication.
var ErrTampered = errors.New("fieldcrypt: ciphertext failed authentication")

// Cipher is a reversible transform for a single field value.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(stored string) (string, error)
}

// AEAD implements Cipher with XChaCha20-Poly1305.
type AEAD struct {
	key []byte
}

// New derives a 256-bit key from secret with HKDF-SHA256.
func New(secret string) (*AEAD, error) {
	if secret == "" {
		return nil, errors.New("fieldcrypt: empty secret")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive key: %w", err)
	}
	return &AEAD{key: key}, nil
}

func (a *AEAD) Encrypt(plain string) (string, error) {
	if plain == "" || strings.HasPrefix(plain, prefix) {
		return plain, nil
	}
	aead, err := chacha20poly1305.NewX(a.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (a *AEAD) Decrypt(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, prefix)
	if !ok {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrTampered
	}
	aead, err := chacha20poly1305.NewX(a.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrTampered
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrTampered
	}
	return string(plain), nil
}

// SelfTest round-trips a sample value. Run at startup so that a bad key
// fails fast instead of on the first write.
func SelfTest(c Cipher) error {
	const sample = "frontdesk-self-test"
	enc, err := c.Encrypt(sample)
	if err != nil {
		return fmt.Errorf("fieldcrypt self-test encrypt: %w", err)
	}
	if enc == sample {
		return errors.New("fieldcrypt self-test: value was not encrypted")
	}
	dec, err := c.Decrypt(enc)
	if err != nil {
		return fmt.Errorf("fieldcrypt self-test decrypt: %w", err)
	}
	if dec != sample {
		return errors.New("fieldcrypt self-test: round trip mismatch")
	}
	return nil
}

// EncryptFields applies c to each pointer in order, stopping at the first error.
func EncryptFields(c Cipher, fields ...*string) error {
	for _, f := range fields {
		v, err := c.Encrypt(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// DecryptFields is the inverse of EncryptFields.
func DecryptFields(c Cipher, fields ...*string) error {
	for _, f := range fields {
		v, err := c.Decrypt(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
