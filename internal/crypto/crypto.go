package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrDecryptFailed = errors.New("crypto: decryption failed")
	ErrInvalidKey    = errors.New("crypto: invalid key")
	ErrUnknownCipher = errors.New("crypto: unknown cipher")
)

const (
	KeySize     = 32
	AuthKeySize = 16
)

// Cipher names accepted by New.
const (
	XChaCha20Poly1305 = "xchacha20-poly1305"
	ChaCha20Poly1305  = "chacha20-poly1305"
	AES256GCM         = "aes-256-gcm"
	None              = "none"
)

const (
	cipherKeyInfo = "udptun cipher key v1"
	authKeyInfo   = "udptun auth key v1"
)

// Cipher seals and opens whole PDUs. Seal appends to dst and must not grow
// dst past its capacity when the caller reserved len(plaintext)+Overhead().
type Cipher interface {
	Seal(dst, plaintext []byte) ([]byte, error)
	Open(dst, ciphertext []byte) ([]byte, error)
	Overhead() int
}

// Keys holds the material derived from the shared secret.
type Keys struct {
	Cipher [KeySize]byte
	Auth   [AuthKeySize]byte
}

// DeriveKeys expands the configured secret into the cipher key and the
// static authentication field. An empty secret yields all-zero keys.
func DeriveKeys(secret string) (Keys, error) {
	var k Keys
	if secret == "" {
		return k, nil
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cipherKeyInfo)), k.Cipher[:]); err != nil {
		return k, fmt.Errorf("derive cipher key: %w", err)
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(authKeyInfo)), k.Auth[:]); err != nil {
		return k, fmt.Errorf("derive auth key: %w", err)
	}
	return k, nil
}

// New returns the named cipher keyed with key. The "none" cipher ignores key.
func New(name string, key [KeySize]byte) (Cipher, error) {
	var (
		aead cipher.AEAD
		err  error
	)
	switch name {
	case XChaCha20Poly1305:
		aead, err = chacha20poly1305.NewX(key[:])
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key[:])
	case AES256GCM:
		var block cipher.Block
		block, err = aes.NewCipher(key[:])
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case None:
		return nullCipher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &aeadCipher{aead: aead}, nil
}

// aeadCipher lays out a PDU as [random nonce][ciphertext+tag]. Nonces are
// random because neither side keeps counter state across reconnects.
type aeadCipher struct {
	aead cipher.AEAD
}

func (c *aeadCipher) Overhead() int {
	return c.aead.NonceSize() + c.aead.Overhead()
}

func (c *aeadCipher) Seal(dst, plaintext []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	start := len(dst)
	dst = append(dst, make([]byte, ns)...)
	nonce := dst[start : start+ns]
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(dst, nonce, plaintext, nil), nil
}

func (c *aeadCipher) Open(dst, ciphertext []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(ciphertext) < ns+c.aead.Overhead() {
		return nil, ErrDecryptFailed
	}
	out, err := c.aead.Open(dst, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return out, nil
}

type nullCipher struct{}

func (nullCipher) Overhead() int { return 0 }

func (nullCipher) Seal(dst, plaintext []byte) ([]byte, error) {
	return append(dst, plaintext...), nil
}

func (nullCipher) Open(dst, ciphertext []byte) ([]byte, error) {
	return append(dst, ciphertext...), nil
}
