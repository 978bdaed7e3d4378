package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKeys(t *testing.T) {
	a, err := DeriveKeys("secret")
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveKeys("secret")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("derivation is not deterministic")
	}
	if bytes.Equal(a.Cipher[:AuthKeySize], a.Auth[:]) {
		t.Error("auth key must differ from the cipher key prefix")
	}

	other, _ := DeriveKeys("other")
	if other.Auth == a.Auth {
		t.Error("different secrets produced the same auth key")
	}

	empty, err := DeriveKeys("")
	if err != nil {
		t.Fatal(err)
	}
	if empty != (Keys{}) {
		t.Error("empty secret must yield zero keys")
	}
}

func TestCipherRoundTrip(t *testing.T) {
	keys, _ := DeriveKeys("round-trip")
	plaintext := []byte("an ip packet would go here")

	for _, name := range []string{XChaCha20Poly1305, ChaCha20Poly1305, AES256GCM, None} {
		t.Run(name, func(t *testing.T) {
			c, err := New(name, keys.Cipher)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			buf := make([]byte, 0, len(plaintext)+c.Overhead())
			sealed, err := c.Seal(buf, plaintext)
			if err != nil {
				t.Fatalf("Seal: %v", err)
			}
			if len(sealed) != len(plaintext)+c.Overhead() {
				t.Fatalf("sealed len = %d, want %d", len(sealed), len(plaintext)+c.Overhead())
			}
			if &sealed[0] != &buf[:1][0] {
				t.Error("Seal reallocated a buffer with enough capacity")
			}

			opened, err := c.Open(nil, sealed)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if !bytes.Equal(opened, plaintext) {
				t.Fatalf("Open = %q, want %q", opened, plaintext)
			}
		})
	}
}

func TestCipherRejectsTampering(t *testing.T) {
	keys, _ := DeriveKeys("tamper")
	c, err := New(XChaCha20Poly1305, keys.Cipher)
	if err != nil {
		t.Fatal(err)
	}
	sealed, _ := c.Seal(nil, []byte("payload"))
	sealed[len(sealed)-1] ^= 0x01

	if _, err := c.Open(nil, sealed); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Open(tampered) = %v, want ErrDecryptFailed", err)
	}
	if _, err := c.Open(nil, sealed[:5]); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Open(short) = %v, want ErrDecryptFailed", err)
	}
}

func TestCipherWrongKey(t *testing.T) {
	k1, _ := DeriveKeys("one")
	k2, _ := DeriveKeys("two")
	c1, _ := New(ChaCha20Poly1305, k1.Cipher)
	c2, _ := New(ChaCha20Poly1305, k2.Cipher)

	sealed, _ := c1.Seal(nil, []byte("payload"))
	if _, err := c2.Open(nil, sealed); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Open with wrong key = %v, want ErrDecryptFailed", err)
	}
}

func TestNewUnknownCipher(t *testing.T) {
	if _, err := New("rot13", [KeySize]byte{}); !errors.Is(err, ErrUnknownCipher) {
		t.Fatalf("New(rot13) = %v, want ErrUnknownCipher", err)
	}
}
