package wire

import (
	"fmt"

	"udptun/internal/config"
	"udptun/internal/crypto"
)

// Codec encrypts plaintext messages into PDUs and back. It never writes past
// the capacity of the buffers it is given.
type Codec struct {
	cipher crypto.Cipher
}

func NewCodec(c crypto.Cipher) *Codec {
	return &Codec{cipher: c}
}

func (c *Codec) Overhead() int {
	return c.cipher.Overhead()
}

// Encode seals plaintext into dst[:0]. The result is at most
// config.MaxPDUSize bytes.
func (c *Codec) Encode(dst, plaintext []byte) ([]byte, error) {
	need := len(plaintext) + c.cipher.Overhead()
	if need > config.MaxPDUSize || need > cap(dst) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, need)
	}
	return c.cipher.Seal(dst[:0], plaintext)
}

// Decode opens a received PDU into dst[:0]. Anything shorter than the
// cipher overhead plus a message header is rejected before decryption.
func (c *Codec) Decode(dst, ciphertext []byte) ([]byte, error) {
	overhead := c.cipher.Overhead()
	if len(ciphertext) < overhead+HeaderLen {
		return nil, ErrShortMessage
	}
	if len(ciphertext)-overhead > cap(dst) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(ciphertext)-overhead)
	}
	out, err := c.cipher.Open(dst[:0], ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return out, nil
}
