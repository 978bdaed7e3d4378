package config

import "time"

// Network defaults
const (
	DefaultMTU     = 1416
	MinMTU         = 576
	DefaultDevice  = "vtun0"
	DefaultCipher  = "xchacha20-poly1305"
	DefaultFraming = "auto"
)

// Wire sizing. A PDU is one encrypted UDP payload.
const (
	MaxPDUSize = 1500

	// MaxCipherOverhead covers the largest nonce+tag prefix of any
	// supported cipher (XChaCha20-Poly1305: 24 + 16).
	MaxCipherOverhead = 40

	// IPDataOffset is the plaintext header length in front of an IP packet.
	IPDataOffset = 24

	MaxIPPacket = MaxPDUSize - MaxCipherOverhead - IPDataOffset

	// FrameBufferSize is large enough for any tun frame we accept plus its
	// link-layer header.
	FrameBufferSize = MaxIPPacket + 4
)

// Timeouts
const (
	DefaultKeepalive        = 7 * time.Second
	DefaultReconnectTimeout = 47 * time.Second
	DefaultStatsInterval    = 60 * time.Second
	PollTimeout             = 2 * time.Second
	ReconnectDelay          = 5 * time.Second
	ResolveTimeout          = 10 * time.Second
)
