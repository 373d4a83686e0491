package pagination

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Cursor is the sealed content of a page token. It pins the page number to
// the query it was issued for so a token cannot be replayed against a
// different filter.
type Cursor struct {
	Page        int       `json:"page"`
	Size        int       `json:"size"`
	Fingerprint string    `json:"fp"`
	IssuedAt    time.Time `json:"iat"`
}

// CursorEncoder seals and opens page tokens with AES-GCM.
type CursorEncoder struct {
	aead   cipher.AEAD
	maxAge time.Duration
	now    func() time.Time
}

// NewCursorEncoder creates an encoder from a 32 byte key. Tokens older than
// maxAge are rejected; zero disables the check.
func NewCursorEncoder(key []byte, maxAge time.Duration) (*CursorEncoder, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes for AES-256")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &CursorEncoder{aead: aead, maxAge: maxAge, now: time.Now}, nil
}

// Encode seals a cursor into a URL-safe token.
func (e *CursorEncoder) Encode(c Cursor) (string, error) {
	if c.IssuedAt.IsZero() {
		c.IssuedAt = e.now()
	}
	plaintext, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens a token and checks it belongs to the query identified by
// fingerprint.
func (e *CursorEncoder) Decode(token, fingerprint string) (Cursor, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("failed to decode page token: %w", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(sealed) < nonceSize {
		return Cursor{}, fmt.Errorf("page token too short")
	}
	plaintext, err := e.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return Cursor{}, fmt.Errorf("failed to open page token: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(plaintext, &c); err != nil {
		return Cursor{}, fmt.Errorf("failed to unmarshal cursor: %w", err)
	}
	if c.Fingerprint != fingerprint {
		return Cursor{}, fmt.Errorf("page token was issued for a different query")
	}
	if e.maxAge > 0 && e.now().Sub(c.IssuedAt) > e.maxAge {
		return Cursor{}, fmt.Errorf("page token expired")
	}
	return c, nil
}

// AttachNextToken sets NextPageToken on p when a following page exists.
func AttachNextToken[T any](e *CursorEncoder, p *Page[T], fingerprint string) error {
	if e == nil || !p.HasNext {
		return nil
	}
	token, err := e.Encode(Cursor{Page: p.PageNumber + 1, Size: p.PageSize, Fingerprint: fingerprint})
	if err != nil {
		return err
	}
	p.NextPageToken = token
	return nil
}
