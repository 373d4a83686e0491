package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

var testKey = []byte("test-key-for-pagination-12345678") // 32 bytes

func TestCursorEncoder(t *testing.T) {
	encoder, err := NewCursorEncoder(testKey, 24*time.Hour)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := encoder.Encode(Cursor{Page: 3, Size: 20, Fingerprint: "approved|recent"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		c, err := encoder.Decode(token, "approved|recent")
		require.NoError(t, err)
		assert.Equal(t, 3, c.Page)
		assert.Equal(t, 20, c.Size)
	})

	t.Run("token bound to its query", func(t *testing.T) {
		token, err := encoder.Encode(Cursor{Page: 2, Size: 20, Fingerprint: "a"})
		require.NoError(t, err)

		_, err = encoder.Decode(token, "b")
		require.Error(t, err)
	})

	t.Run("invalid key length", func(t *testing.T) {
		_, err := NewCursorEncoder([]byte("short-key"), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 bytes")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := encoder.Decode("!!not-base64", "a")
		require.Error(t, err)
		_, err = encoder.Decode("AAAA", "a")
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := encoder.Encode(Cursor{Page: 2, Size: 5, Fingerprint: "a", IssuedAt: time.Now().Add(-25 * time.Hour)})
		require.NoError(t, err)

		_, err = encoder.Decode(token, "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestNewPage(t *testing.T) {
	req, err := NewRequest(1, 20, 20, 100)
	require.NoError(t, err)

	p := NewPage(make([]int, 20), 45, req)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrevious)

	last := NewPage(make([]int, 5), 45, Request{Number: 3, Size: 20})
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)

	beyond := NewPage[int](nil, 45, Request{Number: 9, Size: 20})
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
	assert.False(t, beyond.HasNext)

	empty := NewPage[int](nil, 0, Request{Number: 1, Size: 20})
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest(2, 0, 25, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, req.Size)
	assert.Equal(t, 25, req.Offset())

	_, err = NewRequest(0, 10, 25, 100)
	assert.True(t, errors.IsBadRequest(err))
	_, err = NewRequest(1, -1, 25, 100)
	assert.True(t, errors.IsBadRequest(err))
	_, err = NewRequest(1, 101, 25, 100)
	assert.True(t, errors.IsBadRequest(err))
}

func TestAttachNextToken(t *testing.T) {
	encoder, err := NewCursorEncoder(testKey, 0)
	require.NoError(t, err)

	p := NewPage(make([]string, 2), 5, Request{Number: 1, Size: 2})
	require.NoError(t, AttachNextToken(encoder, p, "fp"))
	c, err := encoder.Decode(p.NextPageToken, "fp")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Page)

	last := NewPage(make([]string, 1), 5, Request{Number: 3, Size: 2})
	require.NoError(t, AttachNextToken(encoder, last, "fp"))
	assert.Empty(t, last.NextPageToken)

	mapped := Map(p, func(s string) int { return len(s) })
	assert.Equal(t, p.TotalRecords, mapped.TotalRecords)
	assert.Equal(t, p.NextPageToken, mapped.NextPageToken)
}

func TestPolicyResolve(t *testing.T) {
	encoder, err := NewCursorEncoder(testKey, time.Hour)
	require.NoError(t, err)
	policy := Policy{DefaultSize: 20, MaxSize: 100, Tokens: encoder}

	req, err := policy.Resolve(3, 0, "", "fp")
	require.NoError(t, err)
	assert.Equal(t, Request{Number: 3, Size: 20}, req)

	token, err := encoder.Encode(Cursor{Page: 4, Size: 50, Fingerprint: "fp"})
	require.NoError(t, err)
	req, err = policy.Resolve(1, 20, token, "fp")
	require.NoError(t, err)
	assert.Equal(t, Request{Number: 4, Size: 50}, req)

	_, err = policy.Resolve(1, 20, token, "other")
	assert.True(t, errors.IsBadRequest(err))

	_, err = Policy{DefaultSize: 20}.Resolve(1, 20, token, "fp")
	assert.True(t, errors.IsBadRequest(err))
}
