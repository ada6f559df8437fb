package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestContent(size int) []byte {
	pattern := []byte("%PDF-1.7 stream endstream ")
	return bytes.Repeat(pattern, size/len(pattern)+1)[:size]
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Len(t, Key("x"), 16)
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		compressed bool
	}{
		{"empty", 0, false},
		{"small", 100, false},
		{"at threshold", compressMinSize, true},
		{"large", 64 * 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := generateTestContent(tt.size)
			enc, err := encode(original)
			require.NoError(t, err)
			if tt.compressed {
				assert.Equal(t, flagLZ4, enc[0])
				assert.Less(t, len(enc), len(original))
			} else {
				assert.Equal(t, flagRaw, enc[0])
			}
			dec, err := decode(enc)
			require.NoError(t, err)
			assert.Equal(t, len(original), len(dec))
			assert.True(t, bytes.Equal(original, dec))
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode(nil)
	assert.ErrorIs(t, err, ErrDecompression)
	_, err = decode([]byte{9, 1, 2})
	assert.ErrorIs(t, err, ErrDecompression)
	_, err = decode([]byte{flagLZ4, 1, 2, 3})
	assert.ErrorIs(t, err, ErrDecompression)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemoryStore(2)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, m.Set(ctx, "c", []byte("3"), 0))
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss, "oldest entry should be evicted")

	got, err := m.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)

	got[0] = 'x'
	again, err := m.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), again, "callers must not alias stored bytes")
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemoryStore(10)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	_, err = m.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Len())
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), RedisOptions{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedisStore(t)

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrMiss)

	pdf := generateTestContent(8 * 1024)
	require.NoError(t, s.Set(ctx, "doc", pdf, time.Hour))

	stored, err := mr.Get("texkit:pdf:doc")
	require.NoError(t, err)
	assert.Less(t, len(stored), len(pdf), "payload should be compressed")

	got, err := s.Get(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pdf, got))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedisStore(t)

	require.NoError(t, s.Set(ctx, "doc", []byte("small"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "doc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisOptions{}, nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisStore(context.Background(), RedisOptions{Addr: addr}, nil)
	assert.Error(t, err)
}
