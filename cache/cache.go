// Package cache stores compiled PDFs keyed by a hash of their source.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4/v4"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrDecompression is returned when a stored payload cannot be decoded.
	ErrDecompression = errors.New("decompression failed")
)

// Store is a byte cache with per-entry expiry. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key derives a cache key from parts. Parts are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		fmt.Fprintf(d, "%d:", len(p))
		d.WriteString(p)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// compressMinSize is the payload size below which lz4 framing costs more than it saves.
const compressMinSize = 1024

const (
	flagRaw byte = 0
	flagLZ4 byte = 1
)

// encode prefixes payload with a one byte flag and lz4-compresses it when
// large enough.
func encode(payload []byte) ([]byte, error) {
	if len(payload) < compressMinSize {
		return append([]byte{flagRaw}, payload...), nil
	}
	var buf bytes.Buffer
	buf.WriteByte(flagLZ4)
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compression close failed: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecompression)
	}
	switch data[0] {
	case flagRaw:
		return data[1:], nil
	case flagLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data[1:])))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown flag %d", ErrDecompression, data[0])
}
