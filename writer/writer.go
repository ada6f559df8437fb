package writer

import (
	"context"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/wudi/texkit/ir/semantic"
	"github.com/wudi/texkit/observability"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

type Config struct {
	Version PDFVersion
	// Compress applies FlateDecode to content and image streams.
	Compress bool
	// Compression is the zlib level used when Compress is set.
	Compression int
	// Deterministic derives the file ID from the document instead of random bytes.
	Deterministic bool
}

// DefaultConfig is the configuration used by the compile pipeline.
func DefaultConfig() Config {
	return Config{Version: PDF17, Compress: true, Compression: zlib.DefaultCompression}
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
}

type WriterBuilder struct {
	logger observability.Logger
}

func (b *WriterBuilder) WithLogger(l observability.Logger) *WriterBuilder {
	b.logger = l
	return b
}

func (b *WriterBuilder) Build() Writer {
	logger := b.logger
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &impl{logger: logger}
}
