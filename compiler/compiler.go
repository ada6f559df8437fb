// Package compiler orchestrates LaTeX or HTML source into a paginated PDF.
package compiler

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/texkit/builder"
	"github.com/wudi/texkit/cache"
	"github.com/wudi/texkit/ir/semantic"
	"github.com/wudi/texkit/latex"
	"github.com/wudi/texkit/observability"
	"github.com/wudi/texkit/raster"
	"github.com/wudi/texkit/writer"
)

// ErrEmptyPDF is returned when the pipeline produced zero bytes.
var ErrEmptyPDF = errors.New("generated PDF is empty")

// Pipeline stages recorded on CompileError. Transpiling never fails, so it
// has no stage.
const (
	StageRasterize = "rasterize"
	StagePaginate  = "paginate"
	StageWrite     = "write"
)

// CompileError wraps any failure of the pipeline.
type CompileError struct {
	Stage string
	Err   error
}

func (e *CompileError) Error() string {
	return "failed to compile to PDF: " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

// Result is the outcome of one compilation.
type Result struct {
	ID       string
	PDF      []byte
	Pages    int
	HTML     string
	Degraded bool
	Warnings []string
	CacheHit bool
}

// Compiler is safe for concurrent use when its Rasterizer is.
type Compiler struct {
	rasterizer raster.Rasterizer
	writer     writer.Writer
	writerCfg  writer.Config
	logger     observability.Logger
	tracer     observability.Tracer
	metrics    observability.Metrics
	store      cache.Store
	cacheTTL   time.Duration
	pageWidth  float64
	pageHeight float64
	info       *semantic.DocumentInfo
	lang       string
}

// Option defines a configuration option for the Compiler.
type Option func(*Compiler)

func WithRasterizer(r raster.Rasterizer) Option {
	return func(c *Compiler) {
		c.rasterizer = r
	}
}

func WithWriter(w writer.Writer, cfg writer.Config) Option {
	return func(c *Compiler) {
		c.writer = w
		c.writerCfg = cfg
	}
}

func WithLogger(l observability.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(c *Compiler) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithMetrics(m observability.Metrics) Option {
	return func(c *Compiler) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithCache stores compiled PDFs keyed by the rendered HTML and page size.
func WithCache(s cache.Store, ttl time.Duration) Option {
	return func(c *Compiler) {
		c.store = s
		c.cacheTTL = ttl
	}
}

// WithPageSize sets the page size in PDF points. Default A4.
func WithPageSize(width, height float64) Option {
	return func(c *Compiler) {
		if width > 0 && height > 0 {
			c.pageWidth, c.pageHeight = width, height
		}
	}
}

func WithInfo(info *semantic.DocumentInfo) Option {
	return func(c *Compiler) {
		c.info = info
	}
}

// WithLanguage sets the document language written to the catalog, e.g. "en-US".
func WithLanguage(lang string) Option {
	return func(c *Compiler) {
		c.lang = lang
	}
}

// New creates a Compiler. Without WithRasterizer the built-in raster.Engine is used.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		writerCfg:  writer.DefaultConfig(),
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
		metrics:    observability.NopMetrics{},
		pageWidth:  raster.A4WidthPt,
		pageHeight: raster.A4HeightPt,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rasterizer == nil {
		e, err := raster.NewEngine(raster.WithLogger(c.logger))
		if err != nil {
			return nil, fmt.Errorf("create rasterizer: %w", err)
		}
		c.rasterizer = e
	}
	if c.writer == nil {
		c.writer = (&writer.WriterBuilder{}).WithLogger(c.logger).Build()
	}
	return c, nil
}

// ToHTML returns content unchanged when it already looks like HTML and the
// transpiled fragment otherwise.
func (c *Compiler) ToHTML(content string) latex.Result {
	if latex.IsHTML(content) {
		return latex.Result{HTML: content}
	}
	return latex.Transpile(content)
}

// Compile turns content into PDF bytes.
func (c *Compiler) Compile(ctx context.Context, content string) ([]byte, error) {
	res, err := c.CompileResult(ctx, content)
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// CompileResult runs the pipeline and reports what happened along the way.
func (c *Compiler) CompileResult(ctx context.Context, content string) (*Result, error) {
	start := time.Now()
	res := &Result{ID: uuid.NewString()}
	log := c.logger.With(observability.String("compile_id", res.ID))

	ctx, span := c.tracer.StartSpan(ctx, observability.SpanCompile)
	defer span.Finish()
	span.SetTag("compile_id", res.ID)

	fail := func(stage string, err error) (*Result, error) {
		status := observability.StatusError
		if errors.Is(err, ErrEmptyPDF) {
			status = observability.StatusEmpty
		}
		c.metrics.ObserveCompile(status, time.Since(start))
		log.Error("compile failed",
			observability.String("stage", stage),
			observability.Int("source_bytes", len(content)),
			observability.Error("error", err))
		span.SetError(err)
		return nil, &CompileError{Stage: stage, Err: err}
	}

	_, tspan := c.tracer.StartSpan(ctx, observability.SpanTranspile)
	converted := c.ToHTML(content)
	tspan.Finish()
	res.HTML = converted.HTML
	res.Degraded = converted.Degraded
	res.Warnings = converted.Warnings
	if res.Degraded {
		c.metrics.IncDegraded()
		log.Warn("transpile degraded to plain text", observability.Int("warnings", len(res.Warnings)))
	}

	key := c.cacheKey(res.HTML)
	if data, pages, ok := c.lookup(ctx, log, key); ok {
		res.PDF = data
		res.Pages = pages
		res.CacheHit = true
		c.metrics.ObserveCompile(observability.StatusCacheHit, time.Since(start))
		log.Debug("compile served from cache", observability.Int("bytes", len(data)))
		return res, nil
	}

	rctx, rspan := c.tracer.StartSpan(ctx, observability.SpanRasterize)
	img, err := c.rasterizer.Rasterize(rctx, res.HTML)
	if err != nil {
		rspan.SetError(err)
		rspan.Finish()
		return fail(StageRasterize, err)
	}
	rspan.Finish()

	_, pspan := c.tracer.StartSpan(ctx, observability.SpanPaginate)
	b := newBuilder(c.info, c.lang)
	pages, err := raster.Paginate(img, b, c.pageWidth, c.pageHeight)
	if err != nil {
		pspan.SetError(err)
		pspan.Finish()
		return fail(StagePaginate, err)
	}
	doc, err := b.Build()
	pspan.Finish()
	if err != nil {
		return fail(StagePaginate, err)
	}

	wctx, wspan := c.tracer.StartSpan(ctx, observability.SpanWrite)
	var buf bytes.Buffer
	err = c.writer.Write(wctx, doc, &buf, c.writerCfg)
	wspan.Finish()
	if err != nil {
		return fail(StageWrite, err)
	}
	if buf.Len() == 0 {
		return fail(StageWrite, ErrEmptyPDF)
	}

	res.PDF = buf.Bytes()
	res.Pages = pages
	c.remember(ctx, log, key, pages, res.PDF)

	elapsed := time.Since(start)
	c.metrics.ObserveCompile(observability.StatusSuccess, elapsed)
	c.metrics.ObservePages(pages)
	log.Info("compiled pdf",
		observability.Int("pages", pages),
		observability.Int("bytes", len(res.PDF)),
		observability.Bool("degraded", res.Degraded),
		observability.Duration("elapsed", elapsed))
	return res, nil
}

// cacheKey covers everything that changes the output bytes: the fragment,
// the page size, the rasterizer settings and the document metadata.
func (c *Compiler) cacheKey(html string) string {
	parts := []string{
		cacheVersion,
		html,
		strconv.FormatFloat(c.pageWidth, 'f', 2, 64),
		strconv.FormatFloat(c.pageHeight, 'f', 2, 64),
		raster.Fingerprint(c.rasterizer),
		c.lang,
	}
	if c.info != nil {
		parts = append(parts, c.info.Title, c.info.Author, c.info.Subject, c.info.Creator, c.info.Producer)
	}
	return cache.Key(parts...)
}

// cacheVersion changes whenever the entry layout below changes.
const cacheVersion = "pdf/2"

// encodeEntry prefixes pdf with its page count as a uvarint.
func encodeEntry(pages int, pdf []byte) []byte {
	out := binary.AppendUvarint(make([]byte, 0, len(pdf)+binary.MaxVarintLen32), uint64(pages))
	return append(out, pdf...)
}

func decodeEntry(data []byte) (int, []byte, error) {
	pages, n := binary.Uvarint(data)
	if n <= 0 || pages == 0 || n == len(data) {
		return 0, nil, errors.New("malformed cache entry")
	}
	return int(pages), data[n:], nil
}

func (c *Compiler) lookup(ctx context.Context, log observability.Logger, key string) ([]byte, int, bool) {
	if c.store == nil {
		return nil, 0, false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("cache lookup failed", observability.Error("error", err))
		}
		return nil, 0, false
	}
	pages, pdf, err := decodeEntry(data)
	if err != nil {
		log.Warn("cache entry discarded", observability.Error("error", err))
		return nil, 0, false
	}
	return pdf, pages, true
}

func (c *Compiler) remember(ctx context.Context, log observability.Logger, key string, pages int, pdf []byte) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, key, encodeEntry(pages, pdf), c.cacheTTL); err != nil {
		log.Warn("cache store failed", observability.Error("error", err))
	}
}

func newBuilder(info *semantic.DocumentInfo, lang string) builder.PDFBuilder {
	meta := semantic.DocumentInfo{}
	if info != nil {
		meta = *info
	}
	if meta.Producer == "" {
		meta.Producer = "texkit"
	}
	b := builder.NewBuilder().SetInfo(&meta)
	if lang != "" {
		b.SetLanguage(lang)
	}
	return b
}

var (
	defaultOnce     sync.Once
	defaultCompiler *Compiler
	defaultErr      error
)

// CompileLatexToPdf compiles with a shared default Compiler.
func CompileLatexToPdf(ctx context.Context, content string) ([]byte, error) {
	defaultOnce.Do(func() {
		defaultCompiler, defaultErr = New()
	})
	if defaultErr != nil {
		return nil, &CompileError{Stage: StageRasterize, Err: defaultErr}
	}
	return defaultCompiler.Compile(ctx, content)
}

// Validate runs the advisory LaTeX checks.
func Validate(source string) latex.Report { return latex.Validate(source) }

// ToHTML transpiles LaTeX for live preview.
func ToHTML(source string) string { return latex.ToHTML(source) }
