package compiler

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wudi/texkit/cache"
	"github.com/wudi/texkit/ir/semantic"
	"github.com/wudi/texkit/raster"
	"github.com/wudi/texkit/writer"
)

var pageObjectRE = regexp.MustCompile(`/Type /Page\b`)

type fakeRasterizer struct {
	mu     sync.Mutex
	width  int
	height int
	err    error
	calls  int
	last   string
}

func (f *fakeRasterizer) Rasterize(_ context.Context, html string) (*raster.PageImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = html
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(1, 1, color.Black)
	return &raster.PageImage{Image: img, Width: f.width, Height: f.height, Scale: 2}, nil
}

// silentWriter succeeds without producing output.
type silentWriter struct{}

func (silentWriter) Write(context.Context, *semantic.Document, io.Writer, writer.Config) error {
	return nil
}

type recordingMetrics struct {
	statuses []string
	pages    []int
	degraded int
}

func (m *recordingMetrics) ObserveCompile(status string, _ time.Duration) {
	m.statuses = append(m.statuses, status)
}
func (m *recordingMetrics) ObservePages(p int)    { m.pages = append(m.pages, p) }
func (m *recordingMetrics) IncDegraded()          { m.degraded++ }
func (m *recordingMetrics) ObserveValidation(int) {}

const minimalDoc = `\documentclass{article}
\begin{document}
Hello
\end{document}`

func TestCompile_MinimalDocument(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := c.CompileResult(context.Background(), minimalDoc)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(res.PDF) == 0 {
		t.Fatal("empty pdf")
	}
	if !strings.HasPrefix(string(res.PDF), "%PDF-") {
		t.Fatal("missing PDF header")
	}
	if res.Pages < 1 {
		t.Fatalf("pages = %d", res.Pages)
	}
	if got := len(pageObjectRE.FindAllString(string(res.PDF), -1)); got != res.Pages {
		t.Fatalf("page objects = %d, want %d", got, res.Pages)
	}
	if res.ID == "" {
		t.Fatal("missing compile id")
	}
}

func TestCompileLatexToPdf(t *testing.T) {
	data, err := CompileLatexToPdf(context.Background(), minimalDoc)
	if err != nil {
		t.Fatalf("CompileLatexToPdf failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty pdf")
	}
}

func TestCompile_PageCountIsCeil(t *testing.T) {
	// 1000px wide images: 1414px scales to just under one A4 page.
	tests := []struct {
		height int
		want   int
	}{
		{100, 1},
		{1414, 1},
		{1415, 2},
		{5000, 4},
	}
	for _, tt := range tests {
		c, err := New(WithRasterizer(&fakeRasterizer{width: 1000, height: tt.height}))
		if err != nil {
			t.Fatal(err)
		}
		res, err := c.CompileResult(context.Background(), "<p>x</p>")
		if err != nil {
			t.Fatalf("height %d: %v", tt.height, err)
		}
		h := float64(tt.height) * raster.A4WidthPt / 1000
		if want := int(math.Ceil(h / raster.A4HeightPt)); want != tt.want {
			t.Fatalf("table is wrong for height %d: ceil = %d", tt.height, want)
		}
		if res.Pages != tt.want {
			t.Fatalf("height %d: pages = %d, want %d", tt.height, res.Pages, tt.want)
		}
		if got := len(pageObjectRE.FindAllString(string(res.PDF), -1)); got != tt.want {
			t.Fatalf("height %d: page objects = %d", tt.height, got)
		}
	}
}

func TestCompile_EmptyOutputIsRejected(t *testing.T) {
	m := &recordingMetrics{}
	c, err := New(
		WithRasterizer(&fakeRasterizer{width: 10, height: 10}),
		WithWriter(silentWriter{}, writer.DefaultConfig()),
		WithMetrics(m),
	)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Compile(context.Background(), minimalDoc)
	if !errors.Is(err, ErrEmptyPDF) {
		t.Fatalf("err = %v, want ErrEmptyPDF", err)
	}
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Stage != StageWrite {
		t.Fatalf("err = %#v, want CompileError at write stage", err)
	}
	if err.Error() != "failed to compile to PDF: generated PDF is empty" {
		t.Fatalf("message = %q", err.Error())
	}
	if len(m.statuses) != 1 || m.statuses[0] != "empty" {
		t.Fatalf("statuses = %v", m.statuses)
	}
}

func TestCompile_RasterizeErrorIsWrapped(t *testing.T) {
	boom := errors.New("surface exploded")
	c, err := New(WithRasterizer(&fakeRasterizer{err: boom}))
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Compile(context.Background(), minimalDoc)
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Stage != StageRasterize || !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to compile to PDF: ") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestCompile_HTMLPassesThrough(t *testing.T) {
	r := &fakeRasterizer{width: 10, height: 10}
	c, err := New(WithRasterizer(r))
	if err != nil {
		t.Fatal(err)
	}
	html := `<div><p>already html</p></div>`
	if _, err := c.Compile(context.Background(), html); err != nil {
		t.Fatal(err)
	}
	if r.last != html {
		t.Fatalf("rasterizer got %q", r.last)
	}

	if _, err := c.Compile(context.Background(), `\textbf{bold}`); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.last, "<strong>bold</strong>") {
		t.Fatalf("latex was not transpiled: %q", r.last)
	}
}

func TestCompile_CacheHit(t *testing.T) {
	store, err := cache.NewMemoryStore(8)
	if err != nil {
		t.Fatal(err)
	}
	r := &fakeRasterizer{width: 10, height: 10}
	m := &recordingMetrics{}
	c, err := New(WithRasterizer(r), WithCache(store, time.Minute), WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}

	first, err := c.CompileResult(context.Background(), minimalDoc)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.CompileResult(context.Background(), minimalDoc)
	if err != nil {
		t.Fatal(err)
	}
	if r.calls != 1 {
		t.Fatalf("rasterizer calls = %d, want 1", r.calls)
	}
	if first.CacheHit || !second.CacheHit {
		t.Fatalf("cache hits = %v, %v", first.CacheHit, second.CacheHit)
	}
	if string(first.PDF) != string(second.PDF) {
		t.Fatal("cached pdf differs")
	}
	if strings.Join(m.statuses, ",") != "success,cache_hit" {
		t.Fatalf("statuses = %v", m.statuses)
	}
}

func TestCompile_DegradedIsCounted(t *testing.T) {
	m := &recordingMetrics{}
	c, err := New(WithRasterizer(&fakeRasterizer{width: 10, height: 10}), WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.CompileResult(context.Background(), strings.Repeat(`\textbf{`, 200))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded || m.degraded != 1 {
		t.Fatalf("degraded = %v, counted %d", res.Degraded, m.degraded)
	}
}

func TestCompile_InfoIsWritten(t *testing.T) {
	c, err := New(
		WithRasterizer(&fakeRasterizer{width: 10, height: 10}),
		WithInfo(&semantic.DocumentInfo{Title: "Resume"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	data, err := c.Compile(context.Background(), "<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "/Title (Resume)") || !strings.Contains(out, "/Producer (texkit)") {
		t.Fatal("document info missing")
	}
}

func TestValidateAndToHTML(t *testing.T) {
	if r := Validate(minimalDoc); !r.IsValid {
		t.Fatalf("minimal document invalid: %v", r.Errors)
	}
	if !strings.Contains(ToHTML(`\emph{x}`), "<em>x</em>") {
		t.Fatal("ToHTML did not transpile")
	}
}

// taggedRasterizer is a fakeRasterizer with fixed rendering settings.
type taggedRasterizer struct {
	*fakeRasterizer
	tag string
}

func (t taggedRasterizer) Fingerprint() string { return t.tag }

func TestCompile_CacheHitKeepsPageCount(t *testing.T) {
	store, err := cache.NewMemoryStore(8)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(WithRasterizer(&fakeRasterizer{width: 1000, height: 3000}), WithCache(store, time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	first, err := c.CompileResult(context.Background(), "<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.CompileResult(context.Background(), "<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second compile missed the cache")
	}
	if first.Pages != 3 || second.Pages != first.Pages {
		t.Fatalf("pages = %d then %d, want 3 both times", first.Pages, second.Pages)
	}
}

func TestCompile_CacheKeyIncludesRasterizerSettings(t *testing.T) {
	store, err := cache.NewMemoryStore(8)
	if err != nil {
		t.Fatal(err)
	}
	compile := func(tag string) (*Result, *fakeRasterizer) {
		t.Helper()
		r := &fakeRasterizer{width: 10, height: 10}
		c, err := New(WithRasterizer(taggedRasterizer{fakeRasterizer: r, tag: tag}), WithCache(store, time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		res, err := c.CompileResult(context.Background(), minimalDoc)
		if err != nil {
			t.Fatal(err)
		}
		return res, r
	}

	if res, _ := compile("builtin/scale=2"); res.CacheHit {
		t.Fatal("empty store reported a hit")
	}
	if res, r := compile("chrome/scale=2"); res.CacheHit || r.calls != 1 {
		t.Fatalf("other backend served from cache: hit=%v calls=%d", res.CacheHit, r.calls)
	}
	if res, r := compile("builtin/scale=2"); !res.CacheHit || r.calls != 0 {
		t.Fatalf("same settings missed the cache: hit=%v calls=%d", res.CacheHit, r.calls)
	}
}

func TestCompile_MalformedCacheEntryIsRecompiled(t *testing.T) {
	store, err := cache.NewMemoryStore(8)
	if err != nil {
		t.Fatal(err)
	}
	r := &fakeRasterizer{width: 10, height: 10}
	c, err := New(WithRasterizer(r), WithCache(store, time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	key := c.cacheKey(c.ToHTML(minimalDoc).HTML)
	if err := store.Set(context.Background(), key, []byte{0}, time.Minute); err != nil {
		t.Fatal(err)
	}
	res, err := c.CompileResult(context.Background(), minimalDoc)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit || r.calls != 1 || res.Pages != 1 {
		t.Fatalf("hit=%v calls=%d pages=%d", res.CacheHit, r.calls, res.Pages)
	}
}

func TestCompile_LanguageIsWritten(t *testing.T) {
	c, err := New(WithRasterizer(&fakeRasterizer{width: 10, height: 10}), WithLanguage("en-US"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := c.Compile(context.Background(), "<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "/Lang (en-US)") {
		t.Fatal("catalog language missing")
	}
}
