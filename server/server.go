// Package server exposes the compiler over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/wudi/texkit/compiler"
	"github.com/wudi/texkit/latex"
	"github.com/wudi/texkit/observability"
	"github.com/wudi/texkit/raster"
	"github.com/wudi/texkit/templates"
)

const (
	defaultTimeout = 30 * time.Second
	defaultMaxBody = 1 << 20

	headerRequestID = "X-Request-ID"
	headerPages     = "X-Page-Count"
	headerDegraded  = "X-Degraded"
	headerCache     = "X-Cache"
)

type Server struct {
	compiler       *compiler.Compiler
	logger         observability.Logger
	metrics        observability.Metrics
	metricsHandler fasthttp.RequestHandler
	timeout        time.Duration
	maxBody        int
}

type Option func(*Server)

func WithLogger(l observability.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records validation results and serves h on /metrics.
func WithMetrics(m observability.Metrics, h fasthttp.RequestHandler) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
		s.metricsHandler = h
	}
}

// WithTimeout bounds each compile request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMaxBody(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

func New(c *compiler.Compiler, opts ...Option) *Server {
	s := &Server{
		compiler: c,
		logger:   observability.NopLogger{},
		metrics:  observability.NopMetrics{},
		timeout:  defaultTimeout,
		maxBody:  defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFastHTTPServer wraps HandleRequest in a fasthttp.Server sized for s.
func (s *Server) NewFastHTTPServer(name string) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:                      s.HandleRequest,
		Name:                         name,
		ReadTimeout:                  s.timeout,
		WriteTimeout:                 s.timeout,
		IdleTimeout:                  s.timeout,
		MaxRequestBodySize:           s.maxBody,
		DisablePreParseMultipartForm: true,
		NoDefaultServerHeader:        true,
	}
}

// SourceRequest is the body of /compile, /html and /validate.
type SourceRequest struct {
	Content string `json:"content"`
}

type htmlResponse struct {
	HTML     string   `json:"html"`
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

type templateResponse struct {
	ID    string `json:"id"`
	Latex string `json:"latex"`
}

type editorResponse struct {
	Completions []latex.Completion     `json:"completions"`
	Language    latex.LanguageSettings `json:"language"`
	Theme       latex.Theme            `json:"theme"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

func (s *Server) HandleRequest(ctx *fasthttp.RequestCtx) {
	requestID := string(ctx.Request.Header.Peek(headerRequestID))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.Response.Header.Set(headerRequestID, requestID)
	log := s.logger.With(observability.String("request_id", requestID))

	path := string(ctx.Path())
	switch {
	case path == "/health":
		ctx.Response.Header.Set("Content-Type", "text/plain")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("OK")
	case path == "/metrics":
		if s.metricsHandler == nil {
			s.writeError(ctx, requestID, fasthttp.StatusNotFound, "metrics disabled")
			return
		}
		s.metricsHandler(ctx)
	case path == "/compile":
		if s.allowPost(ctx, requestID) {
			s.handleCompile(ctx, requestID, log)
		}
	case path == "/html":
		if s.allowPost(ctx, requestID) {
			s.handleHTML(ctx, requestID)
		}
	case path == "/validate":
		if s.allowPost(ctx, requestID) {
			s.handleValidate(ctx, requestID)
		}
	case path == "/templates":
		s.writeJSON(ctx, fasthttp.StatusOK, templates.All())
	case strings.HasPrefix(path, "/templates/"):
		s.handleTemplate(ctx, requestID, log, strings.TrimPrefix(path, "/templates/"))
	case path == "/editor":
		s.writeJSON(ctx, fasthttp.StatusOK, editorResponse{
			Completions: latex.Completions(),
			Language:    latex.LanguageConfig(),
			Theme:       latex.SyntaxTheme(),
		})
	default:
		log.Warn("not found", observability.String("path", path))
		s.writeError(ctx, requestID, fasthttp.StatusNotFound, "Endpoint not found")
	}
}

func (s *Server) allowPost(ctx *fasthttp.RequestCtx, requestID string) bool {
	if ctx.IsPost() {
		return true
	}
	ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
	s.writeError(ctx, requestID, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// readSource accepts a JSON SourceRequest or, for any other content type,
// the raw body as the document.
func (s *Server) readSource(ctx *fasthttp.RequestCtx, requestID string) (string, bool) {
	body := ctx.PostBody()
	if len(body) > s.maxBody {
		s.writeError(ctx, requestID, fasthttp.StatusRequestEntityTooLarge, "Request body too large")
		return "", false
	}
	if !strings.HasPrefix(string(ctx.Request.Header.ContentType()), "application/json") {
		return string(body), true
	}
	var req SourceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(ctx, requestID, fasthttp.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return "", false
	}
	return req.Content, true
}

func (s *Server) handleCompile(ctx *fasthttp.RequestCtx, requestID string, log observability.Logger) {
	content, ok := s.readSource(ctx, requestID)
	if !ok {
		return
	}
	s.compile(ctx, requestID, log, content)
}

func (s *Server) compile(ctx *fasthttp.RequestCtx, requestID string, log observability.Logger, content string) {
	cctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.compiler.CompileResult(cctx, content)
	if err != nil {
		status := fasthttp.StatusInternalServerError
		switch {
		case errors.Is(err, raster.ErrEmptyContent):
			status = fasthttp.StatusUnprocessableEntity
		case errors.Is(err, context.DeadlineExceeded):
			status = fasthttp.StatusGatewayTimeout
		}
		log.Error("compile request failed", observability.Error("error", err))
		s.writeError(ctx, requestID, status, err.Error())
		return
	}

	cacheStatus := "MISS"
	if res.CacheHit {
		cacheStatus = "HIT"
	}
	ctx.Response.Header.Set("Content-Type", "application/pdf")
	ctx.Response.Header.Set("Content-Disposition", `inline; filename="document.pdf"`)
	ctx.Response.Header.Set(headerCache, cacheStatus)
	ctx.Response.Header.Set(headerDegraded, strconv.FormatBool(res.Degraded))
	if res.Pages > 0 {
		ctx.Response.Header.Set(headerPages, strconv.Itoa(res.Pages))
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(res.PDF)
}

func (s *Server) handleHTML(ctx *fasthttp.RequestCtx, requestID string) {
	content, ok := s.readSource(ctx, requestID)
	if !ok {
		return
	}
	res := s.compiler.ToHTML(content)
	s.writeJSON(ctx, fasthttp.StatusOK, htmlResponse{HTML: res.HTML, Degraded: res.Degraded, Warnings: res.Warnings})
}

func (s *Server) handleValidate(ctx *fasthttp.RequestCtx, requestID string) {
	content, ok := s.readSource(ctx, requestID)
	if !ok {
		return
	}
	report := latex.Validate(content)
	s.metrics.ObserveValidation(len(report.Errors))
	s.writeJSON(ctx, fasthttp.StatusOK, report)
}

// handleTemplate serves GET (sample data) or POST (caller's ResumeData).
// ?format=pdf compiles the generated source.
func (s *Server) handleTemplate(ctx *fasthttp.RequestCtx, requestID string, log observability.Logger, id string) {
	tmpl, err := templates.Get(id)
	if err != nil {
		s.writeError(ctx, requestID, fasthttp.StatusNotFound, err.Error())
		return
	}

	data := templates.SampleData()
	switch {
	case ctx.IsPost():
		body := ctx.PostBody()
		if len(body) > s.maxBody {
			s.writeError(ctx, requestID, fasthttp.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if len(body) > 0 {
			data = &templates.ResumeData{}
			if err := json.Unmarshal(body, data); err != nil {
				s.writeError(ctx, requestID, fasthttp.StatusBadRequest, "Invalid resume data: "+err.Error())
				return
			}
		}
	case ctx.IsGet():
	default:
		s.writeError(ctx, requestID, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	src, err := tmpl.Generate(data)
	if err != nil {
		s.writeError(ctx, requestID, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	if string(ctx.QueryArgs().Peek("format")) == "pdf" {
		s.compile(ctx, requestID, log, src)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, templateResponse{ID: tmpl.ID, Latex: src})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", observability.Error("error", err))
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, requestID string, status int, message string) {
	s.writeJSON(ctx, status, errorResponse{Error: message, RequestID: requestID})
}
