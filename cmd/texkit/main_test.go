package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_TemplateLatex(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{template: "modern", mode: modeLatex}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `\begin{document}`) || !strings.Contains(out.String(), "John Doe") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRun_Validate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.tex")
	if err := os.WriteFile(path, []byte(`\textbf{x`), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), options{input: path, mode: modeValidate}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `warning: Missing \documentclass declaration`) {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRun_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.tex")
	if err := os.WriteFile(path, []byte(`\section{Skills}`), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), options{input: path, mode: modeHTML}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "<h2") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRun_PDFWithPreviews(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "texkit.yaml")
	if err := os.WriteFile(cfgPath, []byte("render:\n  settle_delay: 0s\nlog:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := options{
		template:   "minimalist",
		output:     filepath.Join(dir, "resume.pdf"),
		configPath: cfgPath,
		previewDir: filepath.Join(dir, "previews"),
		thumbWidth: 100,
	}
	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if _, err := os.Stat(filepath.Join(opts.previewDir, "page-001.png")); err != nil {
		t.Fatalf("first preview missing: %v", err)
	}
	if !strings.Contains(out.String(), "KB)") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRun_UnknownTemplate(t *testing.T) {
	if err := run(context.Background(), options{template: "baroque"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}
