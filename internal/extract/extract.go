// Package extract turns PDF bytes into plain text for summarization.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const ContentTypePDF = "application/pdf"

var (
	ErrNotPDF         = errors.New("extract: not a pdf file")
	ErrTooLarge       = errors.New("extract: pdf exceeds size limit")
	ErrNoReadableText = errors.New("extract: no readable text")
	ErrCorruptFile    = errors.New("extract: unreadable pdf container")
)

// Document is a selected PDF. The extraction fields stay zero until the
// document has been through Extract.
type Document struct {
	Data         []byte    `json:"-"`
	Name         string    `json:"name"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
	PageCount    int       `json:"page_count,omitempty"`
	Text         string    `json:"text,omitempty"`
	WordCount    int       `json:"word_count,omitempty"`
}

// NewDocument accepts a file only when its declared type is PDF.
func NewDocument(name, declaredType string, data []byte, modTime time.Time) (*Document, error) {
	if !isPDFType(declaredType) {
		return nil, ErrNotPDF
	}
	return &Document{
		Data:         data,
		Name:         name,
		Size:         int64(len(data)),
		LastModified: modTime,
	}, nil
}

func isPDFType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == ContentTypePDF
}

// Extraction is the result of one successful Extract call.
type Extraction struct {
	Text      string
	PageCount int
	WordCount int
}

// Source is an opened PDF whose pages can be read independently.
type Source interface {
	NumPage() (int, error)
	// PageText returns the text fragments of page n (1-based) in content order.
	PageText(n int) ([]string, error)
}

// Opener parses a whole PDF buffer. An error means the container itself is unusable.
type Opener func(data []byte) (Source, error)

type Options struct {
	// Backend is "rsc" (default) or "ledongthuc".
	Backend string
	// Validate runs a pdfcpu structural check before the backend opens the file.
	Validate bool
	// MaxSize rejects larger buffers; zero means unlimited.
	MaxSize int64
	Logger  *zap.Logger
}

type Extractor struct {
	open    Opener
	maxSize int64
	log     *zap.Logger
}

func New(opts Options) (*Extractor, error) {
	var open Opener
	switch strings.ToLower(opts.Backend) {
	case "", "rsc":
		open = openRSC
	case "ledongthuc":
		open = openLedongthuc
	default:
		return nil, fmt.Errorf("unknown pdf backend %q (want rsc|ledongthuc)", opts.Backend)
	}
	if opts.Validate {
		open = validated(open)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{open: open, maxSize: opts.MaxSize, log: opts.Logger}, nil
}

// Extract reads every page in order. A page that fails is logged and skipped;
// only a container that cannot be opened, or a document with no text at all, fails.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Extraction, error) {
	if e.maxSize > 0 && int64(len(data)) > e.maxSize {
		return nil, ErrTooLarge
	}
	src, err := e.open(data)
	if err != nil {
		e.log.Warn("failed to open pdf", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, fmt.Errorf("%w (%v)", ErrCorruptFile, err)
	}

	n, err := src.NumPage()
	if err != nil {
		e.log.Warn("failed to count pdf pages", zap.Error(err))
		return nil, fmt.Errorf("%w (%v)", ErrCorruptFile, err)
	}
	var b strings.Builder
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags, err := src.PageText(page)
		if err != nil {
			e.log.Warn("skipping unreadable page", zap.Int("page", page), zap.Error(err))
			continue
		}
		if t := joinFragments(frags); t != "" {
			b.WriteString(t)
			b.WriteString("\n\n")
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, ErrNoReadableText
	}
	out := &Extraction{Text: text, PageCount: n, WordCount: WordCount(text)}
	e.log.Debug("extracted pdf text",
		zap.Int("pages", out.PageCount),
		zap.Int("words", out.WordCount))
	return out, nil
}

func joinFragments(frags []string) string {
	kept := make([]string, 0, len(frags))
	for _, f := range frags {
		if strings.TrimSpace(f) != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
