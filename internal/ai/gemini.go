package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

// GeminiOptions configures NewGemini. Zero values pick defaults.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single request; zero leaves it to the caller's context.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Gemini sends every request as a single user turn and returns the reply text unchanged.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

var _ Summarizer = (*Gemini)(nil)

func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cc := &genai.ClientConfig{APIKey: opts.APIKey, Backend: genai.BackendGeminiAPI}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: opts.Model, timeout: opts.Timeout, log: opts.Logger}, nil
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) prompt(ctx context.Context, op Op, text string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, nil)
	if err == nil && res.Text() == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		rerr := newRequestError(op, err)
		g.log.Error("gemini request failed",
			zap.String("op", string(op)),
			zap.String("model", g.model),
			zap.String("kind", rerr.Kind.String()),
			zap.Error(err))
		return "", rerr
	}
	g.log.Debug("gemini request done",
		zap.String("op", string(op)),
		zap.Int("prompt_bytes", len(text)),
		zap.Duration("took", time.Since(start)))
	return res.Text(), nil
}

func (g *Gemini) Summarize(ctx context.Context, text string, length Length) (string, error) {
	return g.prompt(ctx, OpSummarize, SummaryPrompt(text, length))
}

func (g *Gemini) ExtractKeyPoints(ctx context.Context, text string) (string, error) {
	return g.prompt(ctx, OpExtractKeyPoints, KeyPointsPrompt(text))
}

func (g *Gemini) SummarizePDF(ctx context.Context, text string, length Length, focus Focus) (string, error) {
	return g.prompt(ctx, OpSummarizePDF, PDFSummaryPrompt(text, length, focus))
}

func (g *Gemini) ExtractPDFKeyPoints(ctx context.Context, text string, focus Focus) (string, error) {
	return g.prompt(ctx, OpExtractPDFKeyPoints, PDFKeyPointsPrompt(text, focus))
}
