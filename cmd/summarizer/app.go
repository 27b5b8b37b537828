package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/clipboard"
	"github.com/thywilljoshua/pdf-summarizer/internal/config"
	"github.com/thywilljoshua/pdf-summarizer/internal/extract"
	"github.com/thywilljoshua/pdf-summarizer/internal/history"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// app holds everything a command needs; close releases it.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	history *history.Store
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	if cfg.History.Path != "" {
		a.history, err = history.Open(cfg.History.Path, log.Named("history"))
		if err != nil {
			log.Sync()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn("failed to close history", zap.Error(err))
		}
	}
	a.log.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func (a *app) summarizer(ctx context.Context) (*ai.Gemini, error) {
	return ai.NewGemini(ctx, ai.GeminiOptions{
		APIKey:  a.cfg.Gemini.APIKey,
		Model:   a.cfg.Gemini.Model,
		BaseURL: a.cfg.Gemini.BaseURL,
		Timeout: a.cfg.Gemini.Timeout,
		Logger:  a.log.Named("gemini"),
	})
}

func (a *app) extractor() (*extract.Extractor, error) {
	return extract.New(extract.Options{
		Backend:  a.cfg.PDF.Backend,
		Validate: a.cfg.PDF.Validate,
		MaxSize:  a.cfg.PDF.MaxBytes,
		Logger:   a.log.Named("extract"),
	})
}

func (a *app) orchestratorOptions(extra ...orchestrator.Option) []orchestrator.Option {
	opts := []orchestrator.Option{
		orchestrator.WithLogger(a.log.Named("orchestrator")),
		orchestrator.WithTimings(a.cfg.Timings),
	}
	if a.history != nil {
		opts = append(opts, orchestrator.WithRecorder(a.history))
	}
	return append(opts, extra...)
}

// progressPrinter writes each new phase label to w as the decorative counter moves.
func progressPrinter(w io.Writer) func(orchestrator.Snapshot) {
	var mu sync.Mutex
	last := ""
	return func(s orchestrator.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.PhaseLabel == "" || s.PhaseLabel == last {
			return
		}
		last = s.PhaseLabel
		fmt.Fprintf(w, "[%d/%d] %s\n", s.Phase+1, len(s.Phases), s.PhaseLabel)
	}
}

type outputOptions struct {
	asJSON   bool
	copy     bool
	showText bool
}

// printOutcome renders a finished Run. A failed Run becomes the command's error.
func printOutcome(out, errOut io.Writer, o *orchestrator.Orchestrator, res orchestrator.Result, oo outputOptions) error {
	var doc *extract.Document
	if oo.showText {
		if d := o.Snapshot().Document; d != nil && d.Text != "" {
			doc = d
		}
	}
	if oo.asJSON {
		var v any = res
		if doc != nil {
			v = struct {
				orchestrator.Result
				Document *extract.Document `json:"document"`
			}{res, doc}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
	} else {
		if doc != nil {
			fmt.Fprintf(out, "Extracted text (%d words):\n%s\n\n", doc.WordCount, doc.Text)
		}
		if res.OK() {
			fmt.Fprintln(out, res.Text)
		}
	}
	if !res.OK() {
		return fmt.Errorf("%s", res.Error)
	}
	if snap := o.Snapshot(); snap.Notice != nil {
		fmt.Fprintln(errOut, snap.Notice.Message)
	}
	if !oo.asJSON {
		fmt.Fprintf(errOut, "%d words\n", res.OutputWords)
	}
	if oo.copy {
		err := o.Copy(clipboard.System{})
		switch n := o.Snapshot().Notice; {
		case n != nil:
			fmt.Fprintln(errOut, n.Message)
		case err != nil:
			fmt.Fprintln(errOut, orchestrator.UserMessage(err))
		}
	}
	return nil
}
