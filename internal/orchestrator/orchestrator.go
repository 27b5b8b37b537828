// Package orchestrator drives one surface (plain text or PDF) through
// validate, extract, submit and publishes the outcome as auto-expiring notices.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/clipboard"
	"github.com/thywilljoshua/pdf-summarizer/internal/extract"
)

// Extractor is satisfied by *extract.Extractor.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*extract.Extraction, error)
}

// Recorder receives every finished Result.
type Recorder interface {
	Record(r Result) error
}

// Timings controls the decorative progress cadence and how long notices stay up.
type Timings struct {
	PhaseInterval    time.Duration `yaml:"phase_interval"`
	ValidationNotice time.Duration `yaml:"validation"`
	SuccessNotice    time.Duration `yaml:"success"`
	FailureNotice    time.Duration `yaml:"failure"`
	CopyNotice       time.Duration `yaml:"copy"`
}

func DefaultTimings() Timings {
	return Timings{
		PhaseInterval:    time.Second,
		ValidationNotice: 3 * time.Second,
		SuccessNotice:    5 * time.Second,
		FailureNotice:    5 * time.Second,
		CopyNotice:       2 * time.Second,
	}
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Input is what the presentation layer supplies for one Run.
type Input struct {
	Text   string
	Config ai.RequestConfig
}

// Snapshot is a copy of the visible state; safe to keep.
type Snapshot struct {
	Surface    Surface           `json:"surface"`
	State      State             `json:"state"`
	Phase      int               `json:"phase"`
	PhaseLabel string            `json:"phase_label,omitempty"`
	Phases     []string          `json:"phases"`
	Notice     *Notice           `json:"notice,omitempty"`
	Result     *Result           `json:"result,omitempty"`
	Document   *extract.Document `json:"document,omitempty"`
}

type Option func(*Orchestrator)

func WithExtractor(e Extractor) Option { return func(o *Orchestrator) { o.extractor = e } }
func WithLogger(l *zap.Logger) Option  { return func(o *Orchestrator) { o.log = l } }
func WithRecorder(r Recorder) Option   { return func(o *Orchestrator) { o.recorder = r } }
func WithTimings(t Timings) Option     { return func(o *Orchestrator) { o.timings = t } }

// WithObserver registers a callback for every visible change. It may be called
// from the ticker goroutine and from Run concurrently.
func WithObserver(fn func(Snapshot)) Option { return func(o *Orchestrator) { o.observer = fn } }

type Orchestrator struct {
	surface   Surface
	client    ai.Summarizer
	extractor Extractor
	recorder  Recorder
	observer  func(Snapshot)
	timings   Timings
	phases    []string
	log       *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	gen         uint64
	state       State
	phase       int
	result      *Result
	doc         *extract.Document
	docSeq      uint64
	notice      *Notice
	noticeSeq   uint64
	noticeTimer *time.Timer
}

func New(surface Surface, client ai.Summarizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		surface: surface,
		client:  client,
		timings: DefaultTimings(),
		phases:  phasesFor(surface),
		log:     zap.NewNop(),
		now:     time.Now,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With(zap.String("surface", string(surface)))
	return o
}

func (o *Orchestrator) Surface() Surface { return o.surface }

// Select validates an uploaded file and makes it the current document.
// Rejections raise a transient error notice and leave the previous document in place.
func (o *Orchestrator) Select(name, declaredType string, data []byte, modTime time.Time) (*extract.Document, error) {
	if o.surface != SurfacePDF {
		return nil, errWrongFlow
	}
	doc, err := extract.NewDocument(name, declaredType, data, modTime)
	if err != nil {
		o.mu.Lock()
		o.setNoticeLocked(NoticeError, UserMessage(err), o.timings.ValidationNotice)
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return nil, err
	}

	o.mu.Lock()
	o.gen++
	o.doc = doc
	o.docSeq++
	o.state = StateIdle
	o.phase = 0
	o.result = nil
	o.clearNoticeLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.log.Info("document selected", zap.String("file", name), zap.Int64("bytes", doc.Size))
	o.notify(snap)
	return doc, nil
}

// Clear returns to Idle and drops the document, result and notice. A Run still
// in flight keeps going but its outcome is discarded.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.gen++
	o.doc = nil
	o.docSeq++
	o.state = StateIdle
	o.phase = 0
	o.result = nil
	o.clearNoticeLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Run performs one invocation and returns its Result. Nothing is retried.
// Starting a Run supersedes any previous one: only the newest publishes its outcome.
func (o *Orchestrator) Run(ctx context.Context, in Input) Result {
	start := o.now()

	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.state = StateIdle
	o.phase = 0
	o.result = nil
	o.clearNoticeLocked()
	var doc extract.Document
	hasDoc := o.doc != nil
	if hasDoc {
		doc = *o.doc
	}
	docSeq := o.docSeq
	o.mu.Unlock()

	res := Result{
		ID:        newID(),
		Surface:   o.surface,
		Config:    in.Config,
		StartedAt: start,
	}

	var text string
	switch o.surface {
	case SurfacePDF:
		if !hasDoc {
			return o.finish(gen, res, errNoFile, start, nil, 0)
		}
		res.FileName = doc.Name
	default:
		if strings.TrimSpace(in.Text) == "" {
			return o.finish(gen, res, errEmptyText, start, nil, 0)
		}
		text = in.Text
	}

	ticker := startPhaseTicker(o.timings.PhaseInterval, func() { o.advance(gen) })

	if o.surface == SurfacePDF {
		o.transition(gen, StateExtracting)
		ex, err := o.extract(ctx, doc.Data)
		if err != nil {
			ticker.stop()
			return o.finish(gen, res, err, start, nil, 0)
		}
		doc.PageCount, doc.Text, doc.WordCount = ex.PageCount, ex.Text, ex.WordCount
		res.PageCount, res.WordCount = ex.PageCount, ex.WordCount
		text = ex.Text
	}

	o.transition(gen, StateSubmitting)
	out, err := o.submit(ctx, text, in.Config)
	ticker.stop()
	if err != nil {
		return o.finish(gen, res, err, start, &doc, docSeq)
	}
	res.Text = out
	return o.finish(gen, res, nil, start, &doc, docSeq)
}

func (o *Orchestrator) extract(ctx context.Context, data []byte) (*extract.Extraction, error) {
	if o.extractor == nil {
		return nil, errors.New("no extractor configured")
	}
	return o.extractor.Extract(ctx, data)
}

func (o *Orchestrator) submit(ctx context.Context, text string, cfg ai.RequestConfig) (string, error) {
	if o.client == nil {
		return "", errors.New("no summarizer configured")
	}
	if o.surface == SurfacePDF {
		if cfg.Mode == ai.ModeKeyPoints {
			return o.client.ExtractPDFKeyPoints(ctx, text, cfg.Focus)
		}
		return o.client.SummarizePDF(ctx, text, cfg.Length, cfg.Focus)
	}
	if cfg.Mode == ai.ModeKeyPoints {
		return o.client.ExtractKeyPoints(ctx, text)
	}
	return o.client.Summarize(ctx, text, cfg.Length)
}

func (o *Orchestrator) finish(gen uint64, res Result, err error, start time.Time, doc *extract.Document, docSeq uint64) Result {
	res.Elapsed = o.now().Sub(start)
	if res.Elapsed < 0 {
		res.Elapsed = 0
	}
	res.ElapsedMillis = res.Elapsed.Milliseconds()

	noticeKind, noticeFor := NoticeSuccess, o.timings.SuccessNotice
	var message string
	if err != nil {
		res.Outcome = OutcomeFailure
		res.err = err
		res.Error = UserMessage(err)
		res.ErrorClass = Classify(err)
		var rerr *ai.RequestError
		if errors.As(err, &rerr) {
			res.ErrorKind = rerr.Kind.String()
			res.Retryable = rerr.Retryable()
		}
		noticeKind, noticeFor, message = NoticeError, o.timings.FailureNotice, res.Error
		if res.ErrorClass == ClassValidation {
			noticeFor = o.timings.ValidationNotice
		}
	} else {
		res.Outcome = OutcomeSuccess
		res.OutputWords = extract.WordCount(res.Text)
		message = successMessage(o.surface, res.Config.Mode, res.Elapsed)
	}

	o.mu.Lock()
	live := o.gen == gen
	if live {
		if err != nil {
			o.state = StateFailed
		} else {
			o.state = StateSucceeded
		}
		o.phase = 0
		r := res
		o.result = &r
		if doc != nil && o.doc != nil && o.docSeq == docSeq && doc.PageCount > 0 {
			o.doc.PageCount, o.doc.Text, o.doc.WordCount = doc.PageCount, doc.Text, doc.WordCount
		}
		o.setNoticeLocked(noticeKind, message, noticeFor)
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	fields := []zap.Field{
		zap.String("id", res.ID),
		zap.String("outcome", string(res.Outcome)),
		zap.String("mode", string(res.Config.Mode)),
		zap.Duration("elapsed", res.Elapsed),
		zap.Bool("superseded", !live),
	}
	if err != nil {
		o.log.Warn("invocation failed", append(fields, zap.String("class", string(res.ErrorClass)), zap.Error(err))...)
	} else {
		o.log.Info("invocation succeeded", append(fields, zap.Int("chars", len(res.Text)))...)
	}

	if live {
		o.notify(snap)
	}
	if o.recorder != nil {
		if rerr := o.recorder.Record(res); rerr != nil {
			o.log.Warn("failed to record result", zap.String("id", res.ID), zap.Error(rerr))
		}
	}
	return res
}

// Copy writes the current result text to w. Success and failure only touch
// the notice; the result itself is left alone.
func (o *Orchestrator) Copy(w clipboard.Writer) error {
	o.mu.Lock()
	var text string
	ok := o.result != nil && o.result.OK()
	if ok {
		text = o.result.Text
	}
	o.mu.Unlock()

	err := error(errNoResult)
	if ok {
		err = clipboard.Copy(w, text)
	}

	o.mu.Lock()
	if err != nil {
		o.setNoticeLocked(NoticeError, UserMessage(err), o.timings.ValidationNotice)
	} else {
		o.setNoticeLocked(NoticeSuccess, msgCopied, o.timings.CopyNotice)
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
	return err
}

func (o *Orchestrator) transition(gen uint64, s State) {
	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		return
	}
	o.state = s
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) advance(gen uint64) {
	o.mu.Lock()
	if o.gen != gen || o.phase >= len(o.phases)-1 {
		o.mu.Unlock()
		return
	}
	o.phase++
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) setNoticeLocked(kind NoticeKind, msg string, d time.Duration) {
	if o.noticeTimer != nil {
		o.noticeTimer.Stop()
		o.noticeTimer = nil
	}
	o.noticeSeq++
	n := &Notice{Kind: kind, Message: msg}
	o.notice = n
	if d <= 0 {
		return
	}
	n.ExpiresAt = o.now().Add(d)
	seq := o.noticeSeq
	o.noticeTimer = time.AfterFunc(d, func() {
		o.mu.Lock()
		if o.noticeSeq != seq {
			o.mu.Unlock()
			return
		}
		o.notice = nil
		o.noticeTimer = nil
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
	})
}

func (o *Orchestrator) clearNoticeLocked() {
	if o.noticeTimer != nil {
		o.noticeTimer.Stop()
		o.noticeTimer = nil
	}
	o.noticeSeq++
	o.notice = nil
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		Surface: o.surface,
		State:   o.state,
		Phase:   o.phase,
		Phases:  o.phases,
	}
	if o.state == StateExtracting || o.state == StateSubmitting {
		s.PhaseLabel = o.phases[o.phase]
	}
	if o.notice != nil {
		n := *o.notice
		s.Notice = &n
	}
	if o.result != nil {
		r := *o.result
		s.Result = &r
	}
	if o.doc != nil {
		d := *o.doc
		d.Data = nil
		s.Document = &d
	}
	return s
}

func (o *Orchestrator) notify(s Snapshot) {
	if o.observer != nil {
		o.observer(s)
	}
}
