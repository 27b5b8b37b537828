package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/clipboard"
	"github.com/thywilljoshua/pdf-summarizer/internal/extract"
)

type Surface string

const (
	SurfaceText Surface = "text"
	SurfacePDF  Surface = "pdf"
)

func ParseSurface(s string) (Surface, error) {
	switch Surface(s) {
	case SurfaceText, SurfacePDF:
		return Surface(s), nil
	}
	return "", fmt.Errorf("unknown surface %q", s)
}

type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ErrorClass groups failures the way callers react to them.
type ErrorClass string

const (
	ClassValidation ErrorClass = "validation"
	ClassExtraction ErrorClass = "extraction"
	ClassRequest    ErrorClass = "request"
	ClassClipboard  ErrorClass = "clipboard"
	ClassCanceled   ErrorClass = "canceled"
	ClassInternal   ErrorClass = "internal"
)

// ValidationError is raised before any extraction or network activity.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	errEmptyText = &ValidationError{Message: "Please enter some text to summarize."}
	errNoFile    = &ValidationError{Message: "Please select a PDF file first."}
	errNoResult  = &ValidationError{Message: "Nothing to copy yet."}
	errWrongFlow = &ValidationError{Message: "Files can only be selected on the PDF surface."}
)

const (
	msgNotPDF      = "Please select a valid PDF file."
	msgTooLarge    = "The PDF file is too large."
	msgNoText      = "No readable text found in the PDF. This might be a scanned document or image-based PDF."
	msgCorruptFile = "Failed to extract text from PDF. Please ensure the file is not corrupted and try a different PDF."
	msgClipboard   = "Failed to copy to clipboard"
	msgCanceled    = "The request was cancelled before it finished."
	msgInternal    = "Something went wrong. Please try again."
	msgCopied      = "Copied to clipboard!"
	msgSummaryOK   = "Summary generated successfully in %.1fs!"
	msgKeyPointOK  = "Key points %s successfully in %.1fs!"
)

// Result is the immutable outcome of one Run.
type Result struct {
	ID            string           `json:"id"`
	Surface       Surface          `json:"surface"`
	Outcome       Outcome          `json:"outcome"`
	Text          string           `json:"text,omitempty"`
	Error         string           `json:"error,omitempty"`
	ErrorClass    ErrorClass       `json:"error_class,omitempty"`
	ErrorKind     string           `json:"error_kind,omitempty"`
	Retryable     bool             `json:"retryable,omitempty"`
	Config        ai.RequestConfig `json:"config"`
	StartedAt     time.Time        `json:"started_at"`
	Elapsed       time.Duration    `json:"-"`
	ElapsedMillis int64            `json:"elapsed_ms"`
	FileName      string           `json:"file_name,omitempty"`
	PageCount     int              `json:"page_count,omitempty"`
	WordCount     int              `json:"word_count,omitempty"`
	// OutputWords counts the words of Text.
	OutputWords   int              `json:"output_words,omitempty"`

	err error
}

func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }

// Err is the underlying error of a failed Result, nil on success or after a history round trip.
func (r Result) Err() error { return r.err }

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// UserMessage converts any error reaching the orchestrator into the text shown to the user.
func UserMessage(err error) string {
	var verr *ValidationError
	var rerr *ai.RequestError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, extract.ErrNotPDF):
		return msgNotPDF
	case errors.Is(err, extract.ErrNoReadableText):
		return msgNoText
	case errors.Is(err, extract.ErrTooLarge):
		return msgTooLarge
	case errors.Is(err, extract.ErrCorruptFile):
		return msgCorruptFile
	case errors.As(err, &rerr):
		return rerr.Error()
	case errors.Is(err, clipboard.ErrClipboard):
		return msgClipboard
	case canceled(err):
		return msgCanceled
	}
	return msgInternal
}

func Classify(err error) ErrorClass {
	var verr *ValidationError
	var rerr *ai.RequestError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr), errors.Is(err, extract.ErrNotPDF):
		return ClassValidation
	case errors.Is(err, extract.ErrNoReadableText), errors.Is(err, extract.ErrCorruptFile), errors.Is(err, extract.ErrTooLarge):
		return ClassExtraction
	case errors.As(err, &rerr):
		return ClassRequest
	case errors.Is(err, clipboard.ErrClipboard):
		return ClassClipboard
	case canceled(err):
		return ClassCanceled
	}
	return ClassInternal
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func successMessage(s Surface, mode ai.Mode, d time.Duration) string {
	secs := d.Seconds()
	if mode == ai.ModeKeyPoints {
		verb := "generated"
		if s == SurfaceText {
			verb = "extracted"
		}
		return fmt.Sprintf(msgKeyPointOK, verb, secs)
	}
	return fmt.Sprintf(msgSummaryOK, secs)
}
