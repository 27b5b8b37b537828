package ai

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects what the model is asked to produce.
type Mode string

const (
	ModeSummary   Mode = "summary"
	ModeKeyPoints Mode = "keypoints"
)

// Length only applies to summaries.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Focus is the instruction profile used on the PDF path.
type Focus string

const (
	FocusGeneral   Focus = "general"
	FocusAcademic  Focus = "academic"
	FocusBusiness  Focus = "business"
	FocusTechnical Focus = "technical"
	FocusExecutive Focus = "executive"
)

// RequestConfig is fixed for the lifetime of one request.
type RequestConfig struct {
	Mode   Mode   `json:"mode"`
	Length Length `json:"length,omitempty"`
	Focus  Focus  `json:"focus,omitempty"`
}

// DefaultConfig mirrors the initial selector values.
func DefaultConfig() RequestConfig {
	return RequestConfig{Mode: ModeSummary, Length: LengthMedium, Focus: FocusGeneral}
}

// Summarizer is the text-in/text-out contract of the remote model.
type Summarizer interface {
	Summarize(ctx context.Context, text string, length Length) (string, error)
	ExtractKeyPoints(ctx context.Context, text string) (string, error)
	SummarizePDF(ctx context.Context, text string, length Length, focus Focus) (string, error)
	ExtractPDFKeyPoints(ctx context.Context, text string, focus Focus) (string, error)
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeSummary, nil
	case ModeSummary, ModeKeyPoints:
		return m, nil
	case "key-points", "key_points":
		return ModeKeyPoints, nil
	}
	return "", fmt.Errorf("unknown mode %q (want summary|keypoints)", s)
}

func ParseLength(s string) (Length, error) {
	switch l := Length(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LengthMedium, nil
	case LengthShort, LengthMedium, LengthLong:
		return l, nil
	}
	return "", fmt.Errorf("unknown length %q (want short|medium|long)", s)
}

func ParseFocus(s string) (Focus, error) {
	switch f := Focus(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FocusGeneral, nil
	case FocusGeneral, FocusAcademic, FocusBusiness, FocusTechnical, FocusExecutive:
		return f, nil
	}
	return "", fmt.Errorf("unknown focus %q (want general|academic|business|technical|executive)", s)
}

// ParseConfig validates raw selector values, filling defaults for empty ones.
func ParseConfig(mode, length, focus string) (RequestConfig, error) {
	var cfg RequestConfig
	var err error
	if cfg.Mode, err = ParseMode(mode); err != nil {
		return cfg, err
	}
	if cfg.Length, err = ParseLength(length); err != nil {
		return cfg, err
	}
	if cfg.Focus, err = ParseFocus(focus); err != nil {
		return cfg, err
	}
	return cfg, nil
}
