package ai

import (
	"strings"
	"testing"
)

func TestSummaryPromptLength(t *testing.T) {
	cases := []struct {
		length Length
		want   string
	}{
		{LengthShort, "in 2-3 sentences"},
		{LengthMedium, "in 1-2 paragraphs"},
		{LengthLong, "in 3-4 paragraphs with detailed key points"},
		{Length("bogus"), "in 1-2 paragraphs"},
	}
	for _, tc := range cases {
		p := SummaryPrompt("AI is transforming industries.", tc.length)
		if !strings.Contains(p, tc.want) {
			t.Errorf("length %q: prompt %q missing %q", tc.length, p, tc.want)
		}
		if !strings.HasSuffix(p, "\n\nAI is transforming industries.") {
			t.Errorf("length %q: prompt does not end with the literal text: %q", tc.length, p)
		}
	}
}

func TestPDFSummaryPromptFocus(t *testing.T) {
	p := PDFSummaryPrompt("body", LengthLong, FocusAcademic)
	for _, want := range []string{
		"in 3-4 paragraphs with detailed analysis",
		"research methodology",
		"Document Content:\nbody\n\n",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if got := PDFSummaryPrompt("body", LengthMedium, Focus("nope")); !strings.Contains(got, summaryFocus[FocusGeneral]) {
		t.Errorf("unknown focus should fall back to general:\n%s", got)
	}
}

func TestFocusTablesComplete(t *testing.T) {
	for _, f := range []Focus{FocusGeneral, FocusAcademic, FocusBusiness, FocusTechnical, FocusExecutive} {
		if summaryFocus[f] == "" || keyPointsFocus[f] == "" {
			t.Errorf("focus %q missing an instruction", f)
		}
		if !strings.Contains(PDFKeyPointsPrompt("x", f), keyPointsFocus[f]) {
			t.Errorf("focus %q not used in key points prompt", f)
		}
	}
}

func TestKeyPointsPrompt(t *testing.T) {
	p := KeyPointsPrompt("line one")
	if !strings.Contains(p, "bulleted list") || !strings.HasSuffix(p, "line one") {
		t.Fatalf("unexpected prompt %q", p)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("empty values should give defaults, got %+v", cfg)
	}
	cfg, err = ParseConfig("KeyPoints", "short", " Executive ")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeKeyPoints || cfg.Length != LengthShort || cfg.Focus != FocusExecutive {
		t.Fatalf("got %+v", cfg)
	}
	if _, err := ParseConfig("poem", "", ""); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, err := ParseConfig("", "huge", ""); err == nil {
		t.Fatal("expected error for unknown length")
	}
	if _, err := ParseConfig("", "", "legal"); err == nil {
		t.Fatal("expected error for unknown focus")
	}
}
