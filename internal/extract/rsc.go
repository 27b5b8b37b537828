package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	rpdf "rsc.io/pdf"
)

// rscSource reads glyph positions. rsc.io/pdf drops space glyphs and advances
// X by the font's width table, so pages set in a font without /Widths (the
// standard 14 fonts usually) lose their word breaks; those pages are read
// row by row through ledongthuc instead.
type rscSource struct {
	r    *rpdf.Reader
	data []byte
	rows *ledongthucSource
}

func openRSC(data []byte) (src Source, err error) {
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("rsc: %v", r)
		}
	}()
	r, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &rscSource{r: r, data: data}, nil
}

func (s *rscSource) NumPage() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("page count: %v", r)
		}
	}()
	return s.r.NumPage(), nil
}

// PageText turns the per-glyph content stream into runs. A run breaks on a line
// change or a horizontal gap wider than a quarter of the font size.
func (s *rscSource) PageText(n int) (frags []string, err error) {
	text, err := s.glyphs(n)
	if err != nil {
		return nil, err
	}
	if missingWidths(text) {
		if rows, err := s.rowReader(); err == nil {
			return rows.PageText(n)
		}
	}
	return glyphRuns(text), nil
}

func (s *rscSource) glyphs(n int) (text []rpdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = nil, fmt.Errorf("page %d: %v", n, r)
		}
	}()
	p := s.r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: no page object", n)
	}
	return p.Content().Text, nil
}

func (s *rscSource) rowReader() (*ledongthucSource, error) {
	if s.rows == nil {
		src, err := openLedongthuc(s.data)
		if err != nil {
			return nil, err
		}
		rows := src.(ledongthucSource)
		s.rows = &rows
	}
	return s.rows, nil
}

func missingWidths(text []rpdf.Text) bool {
	for _, t := range text {
		if t.W <= 0 && strings.TrimSpace(t.S) != "" {
			return true
		}
	}
	return false
}

func glyphRuns(text []rpdf.Text) []string {
	var out []string
	var cur strings.Builder
	for i, t := range text {
		if i > 0 && !adjacent(text[i-1], t) {
			out = append(out, cur.String())
			cur.Reset()
		}
		cur.WriteString(t.S)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func adjacent(a, b rpdf.Text) bool {
	size := a.FontSize
	if size <= 0 {
		size = 1
	}
	if math.Abs(a.Y-b.Y) > size/2 {
		return false
	}
	// Without a width the pen does not move between glyphs of one string,
	// so any forward jump is a new positioning operator.
	if a.W <= 0 {
		gap := b.X - a.X
		return gap > -size && gap <= size/100
	}
	gap := b.X - (a.X + a.W)
	return gap > -size && gap < size/4
}
