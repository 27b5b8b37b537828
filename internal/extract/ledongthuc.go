package extract

import (
	"bytes"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

type ledongthucSource struct {
	r *lpdf.Reader
}

func openLedongthuc(data []byte) (src Source, err error) {
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("ledongthuc: %v", r)
		}
	}()
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucSource{r: r}, nil
}

func (s ledongthucSource) NumPage() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("page count: %v", r)
		}
	}()
	return s.r.NumPage(), nil
}

// PageText returns one fragment per show-text operation, top row first.
func (s ledongthucSource) PageText(n int) (frags []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("page %d: %v", n, r)
		}
	}()
	p := s.r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: no page object", n)
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}
	for _, row := range rows {
		for _, t := range row.Content {
			frags = append(frags, t.S)
		}
	}
	return frags, nil
}
