// Package clipboard copies result text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var ErrClipboard = errors.New("clipboard: write failed")

type Writer interface {
	WriteAll(text string) error
}

// System writes to the OS clipboard (xclip/xsel/wl-copy on Linux).
type System struct{}

func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// Copy writes text through w. Any failure matches ErrClipboard.
func Copy(w Writer, text string) error {
	if err := w.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboard, err)
	}
	return nil
}
