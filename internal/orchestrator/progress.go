package orchestrator

import (
	"sync"
	"time"
)

var (
	TextPhases = []string{
		"Analyzing text...",
		"Processing with AI...",
		"Generating results...",
		"Finalizing output...",
	}
	PDFPhases = []string{
		"Reading PDF...",
		"Extracting text...",
		"Processing with AI...",
		"Generating results...",
	}
)

func phasesFor(s Surface) []string {
	if s == SurfacePDF {
		return PDFPhases
	}
	return TextPhases
}

// phaseTicker moves the progress label forward on a fixed cadence. It knows
// nothing about the real extraction or model call; it only runs while one is
// outstanding.
type phaseTicker struct {
	done chan struct{}
	wg   sync.WaitGroup
}

func startPhaseTicker(interval time.Duration, tick func()) *phaseTicker {
	t := &phaseTicker{done: make(chan struct{})}
	if interval <= 0 {
		return t
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-tk.C:
				tick()
			}
		}
	}()
	return t
}

// stop waits for the goroutine so no tick lands after the caller resets the phase.
func (t *phaseTicker) stop() {
	close(t.done)
	t.wg.Wait()
}
