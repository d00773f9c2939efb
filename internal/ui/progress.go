package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Progress draws a single status line on stderr while a long step runs.
// It is a no-op when stderr is not a terminal.
type Progress struct {
	w     io.Writer
	label string

	mu    sync.Mutex
	done  int
	total int

	stop    chan struct{}
	stopped chan struct{}
}

// StartProgress begins redrawing label every 200ms until Stop is called.
func (u *UI) StartProgress(label string) *Progress {
	p := &Progress{w: u.Err, label: label}
	if u.Err == nil || !IsTTY(u.Err) {
		return p
	}
	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})

	go func() {
		defer close(p.stopped)
		start := time.Now()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		frame := 0

		for {
			select {
			case <-p.stop:
				fmt.Fprint(p.w, "\r\033[2K")
				return
			case <-ticker.C:
				fmt.Fprintf(p.w, "\r\033[2K%s %s", p.line(time.Since(start)), spinnerFrames[frame%len(spinnerFrames)])
				frame++
			}
		}
	}()
	return p
}

// Update records how many of total steps have finished.
func (p *Progress) Update(done, total int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.done, p.total = done, total
	p.mu.Unlock()
}

func (p *Progress) line(elapsed time.Duration) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	seconds := int(elapsed.Seconds())
	if p.total > 0 {
		return fmt.Sprintf("%s... %d/%d %ds", p.label, p.done, p.total, seconds)
	}
	return fmt.Sprintf("%s... %ds", p.label, seconds)
}

// Stop clears the status line. It is safe to call more than once.
func (p *Progress) Stop() {
	if p == nil || p.stop == nil {
		return
	}
	select {
	case <-p.stop:
		return
	default:
	}
	close(p.stop)
	<-p.stopped
}
