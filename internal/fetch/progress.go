// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"io"
	"time"
)

// progressInterval throttles redraws of the progress line.
const progressInterval = 200 * time.Millisecond

// progress is an io.Writer that counts bytes and redraws a single status
// line on out, wget style.
type progress struct {
	out   io.Writer
	name  string
	total int64
	done  int64
	last  time.Time
}

func newProgress(out io.Writer, name string, total int64) *progress {
	return &progress{out: out, name: name, total: total}
}

func (p *progress) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if now := time.Now(); now.Sub(p.last) >= progressInterval {
		p.last = now
		p.draw()
	}
	return len(b), nil
}

func (p *progress) draw() {
	if p.total > 0 {
		pct := p.done * 100 / p.total
		fmt.Fprintf(p.out, "\r  %s %3d%% [%s / %s]", p.name, pct, humanBytes(p.done), humanBytes(p.total))
		return
	}
	fmt.Fprintf(p.out, "\r  %s [%s]", p.name, humanBytes(p.done))
}

// finish draws the final state and ends the line so the next status line
// does not overlap it.
func (p *progress) finish() {
	p.draw()
	fmt.Fprintln(p.out)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
