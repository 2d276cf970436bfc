package dashboard

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	harnessdto "dojo/internal/modules/harness/dto"
	watchdto "dojo/internal/modules/watch/dto"
)

// PlainReporter writes one line per event, for pipes and dumb terminals.
type PlainReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{w: w}
}

func (r *PlainReporter) Report(event watchdto.Event) {
	line := plainLine(event)
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "[%s] %s\n", event.At.Format("15:04:05"), line)
}

func plainLine(event watchdto.Event) string {
	switch event.Kind {
	case watchdto.EventListening:
		return fmt.Sprintf("watching %s in %s", event.KataSlug, event.Workspace)
	case watchdto.EventQueued:
		return "change queued behind the current run"
	case watchdto.EventRunStarted:
		return "running tests"
	case watchdto.EventVerdict:
		if event.Verdict == nil {
			return ""
		}
		return FormatVerdict(*event.Verdict)
	case watchdto.EventRecorded:
		return recordedLine(event)
	case watchdto.EventHint:
		return "hint: " + event.Hint
	case watchdto.EventError:
		if event.Err == nil {
			return ""
		}
		return "error: " + event.Err.Error()
	case watchdto.EventStopped:
		return "stopped"
	}
	return ""
}

// FormatVerdict renders a verdict with each failure on its own indented line.
func FormatVerdict(v harnessdto.VerdictOutput) string {
	took := v.Duration.Round(time.Millisecond)
	if v.Passed() {
		return fmt.Sprintf("PASSED in %s", took)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s", strings.ToUpper(v.Kind), took)
	if v.Summary != "" && len(v.Failures) == 0 {
		fmt.Fprintf(&b, ": %s", v.Summary)
	}
	for _, f := range v.Failures {
		fmt.Fprintf(&b, "\n    %s: %s", f.Name, f.Message)
	}
	return b.String()
}
