// Package state turns probe outcomes into statuses and decides which of them
// are transitions worth announcing.
package state

import (
	"fmt"

	"github.com/hamed0406/urlcheck/internal/domain"
)

const (
	TitleUp   = "Connected"
	TitleDown = "Disconnected"
)

// Tracker remembers the previous classification. The zero value is ready to
// use. It is not safe for concurrent use; the probe loop owns it.
type Tracker struct {
	seen        bool
	lastSuccess bool
}

// Record renders o and marks it Silent when its success flag matches the
// previous one. The first outcome is never silent.
func (t *Tracker) Record(o domain.Outcome) domain.Status {
	changed := !t.seen || t.lastSuccess != o.Success
	t.seen = true
	t.lastSuccess = o.Success

	st := domain.Status{
		Success: o.Success,
		Message: Message(o),
		Silent:  !changed,
		Outcome: o,
	}
	if o.Success {
		st.Title = TitleUp
		st.Detail = fmt.Sprintf("%s is available (%d)", o.TargetURL, o.StatusCode)
	} else {
		st.Title = TitleDown
		st.Detail = o.Reason
	}
	return st
}

// Message is the one-line status text shown to users.
func Message(o domain.Outcome) string {
	if o.Success {
		return fmt.Sprintf("Success, %d ms", o.LatencyMS)
	}
	return fmt.Sprintf("Failed after %d ms: %s", o.LatencyMS, o.Reason)
}
