// Package hints provides actionable user guidance for failed CLI operations.
package hints

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
)

// Hint represents actionable user guidance.
type Hint struct {
	Message string // Human-readable guidance message
	Command string // Optional specific command to run
}

// New creates a new hint with the given message.
func New(message string) *Hint {
	return &Hint{Message: message}
}

// WithCommand adds a command to the hint.
func (h *Hint) WithCommand(command string) *Hint {
	h.Command = command
	return h
}

// String returns a string representation of the hint.
func (h *Hint) String() string {
	parts := []string{"Hint: " + h.Message}
	if h.Command != "" {
		parts = append(parts, fmt.Sprintf("   Run: %s", h.Command))
	}
	return strings.Join(parts, "\n")
}

// ForError returns the hints that apply to err, most specific first.
func ForError(err error) []*Hint {
	if err == nil {
		return nil
	}

	var out []*Hint
	switch {
	case errors.IsInvalidCursor(err):
		out = append(out, New("the cursor must be a date such as 2019-06-12 or 20190612").
			WithCommand("ordsync validate-cursor <date>"))
	case errors.IsCanceled(err):
		out = append(out, New("the run was interrupted and no document was written"))
	case errors.IsTransport(err):
		out = append(out, New(constants.MsgEndpointHint))
		if errors.IsRateLimited(err) {
			out = append(out, New("the API is rate limiting requests").
				WithCommand("ordsync sync <date> --rate-limit 2"))
		}
		if errors.IsTimeout(err) {
			out = append(out, New("requests are timing out").
				WithCommand("ordsync sync <date> --timeout 2m"))
		}
	case errors.IsMissingTemplateResource(err):
		out = append(out, New("omit --template to use the built-in manifest template"))
	case errors.IsNotFound(err):
		out = append(out, New("list the available code systems").
			WithCommand("ordsync codesystems"))
	}
	return out
}

// Write prints hints to w, one per line.
func Write(w io.Writer, hints []*Hint) {
	for _, h := range hints {
		fmt.Fprintln(w, h.String())
	}
}
