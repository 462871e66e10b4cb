// Package ui is the operator-facing confirmation step: show the payload,
// offer an edit round-trip, ask before anything is sent.
package ui

import (
	"linklead-engine/internal/mapping"
)

// Decision is the operator's answer for a previewed payload.
type Decision int

const (
	DecisionAbort Decision = iota
	DecisionSend
)

// Presenter previews a payload and collects the operator's decision. Review
// may return an edited copy of the payload. Implementations must always be
// usable in a dumb terminal.
type Presenter interface {
	Review(payload mapping.Payload) (mapping.Payload, Decision, error)
}

// AutoApprove skips interaction entirely (the --yes flag).
type AutoApprove struct{}

func (AutoApprove) Review(payload mapping.Payload) (mapping.Payload, Decision, error) {
	return payload, DecisionSend, nil
}
