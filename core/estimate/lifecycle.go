package estimate

import (
	"strings"
	"time"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// allowed lists the caller-driven transitions. Expiry is handled separately
// because it depends on time.
var allowed = map[types.Status][]types.Status{
	types.StatusDraft: {types.StatusSent},
	types.StatusSent:  {types.StatusAccepted, types.StatusRejected},
}

// ParseStatus validates a status name
func ParseStatus(s string) (types.Status, error) {
	status := types.Status(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case types.StatusDraft, types.StatusSent, types.StatusAccepted, types.StatusRejected, types.StatusExpired:
		return status, nil
	}
	return "", errors.Input("unknown estimate status: " + s)
}

// IsOpen reports whether a status can still expire
func IsOpen(s types.Status) bool {
	return s == types.StatusDraft || s == types.StatusSent
}

// EffectiveStatus is the status as of now: open estimates past their
// validity window are expired even if nobody recorded it.
func EffectiveStatus(e *types.Estimate, now time.Time) types.Status {
	if IsOpen(e.Status) && now.After(e.ValidUntil) {
		return types.StatusExpired
	}
	return e.Status
}

// Transition returns a copy of e moved to status to. The input is never
// modified. Expiry is only allowed for open estimates whose validity window
// has passed; other moves are rejected once the window has passed.
func Transition(e *types.Estimate, to types.Status, now time.Time) (*types.Estimate, error) {
	if e == nil {
		return nil, errors.Input("estimate is required")
	}

	from := e.Status
	if to == types.StatusExpired {
		if !IsOpen(from) || !now.After(e.ValidUntil) {
			return nil, errors.Transition(string(from), string(to))
		}
		return withStatus(e, to), nil
	}

	if EffectiveStatus(e, now) == types.StatusExpired {
		return nil, errors.Transition(string(types.StatusExpired), string(to)).
			WithContext("valid_until", e.ValidUntil.Format(time.RFC3339))
	}
	for _, next := range allowed[from] {
		if next == to {
			return withStatus(e, to), nil
		}
	}
	return nil, errors.Transition(string(from), string(to))
}

func withStatus(e *types.Estimate, s types.Status) *types.Estimate {
	out := e.Clone()
	out.Status = s
	return out
}
