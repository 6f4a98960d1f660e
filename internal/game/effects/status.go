// Package effects holds the status-effect records attached to board cards
// and the duration bookkeeping that expires them.
package effects

import "github.com/google/uuid"

// Well-known status type tags applied by ability actions.
const (
	TypePreventReady = "prevent-ready"
)

// StatusEffect is an active, duration-tracked effect on a board card. The
// duration ticks down once per full turn cycle of the owning player; the
// effect is removed when it reaches zero.
type StatusEffect struct {
	ID       string
	Type     string
	Duration int
	SourceID string
	Metadata map[string]string
}

// New creates a status effect with a fresh id.
func New(statusType string, duration int, sourceID string) StatusEffect {
	return StatusEffect{
		ID:       uuid.NewString(),
		Type:     statusType,
		Duration: duration,
		SourceID: sourceID,
	}
}

// Tick decrements every effect's duration and drops the expired ones,
// returning the surviving list.
func Tick(list []StatusEffect) []StatusEffect {
	if len(list) == 0 {
		return list
	}
	out := list[:0]
	for _, se := range list {
		se.Duration--
		if se.Duration > 0 {
			out = append(out, se)
		}
	}
	return out
}

// HasType reports whether any effect in the list carries the given type tag.
func HasType(list []StatusEffect, statusType string) bool {
	for _, se := range list {
		if se.Type == statusType {
			return true
		}
	}
	return false
}

// Clone deep-copies a status effect list for state snapshots.
func Clone(list []StatusEffect) []StatusEffect {
	if list == nil {
		return nil
	}
	out := make([]StatusEffect, len(list))
	copy(out, list)
	for i := range out {
		if list[i].Metadata != nil {
			md := make(map[string]string, len(list[i].Metadata))
			for k, v := range list[i].Metadata {
				md[k] = v
			}
			out[i].Metadata = md
		}
	}
	return out
}
