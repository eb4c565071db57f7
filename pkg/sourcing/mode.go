package sourcing

import (
	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/marketplace"
)

// Mode selects how vendor offers are filtered before ranking.
type Mode string

const (
	// ModeManual keeps only orderable-now offers: a human is picking a
	// part to install today.
	ModeManual Mode = "manual"

	// ModeAI passes every offer through, backorderable included, for
	// downstream automated comparison.
	ModeAI Mode = "ai"
)

// ParseMode validates a caller-supplied mode string. An empty string
// defaults to manual.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeManual, nil
	case ModeManual, ModeAI:
		return Mode(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidMode, "unknown sourcing mode %q", s)
	}
}

// ApplyMode filters offers for a mode. It is a pure predicate: manual
// drops offers with zero available quantity, ai is the identity.
func ApplyMode(offers []marketplace.PartOffer, mode Mode) []marketplace.PartOffer {
	if mode != ModeManual {
		return offers
	}
	filtered := make([]marketplace.PartOffer, 0, len(offers))
	for _, o := range offers {
		if o.Quantity > 0 {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
