// Package aimatch is the AI text-completion collaborator used for legacy
// inventory matching.
//
// When a fluid request has no spec-matched inventory, the engine falls back
// to a broader description search and asks the collaborator to pick the best
// candidate. The collaborator replies with a JSON object; any malformed or
// non-JSON reply is treated as "no match" and never escalates an error into
// the ranking path.
package aimatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/torqueline/partsource/pkg/httputil"
	"github.com/torqueline/partsource/pkg/inventory"
	"github.com/torqueline/partsource/pkg/marketplace"
)

// Bounds on the candidate lists embedded in the comparison prompt.
const (
	maxPromptOffers     = 5
	maxPromptCandidates = 20
)

// Completer generates a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// match is the reply contract: a 1-based index into the candidate list, or
// a declaration that no candidate fits.
type match struct {
	UseInventory           bool   `json:"useInventory"`
	SelectedInventoryIndex *int   `json:"selectedInventoryIndex"`
	Reason                 string `json:"reason"`
}

// Selector asks a Completer to pick an inventory candidate for a needed
// part.
type Selector struct {
	completer Completer
	logger    *log.Logger
}

// NewSelector creates a selector. A nil completer disables matching: every
// call reports no match.
func NewSelector(completer Completer, logger *log.Logger) *Selector {
	if logger == nil {
		logger = log.Default()
	}
	return &Selector{completer: completer, logger: logger}
}

// SelectMatch compares the needed part against vendor offers and inventory
// candidates and returns the zero-based index of the chosen candidate plus
// the collaborator's rationale. ok is false when no candidate fits, the
// reply was malformed, or the collaborator is unavailable.
func (s *Selector) SelectMatch(ctx context.Context, needed string, offers []marketplace.PartOffer, candidates []inventory.Item) (index int, reason string, ok bool) {
	if s.completer == nil || len(candidates) == 0 {
		return 0, "", false
	}

	if len(offers) > maxPromptOffers {
		offers = offers[:maxPromptOffers]
	}
	if len(candidates) > maxPromptCandidates {
		candidates = candidates[:maxPromptCandidates]
	}

	prompt := buildPrompt(needed, offers, candidates)

	var reply string
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		reply, err = s.completer.Complete(ctx, prompt)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("AI match unavailable", "err", err)
		return 0, "", false
	}

	m, ok := decodeMatch(reply)
	if !ok || !m.UseInventory || m.SelectedInventoryIndex == nil {
		return 0, "", false
	}

	idx := *m.SelectedInventoryIndex
	if idx < 1 || idx > len(candidates) {
		s.logger.Warn("AI match index out of range", "index", idx, "candidates", len(candidates))
		return 0, "", false
	}
	return idx - 1, m.Reason, true
}

// decodeMatch tolerantly extracts the JSON reply. Models wrap JSON in prose
// or code fences often enough that we scan for the outermost object instead
// of decoding the raw reply.
func decodeMatch(reply string) (match, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return match{}, false
	}

	var m match
	if err := json.Unmarshal([]byte(reply[start:end+1]), &m); err != nil {
		return match{}, false
	}
	return m, true
}

func buildPrompt(needed string, offers []marketplace.PartOffer, candidates []inventory.Item) string {
	var b strings.Builder
	b.WriteString("You are matching a needed auto part against shop inventory.\n\n")
	fmt.Fprintf(&b, "Needed part: %s\n\n", needed)

	if len(offers) > 0 {
		b.WriteString("Vendor offers for reference:\n")
		for _, o := range offers {
			fmt.Fprintf(&b, "- %s %s (%s) $%s\n", o.Brand, o.PartNumber, o.Title, o.UnitPrice)
		}
		b.WriteString("\n")
	}

	b.WriteString("Inventory candidates (1-based):\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s %s (%s) qty %d $%s\n",
			i+1, c.Vendor, c.PartNumber, c.Description, c.Quantity, c.Retail)
	}

	b.WriteString(`
Reply with only a JSON object:
{"useInventory": bool, "selectedInventoryIndex": int or null, "reason": string}
Set useInventory to false and selectedInventoryIndex to null if no candidate
is a legitimate match for the needed part.`)
	return b.String()
}
