package aimatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/torqueline/partsource/pkg/inventory"
	"github.com/torqueline/partsource/pkg/marketplace"
)

// scriptedCompleter returns a fixed reply or error.
type scriptedCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

func candidates(n int) []inventory.Item {
	items := make([]inventory.Item, n)
	for i := range items {
		items[i] = inventory.Item{ID: int64(i + 1), Description: "Engine Oil", Quantity: 3}
	}
	return items
}

func TestSelectMatch(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		err       error
		wantIndex int
		wantOK    bool
	}{
		{
			name:      "valid match",
			reply:     `{"useInventory": true, "selectedInventoryIndex": 2, "reason": "same viscosity"}`,
			wantIndex: 1,
			wantOK:    true,
		},
		{
			name:      "json wrapped in prose",
			reply:     "Sure! Here is my answer:\n```json\n{\"useInventory\": true, \"selectedInventoryIndex\": 1, \"reason\": \"exact\"}\n```",
			wantIndex: 0,
			wantOK:    true,
		},
		{
			name:   "declared no match",
			reply:  `{"useInventory": false, "selectedInventoryIndex": null, "reason": "nothing fits"}`,
			wantOK: false,
		},
		{
			name:   "index out of range",
			reply:  `{"useInventory": true, "selectedInventoryIndex": 99, "reason": "?"}`,
			wantOK: false,
		},
		{
			name:   "zero index is invalid (1-based contract)",
			reply:  `{"useInventory": true, "selectedInventoryIndex": 0, "reason": "?"}`,
			wantOK: false,
		},
		{
			name:   "malformed reply",
			reply:  "I think option two looks good",
			wantOK: false,
		},
		{
			name:   "completer failure",
			err:    errors.New("quota exceeded"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptedCompleter{reply: tt.reply, err: tt.err}
			s := NewSelector(c, nil)

			index, _, ok := s.SelectMatch(context.Background(), "engine oil 0w20", nil, candidates(3))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && index != tt.wantIndex {
				t.Errorf("index = %d, want %d", index, tt.wantIndex)
			}
		})
	}
}

func TestSelectMatchNilCompleter(t *testing.T) {
	s := NewSelector(nil, nil)
	if _, _, ok := s.SelectMatch(context.Background(), "engine oil", nil, candidates(3)); ok {
		t.Error("SelectMatch() with nil completer = ok, want no match")
	}
}

func TestSelectMatchBoundsCandidates(t *testing.T) {
	c := &scriptedCompleter{reply: `{"useInventory": true, "selectedInventoryIndex": 25, "reason": "x"}`}
	s := NewSelector(c, nil)

	// 30 candidates are trimmed to 20, so index 25 is out of range.
	if _, _, ok := s.SelectMatch(context.Background(), "engine oil", nil, candidates(30)); ok {
		t.Error("SelectMatch() accepted an index beyond the trimmed candidate list")
	}

	if len(c.prompts) == 0 {
		t.Fatal("completer was never called")
	}
	if strings.Contains(c.prompts[0], "21.") {
		t.Error("prompt includes more than 20 candidates")
	}
}

func TestSelectMatchPromptBoundsOffers(t *testing.T) {
	c := &scriptedCompleter{reply: `{"useInventory": false, "selectedInventoryIndex": null, "reason": "x"}`}
	s := NewSelector(c, nil)

	offers := make([]marketplace.PartOffer, 8)
	for i := range offers {
		offers[i] = marketplace.PartOffer{PartNumber: "PN", Brand: "Brand"}
	}

	s.SelectMatch(context.Background(), "engine oil", offers, candidates(2))

	if len(c.prompts) == 0 {
		t.Fatal("completer was never called")
	}
	if got := strings.Count(c.prompts[0], "- Brand PN"); got != 5 {
		t.Errorf("prompt offer lines = %d, want 5", got)
	}
}
