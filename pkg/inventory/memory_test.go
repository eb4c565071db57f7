package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func testItems() []Item {
	return []Item{
		{
			ID: 1, PartNumber: "PH7317", Description: "Oil Filter - Spin On",
			Vendor: "Fram", Retail: decimal.NewFromInt(8), Quantity: 12,
		},
		{
			ID: 2, PartNumber: "MOB1-0W20", Description: "Full Synthetic Engine Oil 0W-20 5qt",
			Vendor: "Mobil 1", Retail: decimal.NewFromInt(32), Quantity: 4,
			Spec: &FluidSpec{
				Type: FluidEngineOil, Viscosity: "0W-20",
				Classes: []string{"API SP", "ILSAC GF-6A"}, OEMApprovals: []string{"HONDA-A1"},
				Confidence: 0.95, Verified: true,
			},
		},
		{
			ID: 3, PartNumber: "CAST-5W30", Description: "Synthetic Engine Oil 5W-30 5qt",
			Vendor: "Castrol", Retail: decimal.NewFromInt(29), Quantity: 0,
			Spec: &FluidSpec{
				Type: FluidEngineOil, Viscosity: "5W-30",
				Classes: []string{"API SP"}, Confidence: 0.90, Verified: true,
			},
		},
		{
			ID: 4, PartNumber: "UNSCANNED-OIL", Description: "Conventional Engine Oil 10W-40",
			Vendor: "House Brand", Retail: decimal.NewFromInt(18), Quantity: 9,
			Spec: &FluidSpec{Type: FluidEngineOil, Viscosity: "10W-40", Verified: false},
		},
		{
			ID: 5, PartNumber: "DOT3-12OZ", Description: "Brake Fluid DOT 3",
			Vendor: "Prestone", Retail: decimal.NewFromInt(6), Quantity: 7,
			Spec: &FluidSpec{Type: FluidBrake, Viscosity: "DOT 3", Verified: true},
		},
	}
}

func TestSearchDescription(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Load(testItems())

	tests := []struct {
		name        string
		substr      string
		inStockOnly bool
		wantIDs     []int64
	}{
		{name: "case insensitive", substr: "engine oil", wantIDs: []int64{2, 3, 4}},
		{name: "in stock only", substr: "engine oil", inStockOnly: true, wantIDs: []int64{2, 4}},
		{name: "filter term", substr: "filter", wantIDs: []int64{1}},
		{name: "no matches", substr: "wiper blade", wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := store.SearchDescription(ctx, tt.substr, tt.inStockOnly)
			if err != nil {
				t.Fatalf("SearchDescription() error = %v", err)
			}
			var ids []int64
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestSpecCandidates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Load(testItems())

	items, err := store.SpecCandidates(ctx, FluidEngineOil)
	if err != nil {
		t.Fatalf("SpecCandidates() error = %v", err)
	}

	// Unverified specs (item 4) and other fluid types (item 5) are excluded.
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Spec == nil || !item.Spec.Verified || item.Spec.Type != FluidEngineOil {
			t.Errorf("unexpected candidate %+v", item)
		}
	}
}

func TestByPartNumbers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Load(testItems())

	items, err := store.ByPartNumbers(ctx, []string{"PH7317", "DOT3-12OZ", "NO-SUCH-PART"})
	if err != nil {
		t.Fatalf("ByPartNumbers() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.PartNumber != "PH7317" && item.PartNumber != "DOT3-12OZ" {
			t.Errorf("unexpected item %q", item.PartNumber)
		}
	}

	none, err := store.ByPartNumbers(ctx, nil)
	if err != nil {
		t.Fatalf("ByPartNumbers(nil) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ByPartNumbers(nil) = %d items, want 0", len(none))
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("API SP, ILSAC GF-6A,,HONDA-A1 ")
	want := []string{"API SP", "ILSAC GF-6A", "HONDA-A1"}
	if len(got) != len(want) {
		t.Fatalf("splitList() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("splitList() = %v, want %v", got, want)
		}
	}
	if splitList("") != nil {
		t.Error("splitList(empty) should be nil")
	}
}
