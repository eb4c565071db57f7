package matching

import (
	"testing"

	"github.com/torqueline/partsource/pkg/inventory"
)

func TestClassifyFluid(t *testing.T) {
	tests := []struct {
		description string
		want        inventory.FluidType
		wantFluid   bool
	}{
		{"engine oil 0w20", inventory.FluidEngineOil, true},
		{"Full Synthetic Motor Oil", inventory.FluidEngineOil, true},
		{"transmission fluid", inventory.FluidTransmission, true},
		{"ATF", inventory.FluidTransmission, true},
		{"coolant 50/50", inventory.FluidCoolant, true},
		{"antifreeze concentrate", inventory.FluidCoolant, true},
		{"brake fluid dot 3", inventory.FluidBrake, true},
		{"differential fluid 75w90", inventory.FluidGearOil, true},
		{"gear oil", inventory.FluidGearOil, true},
		{"oil filter", "", false},
		{"engine oil filter", "", false},
		{"transmission filter kit", "", false},
		{"brake pads front", "", false},
		{"alternator", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, isFluid := ClassifyFluid(tt.description)
			if isFluid != tt.wantFluid {
				t.Fatalf("ClassifyFluid(%q) fluid = %v, want %v", tt.description, isFluid, tt.wantFluid)
			}
			if got != tt.want {
				t.Errorf("ClassifyFluid(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestViscosityToken(t *testing.T) {
	tests := []struct {
		description string
		want        string
		wantOK      bool
	}{
		{"engine oil 0w20", "0W-20", true},
		{"engine oil 0W-20", "0W-20", true},
		{"5w 30 synthetic", "5W-30", true},
		{"gear oil 75w90", "75W-90", true},
		{"brake fluid dot 4", "DOT 4", true},
		{"brake fluid DOT3", "DOT 3", true},
		{"atf for cvt", "ATF", true},
		{"engine oil", "", false},
		{"coolant", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, ok := viscosityToken(tt.description)
			if ok != tt.wantOK {
				t.Fatalf("viscosityToken(%q) ok = %v, want %v", tt.description, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("viscosityToken(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestViscosityMatches(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		recorded  string
		want      bool
	}{
		{"identical canonical", "0W-20", "0W-20", true},
		{"lowercase undashed recorded", "0W-20", "0w20", true},
		{"recorded is superset", "ATF", "ATF DW-1", true},
		{"different grades", "0W-20", "5W-30", false},
		{"dot grades differ", "DOT 3", "DOT 4", false},
		{"empty recorded", "0W-20", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := viscosityMatches(tt.requested, tt.recorded); got != tt.want {
				t.Errorf("viscosityMatches(%q, %q) = %v, want %v", tt.requested, tt.recorded, got, tt.want)
			}
		})
	}
}

func TestMatchedApprovals(t *testing.T) {
	tests := []struct {
		name        string
		vehicleMake string
		approvals   []string
		want        int
	}{
		{"honda approval", "Honda", []string{"HONDA-A1"}, 1},
		{"case-insensitive make", "HONDA", []string{"honda-a1"}, 1},
		{"dexos for chevy", "Chevrolet", []string{"GM-DEXOS1-GEN3"}, 1},
		{"ford wss code", "Ford", []string{"WSS-M2C947-B1"}, 1},
		{"wrong make", "Toyota", []string{"HONDA-A1"}, 0},
		{"unknown make", "Zenvo", []string{"HONDA-A1"}, 0},
		{"no approvals", "Honda", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchedApprovals(tt.approvals, approvalPrefixes(tt.vehicleMake))
			if len(got) != tt.want {
				t.Errorf("matchedApprovals() = %v, want %d codes", got, tt.want)
			}
		})
	}
}
