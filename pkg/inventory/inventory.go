// Package inventory reads the shop's local parts inventory.
//
// The engine only consumes inventory: it searches by description and joins
// against the fluid specification table, but never writes rows. The store
// interface has two backends: postgres for production and memory for tests
// and development.
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// FluidType enumerates the consumable fluid categories carrying structured
// specification metadata.
type FluidType string

const (
	FluidEngineOil    FluidType = "engine_oil"
	FluidTransmission FluidType = "transmission_fluid"
	FluidCoolant      FluidType = "coolant"
	FluidBrake        FluidType = "brake_fluid"
	FluidGearOil      FluidType = "gear_oil"
)

// FluidSpec is the structured specification metadata recorded for a fluid
// item, typically captured by a label scan and verified by a tech.
type FluidSpec struct {
	Type         FluidType `json:"type"`
	Viscosity    string    `json:"viscosity"`
	Classes      []string  `json:"classes"` // API/ACEA/ILSAC certification classes
	OEMApprovals []string  `json:"oemApprovals"`
	Confidence   float64   `json:"confidence"`
	Verified     bool      `json:"verified"`
}

// Item is one locally-stocked part row.
type Item struct {
	ID          int64           `json:"id"`
	PartNumber  string          `json:"partNumber"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
	Cost        decimal.Decimal `json:"cost"`
	Retail      decimal.Decimal `json:"retail"`
	Quantity    int             `json:"quantity"`
	Bin         string          `json:"bin"`
	Spec        *FluidSpec      `json:"spec,omitempty"`
}

// InStock reports whether the item has available quantity.
func (i Item) InStock() bool { return i.Quantity > 0 }

// Store is the read-only query interface over the inventory.
type Store interface {
	// SearchDescription returns items whose description contains substr
	// (case-insensitive), optionally restricted to in-stock rows.
	SearchDescription(ctx context.Context, substr string, inStockOnly bool) ([]Item, error)

	// SpecCandidates returns items carrying a verified fluid specification
	// of the given type.
	SpecCandidates(ctx context.Context, fluidType FluidType) ([]Item, error)

	// ByPartNumbers returns items whose part number exactly matches one of
	// the given numbers.
	ByPartNumbers(ctx context.Context, numbers []string) ([]Item, error)
}
