package marketplace

import "github.com/shopspring/decimal"

// VehicleIdentity is the marketplace's canonical identity for a decoded VIN.
// It lives for one sourcing request and is never persisted.
type VehicleIdentity struct {
	ID     string `json:"id"`
	VIN    string `json:"vin"`
	Year   int    `json:"year"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Engine string `json:"engine"`
}

// PartType is one canonical catalog category resolved from a free-text
// search term. The term-to-PartType mapping is not stable across calls;
// callers must not cache it long-term.
type PartType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VendorAccount identifies one sourceable vendor. The roster is fixed at
// deploy time.
type VendorAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PartOffer is one vendor's sellable unit for a part. Immutable once
// returned; the same part number may appear from several vendors.
type PartOffer struct {
	PartNumber string            `json:"partNumber"`
	Brand      string            `json:"brand"`
	Title      string            `json:"title"`
	UnitPrice  decimal.Decimal   `json:"unitPrice"`
	ListPrice  decimal.Decimal   `json:"listPrice"`
	Quantity   int               `json:"quantity"`
	Location   string            `json:"location"`
	InStock    bool              `json:"inStock"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Images     []string          `json:"images,omitempty"`
	Vendor     VendorAccount     `json:"vendor"`
}
