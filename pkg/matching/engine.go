package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/torqueline/partsource/pkg/inventory"
	"github.com/torqueline/partsource/pkg/marketplace"
)

// maxVendorOptions caps the non-inventory entries in a ranked option list.
// Inventory-sourced entries are never capped.
const maxVendorOptions = 4

// PricingOption is one purchasable choice in a ranked option list, sourced
// either from local inventory or from a vendor offer.
type PricingOption struct {
	Source           string          `json:"source"` // "inventory" or "vendor"
	PartNumber       string          `json:"partNumber"`
	Description      string          `json:"description"`
	Brand            string          `json:"brand,omitempty"`
	Vendor           string          `json:"vendor,omitempty"`
	Cost             decimal.Decimal `json:"cost"`
	Retail           decimal.Decimal `json:"retail"`
	Quantity         int             `json:"quantity"`
	Location         string          `json:"location,omitempty"`
	InventoryID      int64           `json:"inventoryId,omitempty"`
	IsSpecMatched    bool            `json:"isSpecMatched"`
	HasOEMMatch      bool            `json:"hasOemMatch"`
	MatchedApprovals []string        `json:"matchedApprovals,omitempty"`
	Rationale        string          `json:"rationale,omitempty"`
}

// Matcher picks the best inventory candidate for a needed part when no
// structured spec match exists. aimatch.Selector implements it.
type Matcher interface {
	SelectMatch(ctx context.Context, needed string, offers []marketplace.PartOffer, candidates []inventory.Item) (index int, reason string, ok bool)
}

// Engine ranks vendor offers against local inventory.
type Engine struct {
	store           inventory.Store
	matcher         Matcher
	preferredVendor string
	logger          *log.Logger
}

// NewEngine creates a ranking engine. store may be nil when no local
// inventory is configured; matcher may be nil to disable the AI fallback.
func NewEngine(store inventory.Store, matcher Matcher, preferredVendor string, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:           store,
		matcher:         matcher,
		preferredVendor: preferredVendor,
		logger:          logger,
	}
}

// Rank produces the ordered pricing options for one requested part.
// Inventory-sourced entries come first, then at most maxVendorOptions
// vendor offers. An empty result is a valid terminal state meaning the
// part needs manual pricing.
func (e *Engine) Rank(ctx context.Context, description string, vehicle marketplace.VehicleIdentity, offers []marketplace.PartOffer) []PricingOption {
	var options []PricingOption

	specMatched := e.specMatchedOptions(ctx, description, vehicle)
	options = append(options, specMatched...)

	if len(specMatched) == 0 {
		if opt, ok := e.legacyMatchedOption(ctx, description, offers); ok {
			options = append(options, opt)
		}
	}

	seen := make(map[int64]struct{}, len(options))
	for _, opt := range options {
		seen[opt.InventoryID] = struct{}{}
	}
	inventoried := make(map[string]struct{})
	for _, item := range e.partNumberMatches(ctx, offers) {
		inventoried[item.PartNumber] = struct{}{}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		opt := optionFromItem(item)
		opt.Rationale = "exact part number match"
		options = append(options, opt)
	}

	return append(options, e.vendorOptions(vehicle, offers, inventoried)...)
}

// specMatchedOptions runs the structured fluid-spec path: classify,
// narrow by viscosity token, flag OEM approvals, sort.
func (e *Engine) specMatchedOptions(ctx context.Context, description string, vehicle marketplace.VehicleIdentity) []PricingOption {
	if e.store == nil {
		return nil
	}
	fluidType, isFluid := ClassifyFluid(description)
	if !isFluid {
		return nil
	}

	candidates, err := e.store.SpecCandidates(ctx, fluidType)
	if err != nil {
		e.logger.Warn("inventory spec lookup failed", "fluidType", fluidType, "err", err)
		return nil
	}

	if token, ok := viscosityToken(description); ok {
		narrowed := candidates[:0]
		for _, item := range candidates {
			if viscosityMatches(token, item.Spec.Viscosity) {
				narrowed = append(narrowed, item)
			}
		}
		candidates = narrowed
	}
	if len(candidates) == 0 {
		return nil
	}

	prefixes := approvalPrefixes(vehicle.Make)
	type scored struct {
		item      inventory.Item
		approvals []string
	}
	ranked := make([]scored, 0, len(candidates))
	for _, item := range candidates {
		ranked = append(ranked, scored{item: item, approvals: matchedApprovals(item.Spec.OEMApprovals, prefixes)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		oi, oj := len(ranked[i].approvals) > 0, len(ranked[j].approvals) > 0
		if oi != oj {
			return oi
		}
		ci, cj := ranked[i].item.Spec.Confidence, ranked[j].item.Spec.Confidence
		if ci != cj {
			return ci > cj
		}
		return ranked[i].item.Retail.LessThan(ranked[j].item.Retail)
	})

	options := make([]PricingOption, 0, len(ranked))
	for _, r := range ranked {
		opt := optionFromItem(r.item)
		opt.IsSpecMatched = true
		opt.MatchedApprovals = r.approvals
		opt.HasOEMMatch = len(r.approvals) > 0
		opt.Rationale = specRationale(r.item, r.approvals)
		options = append(options, opt)
	}
	return options
}

// legacyMatchedOption runs the AI fallback for fluids without structured
// spec metadata: a broad in-stock description search, then the collaborator
// picks a candidate or declares no match. Every failure degrades to "no
// match".
func (e *Engine) legacyMatchedOption(ctx context.Context, description string, offers []marketplace.PartOffer) (PricingOption, bool) {
	if e.store == nil || e.matcher == nil {
		return PricingOption{}, false
	}
	fluidType, isFluid := ClassifyFluid(description)
	if !isFluid {
		return PricingOption{}, false
	}

	candidates, err := e.store.SearchDescription(ctx, broadSearchTerm(fluidType), true)
	if err != nil {
		e.logger.Warn("inventory fallback search failed", "err", err)
		return PricingOption{}, false
	}
	eligible := candidates[:0]
	for _, item := range candidates {
		if !strings.Contains(strings.ToLower(item.Description), "filter") {
			eligible = append(eligible, item)
		}
	}
	if len(eligible) == 0 {
		return PricingOption{}, false
	}

	index, reason, ok := e.matcher.SelectMatch(ctx, description, offers, eligible)
	if !ok {
		return PricingOption{}, false
	}
	opt := optionFromItem(eligible[index])
	opt.Rationale = reason
	return opt, true
}

// partNumberMatches returns inventory rows whose part number exactly
// matches a vendor offer. These are guaranteed-fit matches regardless of
// fluid classification.
func (e *Engine) partNumberMatches(ctx context.Context, offers []marketplace.PartOffer) []inventory.Item {
	if e.store == nil || len(offers) == 0 {
		return nil
	}
	numbers := make([]string, 0, len(offers))
	seen := make(map[string]struct{}, len(offers))
	for _, o := range offers {
		if o.PartNumber == "" {
			continue
		}
		if _, dup := seen[o.PartNumber]; dup {
			continue
		}
		seen[o.PartNumber] = struct{}{}
		numbers = append(numbers, o.PartNumber)
	}

	items, err := e.store.ByPartNumbers(ctx, numbers)
	if err != nil {
		e.logger.Warn("inventory part number lookup failed", "err", err)
		return nil
	}
	return items
}

// vendorOptions selects at most maxVendorOptions offers not already
// represented in inventory: up to one same-make offer, then the rest by
// preferred-vendor affinity and ascending cost.
func (e *Engine) vendorOptions(vehicle marketplace.VehicleIdentity, offers []marketplace.PartOffer, inventoried map[string]struct{}) []PricingOption {
	vehicleMake := strings.ToLower(vehicle.Make)
	preferred := strings.ToLower(e.preferredVendor)

	var sameMake []marketplace.PartOffer
	var others []marketplace.PartOffer
	for _, o := range offers {
		if _, dup := inventoried[o.PartNumber]; dup {
			continue
		}
		if vehicleMake != "" && strings.Contains(strings.ToLower(o.Brand), vehicleMake) {
			sameMake = append(sameMake, o)
		} else {
			others = append(others, o)
		}
	}

	isPreferred := func(o marketplace.PartOffer) bool {
		return preferred != "" && strings.Contains(strings.ToLower(o.Vendor.Name), preferred)
	}
	sort.SliceStable(others, func(i, j int) bool {
		pi, pj := isPreferred(others[i]), isPreferred(others[j])
		if pi != pj {
			return pi
		}
		return others[i].UnitPrice.LessThan(others[j].UnitPrice)
	})

	options := make([]PricingOption, 0, maxVendorOptions)
	if len(sameMake) > 0 {
		options = append(options, optionFromOffer(sameMake[0]))
	}
	for _, o := range others {
		if len(options) >= maxVendorOptions {
			break
		}
		options = append(options, optionFromOffer(o))
	}
	return options
}

func broadSearchTerm(fluidType inventory.FluidType) string {
	switch fluidType {
	case inventory.FluidEngineOil:
		return "oil"
	case inventory.FluidTransmission:
		return "transmission"
	case inventory.FluidCoolant:
		return "coolant"
	case inventory.FluidBrake:
		return "brake fluid"
	case inventory.FluidGearOil:
		return "gear oil"
	default:
		return string(fluidType)
	}
}

func specRationale(item inventory.Item, approvals []string) string {
	if len(approvals) > 0 {
		return fmt.Sprintf("spec match, OEM approved (%s)", strings.Join(approvals, ", "))
	}
	return fmt.Sprintf("spec match (%s)", item.Spec.Viscosity)
}

func optionFromItem(item inventory.Item) PricingOption {
	return PricingOption{
		Source:      "inventory",
		PartNumber:  item.PartNumber,
		Description: item.Description,
		Vendor:      item.Vendor,
		Cost:        item.Cost,
		Retail:      item.Retail,
		Quantity:    item.Quantity,
		Location:    item.Bin,
		InventoryID: item.ID,
	}
}

func optionFromOffer(o marketplace.PartOffer) PricingOption {
	return PricingOption{
		Source:      "vendor",
		PartNumber:  o.PartNumber,
		Description: o.Title,
		Brand:       o.Brand,
		Vendor:      o.Vendor.Name,
		Cost:        o.UnitPrice,
		Retail:      o.ListPrice,
		Quantity:    o.Quantity,
		Location:    o.Location,
	}
}
