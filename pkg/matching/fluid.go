// Package matching cross-references vendor part offers against the shop's
// local inventory and produces a ranked, bounded list of pricing options.
//
// Consumable fluids get specification-based matching: the request's
// viscosity token is compared against recorded spec metadata and items
// carrying a matching OEM approval for the vehicle's make sort first.
// Everything else falls back to exact part-number intersection.
package matching

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/torqueline/partsource/pkg/inventory"
)

// fluidKeywords maps request phrasings to the fluid category they name.
// Longer phrases are listed before their substrings so "gear oil" wins
// over a bare "oil" mention.
var fluidKeywords = []struct {
	keyword string
	fluid   inventory.FluidType
}{
	{"transmission fluid", inventory.FluidTransmission},
	{"differential fluid", inventory.FluidGearOil},
	{"differential oil", inventory.FluidGearOil},
	{"gear oil", inventory.FluidGearOil},
	{"engine oil", inventory.FluidEngineOil},
	{"motor oil", inventory.FluidEngineOil},
	{"brake fluid", inventory.FluidBrake},
	{"coolant", inventory.FluidCoolant},
	{"antifreeze", inventory.FluidCoolant},
	{"atf", inventory.FluidTransmission},
}

// ClassifyFluid reports whether a part description names a consumable
// fluid. A description mentioning "filter" is never a fluid: "oil filter"
// must not be treated as the fluid "oil".
func ClassifyFluid(description string) (inventory.FluidType, bool) {
	lower := strings.ToLower(description)
	if strings.Contains(lower, "filter") {
		return "", false
	}
	for _, fk := range fluidKeywords {
		if strings.Contains(lower, fk.keyword) {
			return fk.fluid, true
		}
	}
	return "", false
}

var (
	viscosityPattern = regexp.MustCompile(`(?i)\b(\d{1,2})w[- ]?(\d{1,2})\b`)
	dotPattern       = regexp.MustCompile(`(?i)\bdot\s*(\d)\b`)
	atfPattern       = regexp.MustCompile(`(?i)\batf\b`)
)

// viscosityToken extracts a recognizable viscosity or grade token from a
// part description and returns it in canonical form ("0W-20", "DOT 3",
// "ATF"). ok is false when the description carries no such token.
func viscosityToken(description string) (string, bool) {
	if m := viscosityPattern.FindStringSubmatch(description); m != nil {
		return fmt.Sprintf("%sW-%s", m[1], m[2]), true
	}
	if m := dotPattern.FindStringSubmatch(description); m != nil {
		return "DOT " + m[1], true
	}
	if atfPattern.MatchString(description) {
		return "ATF", true
	}
	return "", false
}

// canonicalViscosity uppercases a viscosity string and rewrites any
// W-grade into dashed form, so "0w20", "0W20" and "0W-20" all compare
// equal.
func canonicalViscosity(s string) string {
	s = viscosityPattern.ReplaceAllString(s, "${1}W-${2}")
	return strings.ToUpper(strings.TrimSpace(s))
}

// viscosityMatches reports whether a requested token and a recorded
// viscosity agree, using a bidirectional substring test over canonical
// forms so "ATF" matches a recorded "ATF DW-1".
func viscosityMatches(requested, recorded string) bool {
	a := canonicalViscosity(requested)
	b := canonicalViscosity(recorded)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
