package matching

import "strings"

// oemApprovalPrefixes maps a vehicle make (lowercase) to the approval code
// prefixes that manufacturer issues for fluids. The table is deliberately
// small: only makes whose approval programs the spec scanner recognizes.
var oemApprovalPrefixes = map[string][]string{
	"chevrolet":  {"GM-DEXOS", "DEXOS"},
	"gmc":        {"GM-DEXOS", "DEXOS"},
	"buick":      {"GM-DEXOS", "DEXOS"},
	"cadillac":   {"GM-DEXOS", "DEXOS"},
	"ford":       {"FORD-", "WSS-"},
	"lincoln":    {"FORD-", "WSS-"},
	"honda":      {"HONDA-"},
	"acura":      {"HONDA-"},
	"toyota":     {"TOYOTA-"},
	"lexus":      {"TOYOTA-"},
	"nissan":     {"NISSAN-"},
	"infiniti":   {"NISSAN-"},
	"chrysler":   {"MS-"},
	"dodge":      {"MS-"},
	"jeep":       {"MS-"},
	"ram":        {"MS-"},
	"volkswagen": {"VW-"},
	"audi":       {"VW-"},
	"bmw":        {"BMW-", "LL-"},
	"mercedes":   {"MB-"},
	"subaru":     {"SUBARU-"},
}

// approvalPrefixes returns the OEM approval prefixes for a vehicle make,
// or nil when the make has no known approval program.
func approvalPrefixes(vehicleMake string) []string {
	return oemApprovalPrefixes[strings.ToLower(strings.TrimSpace(vehicleMake))]
}

// matchedApprovals returns the approval codes on a spec that carry one of
// the given prefixes. Comparison is case-insensitive.
func matchedApprovals(approvals, prefixes []string) []string {
	if len(approvals) == 0 || len(prefixes) == 0 {
		return nil
	}
	var matched []string
	for _, code := range approvals {
		upper := strings.ToUpper(code)
		for _, prefix := range prefixes {
			if strings.HasPrefix(upper, prefix) {
				matched = append(matched, code)
				break
			}
		}
	}
	return matched
}
