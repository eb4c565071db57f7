// Package pkg provides the core libraries for partsource multi-vendor
// parts sourcing.
//
// # Overview
//
// partsource resolves a VIN and a free-text part description against a
// third-party parts marketplace, fans the search out across vendor
// accounts, and ranks the results against local shop inventory. The pkg
// directory is organized into three main areas:
//
//  1. Domain logic ([marketplace], [matching], [sourcing])
//  2. Infrastructure ([session], [cache], [config], [errors], [httputil])
//  3. Consumed stores ([inventory], [aimatch])
//
// # Architecture
//
// The typical data flow through one sourcing request:
//
//	VIN + search term + mode
//	         ↓
//	    [session] package (cached credential, browser login on expiry)
//	         ↓
//	    [marketplace] package (vehicle decode, part-type suggest, vendor fan-out)
//	         ↓
//	    [sourcing] package (mode filter, retry-on-expiry, grouping)
//	         ↓
//	    [matching] package (spec match, OEM approvals, ranking)
//	         ↓
//	    ranked PricingOption list
//
// # Main Packages
//
// [marketplace] - The remote query surface: a single authenticated
// query/variables/operation endpoint, a VIN-to-vehicle resolver, a
// free-text-to-part-type resolver, and the concurrent per-vendor searcher
// with per-branch failure isolation.
//
// [matching] - The local matching and ranking engine: fluid classification,
// viscosity and OEM-approval spec matching, AI fallback for unscanned
// items, exact part-number intersection, and the final priority
// composition.
//
// [sourcing] - The request pipeline tying the above together, with a
// single bounded retry when the session expires mid-request.
//
// [session] - Credential lifecycle: memory, file, and redis stores plus
// the chromedp browser login handshake behind a refresh-serializing
// manager.
//
// [inventory] - Read-only access to the shop's parts inventory (memory and
// gorm/Postgres backends).
//
// [aimatch] - The Gemini text-completion collaborator used for legacy
// inventory matching.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...        # All tests
//	go test ./pkg/matching/  # Specific package
//
// [marketplace]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/marketplace
// [matching]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/matching
// [sourcing]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/sourcing
// [session]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/session
// [inventory]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/inventory
// [aimatch]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/aimatch
// [cache]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/cache
// [config]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/config
// [errors]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/torqueline/partsource/pkg/httputil
package pkg
