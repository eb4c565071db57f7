// Package sourcing runs the end-to-end parts sourcing pipeline: ensure a
// marketplace session, resolve the vehicle and part type, fan out across
// vendor accounts, filter by mode, and rank against local inventory.
package sourcing

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/marketplace"
	"github.com/torqueline/partsource/pkg/matching"
	"github.com/torqueline/partsource/pkg/session"
)

// requestTimeout is the wall-clock threshold beyond which a failed request
// is reported as a timeout. In-flight work is never aborted; slow vendor
// branches are awaited and the classification only changes the
// caller-facing code.
const requestTimeout = 60 * time.Second

// maxAttempts bounds the session-expiry retry: one full pipeline re-run
// with a fresh session, then the failure is terminal.
const maxAttempts = 2

// Request is one caller-facing sourcing request.
type Request struct {
	VIN        string `json:"vin"`
	SearchTerm string `json:"searchTerm"`
	Mode       Mode   `json:"mode"`
}

// VendorGroup is one vendor's contribution to a sourcing result. Vendors
// that failed or returned nothing contribute no group.
type VendorGroup struct {
	Vendor marketplace.VendorAccount `json:"vendor"`
	Parts  []marketplace.PartOffer   `json:"parts"`
}

// Result is a successful sourcing response.
type Result struct {
	Vehicle      marketplace.VehicleIdentity `json:"vehicle"`
	Vendors      []VendorGroup               `json:"vendors"`
	TotalVendors int                         `json:"totalVendors"`
	TotalParts   int                         `json:"totalParts"`
	Duration     time.Duration               `json:"duration"`
	Options      []matching.PricingOption    `json:"options"`
}

// SessionProvider supplies marketplace credentials. session.Manager
// implements it.
type SessionProvider interface {
	EnsureSession(ctx context.Context) (*session.Session, error)
	Invalidate(ctx context.Context) error
}

// Marketplace is the remote query surface. marketplace.Client implements
// it.
type Marketplace interface {
	ResolveVehicle(ctx context.Context, vin string, cred session.Credential) (*marketplace.VehicleIdentity, error)
	ResolvePartType(ctx context.Context, term string, cred session.Credential) (*marketplace.PartType, error)
	SearchAll(ctx context.Context, vehicleID, vin string, partTypeIDs []string, accounts []marketplace.VendorAccount, cred session.Credential) ([]marketplace.PartOffer, error)
}

// Ranker produces the ordered pricing options for one part.
// matching.Engine implements it.
type Ranker interface {
	Rank(ctx context.Context, description string, vehicle marketplace.VehicleIdentity, offers []marketplace.PartOffer) []matching.PricingOption
}

// Runner executes sourcing requests.
type Runner struct {
	sessions SessionProvider
	market   Marketplace
	ranker   Ranker
	accounts []marketplace.VendorAccount
	logger   *log.Logger
}

// NewRunner creates a sourcing runner over the configured vendor roster.
// ranker may be nil when no local inventory is configured.
func NewRunner(sessions SessionProvider, market Marketplace, ranker Ranker, accounts []marketplace.VendorAccount, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		sessions: sessions,
		market:   market,
		ranker:   ranker,
		accounts: accounts,
		logger:   logger,
	}
}

// Source runs one sourcing request through the full pipeline. On a
// SESSION_EXPIRED classification anywhere in the pipeline the session is
// invalidated and the whole request re-runs exactly once with a fresh
// login; a second expiry is terminal.
func (r *Runner) Source(ctx context.Context, req Request) (*Result, error) {
	if err := errors.ValidateVin(req.VIN); err != nil {
		return nil, err
	}
	if err := errors.ValidateSearchTerm(req.SearchTerm); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	logger := r.logger.With("requestId", uuid.NewString(), "vin", req.VIN, "term", req.SearchTerm)
	start := time.Now()

	var result *Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = r.runOnce(ctx, req, mode, logger)
		if err == nil {
			break
		}
		if errors.Is(err, errors.ErrCodeSessionExpired) && attempt < maxAttempts {
			logger.Warn("session expired mid-request, refreshing and retrying", "attempt", attempt)
			if invErr := r.sessions.Invalidate(ctx); invErr != nil {
				logger.Warn("session invalidation failed", "err", invErr)
			}
			continue
		}
		return nil, r.classify(err, time.Since(start))
	}

	result.Duration = time.Since(start)
	logger.Info("sourcing request complete",
		"vendors", result.TotalVendors,
		"parts", result.TotalParts,
		"options", len(result.Options),
		"duration", result.Duration)
	return result, nil
}

func (r *Runner) runOnce(ctx context.Context, req Request, mode Mode, logger *log.Logger) (*Result, error) {
	sess, err := r.sessions.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}
	cred := sess.Credential

	logger.Debug("resolving vehicle")
	vehicle, err := r.market.ResolveVehicle(ctx, req.VIN, cred)
	if err != nil {
		return nil, err
	}
	logger.Debug("vehicle resolved", "make", vehicle.Make, "model", vehicle.Model, "year", vehicle.Year)

	partType, err := r.market.ResolvePartType(ctx, req.SearchTerm, cred)
	if err != nil {
		return nil, err
	}
	if partType == nil {
		return nil, errors.New(errors.ErrCodePartTypeNotFound,
			"no sourceable part category for %q", req.SearchTerm)
	}
	logger.Debug("part type resolved", "partType", partType.Name)

	logger.Debug("searching vendors", "accounts", len(r.accounts))
	offers, err := r.market.SearchAll(ctx, vehicle.ID, vehicle.VIN, []string{partType.ID}, r.accounts, cred)
	if err != nil {
		return nil, err
	}

	offers = ApplyMode(offers, mode)

	result := &Result{
		Vehicle:    *vehicle,
		Vendors:    groupByVendor(r.accounts, offers),
		TotalParts: len(offers),
	}
	result.TotalVendors = len(result.Vendors)

	if r.ranker != nil {
		result.Options = r.ranker.Rank(ctx, req.SearchTerm, *vehicle, offers)
	}
	return result, nil
}

// classify rewrites a pipeline failure as a timeout when the request ran
// past the wall-clock threshold.
func (r *Runner) classify(err error, elapsed time.Duration) error {
	if elapsed >= requestTimeout {
		return errors.Wrap(errors.ErrCodeTimeout, err,
			"sourcing request exceeded %s", requestTimeout)
	}
	return err
}

// groupByVendor rebuilds per-vendor groups from the flattened fan-out
// union, preserving the configured account order. Vendors with no offers
// contribute no group.
func groupByVendor(accounts []marketplace.VendorAccount, offers []marketplace.PartOffer) []VendorGroup {
	byAccount := make(map[string][]marketplace.PartOffer, len(accounts))
	for _, o := range offers {
		byAccount[o.Vendor.ID] = append(byAccount[o.Vendor.ID], o)
	}

	groups := make([]VendorGroup, 0, len(byAccount))
	for _, acct := range accounts {
		if parts, ok := byAccount[acct.ID]; ok {
			groups = append(groups, VendorGroup{Vendor: acct, Parts: parts})
		}
	}
	return groups
}
