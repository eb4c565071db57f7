package sourcing

import (
	"context"
	"strings"
	"testing"

	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/marketplace"
	"github.com/torqueline/partsource/pkg/matching"
	"github.com/torqueline/partsource/pkg/session"
)

const testVin = "1HGCM82633A004352"

type fakeSessions struct {
	ensures     int
	invalidates int
}

func (s *fakeSessions) EnsureSession(ctx context.Context) (*session.Session, error) {
	s.ensures++
	return session.New(session.Credential{Header: "k=v"}, session.DefaultTTL), nil
}

func (s *fakeSessions) Invalidate(ctx context.Context) error {
	s.invalidates++
	return nil
}

// fakeMarket scripts the remote surface. searchErrs is consumed one entry
// per SearchAll call; past the end, searches succeed with offers.
type fakeMarket struct {
	vehicle    *marketplace.VehicleIdentity
	vehicleErr error
	partType   *marketplace.PartType
	offers     []marketplace.PartOffer
	searchErrs []error
	searches   int
}

func (m *fakeMarket) ResolveVehicle(ctx context.Context, vin string, cred session.Credential) (*marketplace.VehicleIdentity, error) {
	if m.vehicleErr != nil {
		return nil, m.vehicleErr
	}
	if m.vehicle != nil {
		return m.vehicle, nil
	}
	return &marketplace.VehicleIdentity{ID: "veh-1", VIN: vin, Year: 2019, Make: "Honda", Model: "Accord"}, nil
}

func (m *fakeMarket) ResolvePartType(ctx context.Context, term string, cred session.Credential) (*marketplace.PartType, error) {
	return m.partType, nil
}

func (m *fakeMarket) SearchAll(ctx context.Context, vehicleID, vin string, partTypeIDs []string, accounts []marketplace.VendorAccount, cred session.Credential) ([]marketplace.PartOffer, error) {
	m.searches++
	if m.searches <= len(m.searchErrs) {
		if err := m.searchErrs[m.searches-1]; err != nil {
			return nil, err
		}
	}
	return m.offers, nil
}

type fakeRanker struct {
	gotOffers []marketplace.PartOffer
	options   []matching.PricingOption
}

func (r *fakeRanker) Rank(ctx context.Context, description string, vehicle marketplace.VehicleIdentity, offers []marketplace.PartOffer) []matching.PricingOption {
	r.gotOffers = offers
	return r.options
}

func testAccounts() []marketplace.VendorAccount {
	return []marketplace.VendorAccount{
		{ID: "acct-1", Name: "WorldPac"},
		{ID: "acct-2", Name: "SSF"},
		{ID: "acct-3", Name: "AutoZone"},
	}
}

func taggedOffer(partNumber string, quantity int, acct marketplace.VendorAccount) marketplace.PartOffer {
	return marketplace.PartOffer{PartNumber: partNumber, Quantity: quantity, InStock: quantity > 0, Vendor: acct}
}

func TestSourceGroupsByVendor(t *testing.T) {
	accounts := testAccounts()
	// Three vendors contributing 2/0/1 offers. The middle vendor failed
	// inside the fan-out and contributes nothing.
	market := &fakeMarket{
		partType: &marketplace.PartType{ID: "pt-1", Name: "Oil Filter"},
		offers: []marketplace.PartOffer{
			taggedOffer("P1", 2, accounts[0]),
			taggedOffer("P2", 1, accounts[0]),
			taggedOffer("P3", 4, accounts[2]),
		},
	}
	runner := NewRunner(&fakeSessions{}, market, nil, accounts, nil)

	result, err := runner.Source(context.Background(), Request{VIN: testVin, SearchTerm: "oil filter", Mode: ModeManual})
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if result.TotalVendors != 2 {
		t.Errorf("totalVendors = %d, want 2", result.TotalVendors)
	}
	if result.TotalParts != 3 {
		t.Errorf("totalParts = %d, want 3", result.TotalParts)
	}
	if len(result.Vendors) != 2 {
		t.Fatalf("vendor groups = %d, want 2", len(result.Vendors))
	}
	if result.Vendors[0].Vendor.ID != "acct-1" || len(result.Vendors[0].Parts) != 2 {
		t.Errorf("first group = %s with %d parts, want acct-1 with 2", result.Vendors[0].Vendor.ID, len(result.Vendors[0].Parts))
	}
	if result.Vendors[1].Vendor.ID != "acct-3" || len(result.Vendors[1].Parts) != 1 {
		t.Errorf("second group = %s with %d parts, want acct-3 with 1", result.Vendors[1].Vendor.ID, len(result.Vendors[1].Parts))
	}
	if result.Vehicle.VIN != testVin {
		t.Errorf("vehicle vin = %q, want the input VIN", result.Vehicle.VIN)
	}
}

func TestSourceManualModeFiltersBeforeGrouping(t *testing.T) {
	accounts := testAccounts()
	market := &fakeMarket{
		partType: &marketplace.PartType{ID: "pt-1", Name: "Oil Filter"},
		offers: []marketplace.PartOffer{
			taggedOffer("P1", 2, accounts[0]),
			taggedOffer("P2", 0, accounts[1]), // backorder only
		},
	}
	ranker := &fakeRanker{}
	runner := NewRunner(&fakeSessions{}, market, ranker, accounts, nil)

	result, err := runner.Source(context.Background(), Request{VIN: testVin, SearchTerm: "oil filter", Mode: ModeManual})
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if result.TotalParts != 1 || result.TotalVendors != 1 {
		t.Errorf("totals = %d parts / %d vendors, want 1/1 after manual filter", result.TotalParts, result.TotalVendors)
	}
	if len(ranker.gotOffers) != 1 {
		t.Errorf("ranker saw %d offers, want the filtered set of 1", len(ranker.gotOffers))
	}
}

func TestSourceRetriesOnceOnSessionExpiry(t *testing.T) {
	accounts := testAccounts()
	market := &fakeMarket{
		partType:   &marketplace.PartType{ID: "pt-1", Name: "Oil Filter"},
		offers:     []marketplace.PartOffer{taggedOffer("P1", 2, accounts[0])},
		searchErrs: []error{errors.New(errors.ErrCodeSessionExpired, "session rejected")},
	}
	sessions := &fakeSessions{}
	runner := NewRunner(sessions, market, nil, accounts, nil)

	result, err := runner.Source(context.Background(), Request{VIN: testVin, SearchTerm: "oil filter"})
	if err != nil {
		t.Fatalf("Source() error = %v, want retry to recover", err)
	}
	if result.TotalParts != 1 {
		t.Errorf("totalParts = %d, want 1", result.TotalParts)
	}
	if sessions.invalidates != 1 {
		t.Errorf("invalidations = %d, want 1", sessions.invalidates)
	}
	if market.searches != 2 {
		t.Errorf("searches = %d, want 2", market.searches)
	}
}

func TestSourceRetryBound(t *testing.T) {
	accounts := testAccounts()
	market := &fakeMarket{
		partType: &marketplace.PartType{ID: "pt-1", Name: "Oil Filter"},
		searchErrs: []error{
			errors.New(errors.ErrCodeSessionExpired, "session rejected"),
			errors.New(errors.ErrCodeSessionExpired, "session rejected"),
			errors.New(errors.ErrCodeSessionExpired, "session rejected"),
		},
	}
	sessions := &fakeSessions{}
	runner := NewRunner(sessions, market, nil, accounts, nil)

	_, err := runner.Source(context.Background(), Request{VIN: testVin, SearchTerm: "oil filter"})
	if !errors.Is(err, errors.ErrCodeSessionExpired) {
		t.Fatalf("Source() error = %v, want SESSION_EXPIRED", err)
	}
	if market.searches != 2 {
		t.Errorf("searches = %d, want exactly 2 (one retry, never more)", market.searches)
	}
	if sessions.invalidates != 1 {
		t.Errorf("invalidations = %d, want 1", sessions.invalidates)
	}
}

func TestSourcePartTypeNotFound(t *testing.T) {
	market := &fakeMarket{partType: nil}
	runner := NewRunner(&fakeSessions{}, market, nil, testAccounts(), nil)

	_, err := runner.Source(context.Background(), Request{VIN: testVin, SearchTerm: "flux capacitor"})
	if !errors.Is(err, errors.ErrCodePartTypeNotFound) {
		t.Fatalf("Source() error = %v, want PART_TYPE_NOT_FOUND", err)
	}
	if msg := errors.UserMessage(err); !strings.Contains(msg, "flux capacitor") {
		t.Errorf("message %q does not name the unresolved term", msg)
	}
}

func TestSourceValidation(t *testing.T) {
	sessions := &fakeSessions{}
	runner := NewRunner(sessions, &fakeMarket{}, nil, testAccounts(), nil)

	tests := []struct {
		name string
		req  Request
		code errors.Code
	}{
		{"short vin", Request{VIN: "ABC", SearchTerm: "oil filter"}, errors.ErrCodeInvalidVin},
		{"empty term", Request{VIN: testVin, SearchTerm: ""}, errors.ErrCodeInvalidInput},
		{"bad mode", Request{VIN: testVin, SearchTerm: "oil filter", Mode: "turbo"}, errors.ErrCodeInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Source(context.Background(), tt.req)
			if !errors.Is(err, tt.code) {
				t.Errorf("Source() error = %v, want code %s", err, tt.code)
			}
		})
	}

	if sessions.ensures != 0 {
		t.Errorf("invalid requests touched the session %d times, want 0", sessions.ensures)
	}
}

func TestSourceVehicleErrorPassesThrough(t *testing.T) {
	market := &fakeMarket{vehicleErr: errors.New(errors.ErrCodeVinNotFound, "no vehicle found")}
	runner := NewRunner(&fakeSessions{}, market, nil, testAccounts(), nil)

	_, err := runner.Source(context.Background(), Request{VIN: testVin, SearchTerm: "oil filter"})
	if !errors.Is(err, errors.ErrCodeVinNotFound) {
		t.Fatalf("Source() error = %v, want VIN_NOT_FOUND", err)
	}
}
