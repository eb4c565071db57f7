package marketplace

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/session"
)

type partSearchData struct {
	PartSearch struct {
		Products []struct {
			PartNumber string          `json:"partNumber"`
			Brand      string          `json:"brand"`
			Title      string          `json:"title"`
			UnitPrice  decimal.Decimal `json:"unitPrice"`
			ListPrice  decimal.Decimal `json:"listPrice"`
			Quantity   int             `json:"quantity"`
			Location   string          `json:"location"`
			InStock    bool            `json:"inStock"`
			Attributes []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"attributes"`
			Images []string `json:"images"`
		} `json:"products"`
	} `json:"partSearch"`
}

type vendorResult struct {
	account VendorAccount
	offers  []PartOffer
	err     error
}

// SearchAll queries every configured vendor account concurrently and
// returns the flattened union of their offers, each tagged with its
// originating account.
//
// Every branch is isolated: a failing vendor is logged and contributes an
// empty list, never aborting the overall call. All branches are awaited
// before aggregation. The one exception is session expiry - if any branch
// reports SESSION_EXPIRED it is surfaced after the join so the pipeline can
// run its single refresh-and-retry.
func (c *Client) SearchAll(ctx context.Context, vehicleID, vin string, partTypeIDs []string, accounts []VendorAccount, cred session.Credential) ([]PartOffer, error) {
	results := make([]vendorResult, len(accounts))

	var wg sync.WaitGroup
	for i, acct := range accounts {
		wg.Add(1)
		go func(i int, acct VendorAccount) {
			defer wg.Done()
			offers, err := c.searchVendor(ctx, acct, vehicleID, vin, partTypeIDs, cred)
			results[i] = vendorResult{account: acct, offers: offers, err: err}
		}(i, acct)
	}
	wg.Wait()

	var (
		all     []PartOffer
		failed  int
		expired error
	)
	for _, r := range results {
		if r.err != nil {
			if errors.Is(r.err, errors.ErrCodeSessionExpired) && expired == nil {
				expired = r.err
			}
			failed++
			c.logger.Warn("vendor search failed", "vendor", r.account.ID, "err", r.err)
			continue
		}
		all = append(all, r.offers...)
	}

	if expired != nil {
		return nil, expired
	}
	if failed > 0 {
		c.logger.Warn("vendor fan-out completed with failures",
			"failed", failed, "total", len(accounts))
	}

	return all, nil
}

func (c *Client) searchVendor(ctx context.Context, acct VendorAccount, vehicleID, vin string, partTypeIDs []string, cred session.Credential) ([]PartOffer, error) {
	vars := map[string]any{
		"accountId":   acct.ID,
		"vehicleId":   vehicleID,
		"vin":         vin,
		"partTypeIds": partTypeIDs,
	}
	data, err := c.Execute(ctx, "VendorPartSearch", vendorSearchQuery, vars, cred)
	if err != nil {
		return nil, err
	}

	var decoded partSearchData
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "malformed part search payload")
	}

	offers := make([]PartOffer, 0, len(decoded.PartSearch.Products))
	for _, p := range decoded.PartSearch.Products {
		offer := PartOffer{
			PartNumber: p.PartNumber,
			Brand:      p.Brand,
			Title:      p.Title,
			UnitPrice:  p.UnitPrice,
			ListPrice:  p.ListPrice,
			Quantity:   p.Quantity,
			Location:   p.Location,
			InStock:    p.InStock,
			Images:     p.Images,
			Vendor:     acct,
		}
		if len(p.Attributes) > 0 {
			offer.Attributes = make(map[string]string, len(p.Attributes))
			for _, a := range p.Attributes {
				offer.Attributes[a.Name] = a.Value
			}
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
