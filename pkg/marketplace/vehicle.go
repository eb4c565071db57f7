package marketplace

import (
	"context"
	"encoding/json"

	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/session"
)

type vehicleSearchData struct {
	VehicleSearch struct {
		Vehicles []struct {
			ID     string `json:"id"`
			VIN    string `json:"vin"`
			Year   int    `json:"year"`
			Make   string `json:"make"`
			Model  string `json:"model"`
			Engine string `json:"engine"`
		} `json:"vehicles"`
	} `json:"vehicleSearch"`
}

// ResolveVehicle decodes a VIN into the marketplace's vehicle identity.
//
// Zero matches fail with VIN_NOT_FOUND; a failed resolution call fails with
// VIN_INVALID (except session expiry, which keeps its own classification so
// the pipeline retry can see it). When the remote returns several vehicles
// the first match wins; there is no disambiguation step.
func (c *Client) ResolveVehicle(ctx context.Context, vin string, cred session.Credential) (*VehicleIdentity, error) {
	data, err := c.Execute(ctx, "VehicleByVin", vehicleByVinQuery, map[string]any{"vin": vin}, cred)
	if err != nil {
		if errors.Is(err, errors.ErrCodeSessionExpired) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidVin, err, "VIN decode failed for %s", vin)
	}

	var decoded vehicleSearchData
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVin, err, "malformed vehicle payload for %s", vin)
	}

	vehicles := decoded.VehicleSearch.Vehicles
	if len(vehicles) == 0 {
		return nil, errors.New(errors.ErrCodeVinNotFound, "no vehicle found for VIN %s", vin)
	}

	if len(vehicles) > 1 {
		c.logger.Debug("multiple vehicles for VIN, using first", "vin", vin, "count", len(vehicles))
	}

	v := vehicles[0]
	return &VehicleIdentity{
		ID:     v.ID,
		VIN:    vin, // preserve the caller's VIN exactly
		Year:   v.Year,
		Make:   v.Make,
		Model:  v.Model,
		Engine: v.Engine,
	}, nil
}
