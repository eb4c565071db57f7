package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore reads inventory from the shop's relational database.
type PostgresStore struct {
	db *gorm.DB
}

// itemRow maps the inventory_items table.
type itemRow struct {
	ID          int64           `gorm:"primaryKey"`
	PartNumber  string          `gorm:"column:part_number;size:64;index"`
	Description string          `gorm:"size:255"`
	Vendor      string          `gorm:"size:128"`
	Cost        decimal.Decimal `gorm:"type:numeric(10,2)"`
	Retail      decimal.Decimal `gorm:"type:numeric(10,2)"`
	Quantity    int
	Bin         string   `gorm:"size:32"`
	Spec        *specRow `gorm:"foreignKey:ItemID"`
}

func (itemRow) TableName() string { return "inventory_items" }

// specRow maps the inventory_fluid_specs table. List-valued columns are
// stored comma-separated to match the scanner that writes them.
type specRow struct {
	ID           int64  `gorm:"primaryKey"`
	ItemID       int64  `gorm:"column:item_id;index"`
	FluidType    string `gorm:"column:fluid_type;size:32;index"`
	Viscosity    string `gorm:"size:32"`
	Classes      string `gorm:"size:255"`
	OEMApprovals string `gorm:"column:oem_approvals;size:255"`
	Confidence   float64
	Verified     bool
}

func (specRow) TableName() string { return "inventory_fluid_specs" }

// NewPostgresStore opens the inventory database.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open inventory db: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Verify interface compliance
var _ Store = (*PostgresStore)(nil)

// SearchDescription returns items whose description contains substr.
func (s *PostgresStore) SearchDescription(ctx context.Context, substr string, inStockOnly bool) ([]Item, error) {
	q := s.db.WithContext(ctx).
		Preload("Spec").
		Where("description ILIKE ?", "%"+substr+"%")
	if inStockOnly {
		q = q.Where("quantity > 0")
	}

	var rows []itemRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("inventory description search: %w", err)
	}
	return mapRows(rows), nil
}

// SpecCandidates returns items with a verified spec of the given fluid type.
func (s *PostgresStore) SpecCandidates(ctx context.Context, fluidType FluidType) ([]Item, error) {
	var rows []itemRow
	err := s.db.WithContext(ctx).
		Joins("Spec").
		Where(`"Spec".verified = ? AND "Spec".fluid_type = ?`, true, string(fluidType)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("inventory spec candidates: %w", err)
	}
	return mapRows(rows), nil
}

// ByPartNumbers returns items whose part number exactly matches one of the
// given numbers.
func (s *PostgresStore) ByPartNumbers(ctx context.Context, numbers []string) ([]Item, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	var rows []itemRow
	err := s.db.WithContext(ctx).
		Preload("Spec").
		Where("part_number IN ?", numbers).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("inventory part number lookup: %w", err)
	}
	return mapRows(rows), nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapRows(rows []itemRow) []Item {
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		item := Item{
			ID:          r.ID,
			PartNumber:  r.PartNumber,
			Description: r.Description,
			Vendor:      r.Vendor,
			Cost:        r.Cost,
			Retail:      r.Retail,
			Quantity:    r.Quantity,
			Bin:         r.Bin,
		}
		if r.Spec != nil {
			item.Spec = &FluidSpec{
				Type:         FluidType(r.Spec.FluidType),
				Viscosity:    r.Spec.Viscosity,
				Classes:      splitList(r.Spec.Classes),
				OEMApprovals: splitList(r.Spec.OEMApprovals),
				Confidence:   r.Spec.Confidence,
				Verified:     r.Spec.Verified,
			}
		}
		items = append(items, item)
	}
	return items
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
