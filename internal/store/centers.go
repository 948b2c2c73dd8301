package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateCenter inserts a polling center. ID is assigned.
func (s *Store) CreateCenter(ctx context.Context, c record.Center) (record.Center, error) {
	c.ID = record.NewID()
	err := s.insert(ctx, guard.KindElectoralCenter, Changes{
		"id":         c.ID,
		"districtId": c.DistrictID,
		"nameAr":     c.NameAr,
		"nameEn":     c.NameEn,
		"nameFr":     c.NameFr,
		"latitude":   c.Latitude,
		"longitude":  c.Longitude,
		"addressAr":  c.AddressAr,
		"addressEn":  c.AddressEn,
		"addressFr":  c.AddressFr,
		"notes":      c.Notes,
	})
	if err != nil {
		return record.Center{}, err
	}
	return c, nil
}

// ListCenters returns polling centers ordered by Arabic name, with their
// district. districtID may be empty.
func (s *Store) ListCenters(ctx context.Context, districtID string) ([]record.Center, error) {
	var where conditions
	where.eq("e.district_id", districtID)
	clause, args := where.sql()

	centers, err := queryAll(ctx, s.db, scanCenter, `
		SELECT e.id, e.district_id, e.name_ar, e.name_en, e.name_fr, e.latitude, e.longitude,
			e.address_ar, e.address_en, e.address_fr, e.notes,
			d.id, d.name_ar, d.name_en, d.name_fr
		FROM electoral_centers e JOIN districts d ON d.id = e.district_id`+clause+`
		ORDER BY e.name_ar ASC, e.id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	return centers, nil
}

func scanCenter(row scanner) (record.Center, error) {
	var c record.Center
	var ar, en, fr, notes sql.NullString
	var d record.Ref
	if err := row.Scan(&c.ID, &c.DistrictID, &c.NameAr, &c.NameEn, &c.NameFr, &c.Latitude, &c.Longitude,
		&ar, &en, &fr, &notes, &d.ID, &d.NameAr, &d.NameEn, &d.NameFr); err != nil {
		return record.Center{}, err
	}
	c.AddressAr, c.AddressEn, c.AddressFr = nullString(ar), nullString(en), nullString(fr)
	c.Notes = nullString(notes)
	c.District = &d
	return c, nil
}
