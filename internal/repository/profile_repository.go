package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/festopiya/stall-booking/internal/model"
)

// ProfileRepo stores vendor profiles keyed by the vendor's account id.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a new ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// GetProfile returns the vendor's profile or ErrProfileNotFound.
func (r *ProfileRepo) GetProfile(ctx context.Context, vendorID uint64) (model.VendorProfile, error) {
	const q = `SELECT vendor_id, stall_name, food_category, phone, updated_at_ms
	           FROM vendor_profiles WHERE vendor_id = ?`
	p, err := scanProfile(r.db.QueryRowContext(ctx, q, vendorID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.VendorProfile{}, ErrProfileNotFound
	}
	return p, err
}

// GetProfiles resolves many vendors at once for display joins. Vendors
// without a profile are absent from the map.
func (r *ProfileRepo) GetProfiles(ctx context.Context, vendorIDs []uint64) (map[uint64]model.VendorProfile, error) {
	out := make(map[uint64]model.VendorProfile, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(vendorIDs))
	for i, id := range vendorIDs {
		args[i] = id
	}
	q := `SELECT vendor_id, stall_name, food_category, phone, updated_at_ms
	      FROM vendor_profiles WHERE vendor_id IN (` + placeholders(len(vendorIDs)) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.VendorID] = p
	}
	return out, rows.Err()
}

// UpsertProfile creates the profile if absent, else overwrites it. The
// update-then-insert runs in one transaction; an insert that loses a race
// to a concurrent first save falls back to the update.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, p model.VendorProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const upd = `UPDATE vendor_profiles SET stall_name = ?, food_category = ?, phone = ?, updated_at_ms = ?
	             WHERE vendor_id = ?`
	res, err := tx.ExecContext(ctx, upd, p.StallName, p.FoodCategory, p.Phone, toMillis(p.UpdatedAt), p.VendorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		const ins = `INSERT INTO vendor_profiles (vendor_id, stall_name, food_category, phone, updated_at_ms)
		             VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, ins, p.VendorID, p.StallName, p.FoodCategory, p.Phone, toMillis(p.UpdatedAt)); err != nil {
			if !isDuplicateKey(err) {
				return err
			}
			if _, err := tx.ExecContext(ctx, upd, p.StallName, p.FoodCategory, p.Phone, toMillis(p.UpdatedAt), p.VendorID); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func scanProfile(s rowScanner) (model.VendorProfile, error) {
	var (
		p         model.VendorProfile
		updatedMs int64
	)
	if err := s.Scan(&p.VendorID, &p.StallName, &p.FoodCategory, &p.Phone, &updatedMs); err != nil {
		return model.VendorProfile{}, err
	}
	p.UpdatedAt = fromMillis(updatedMs)
	return p, nil
}
