package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/devportal/internal/domain"
)

// Compile-time check: VendorRepository implements domain.VendorRepository.
var _ domain.VendorRepository = (*VendorRepository)(nil)

// VendorRepository implements domain.VendorRepository using SQLite.
type VendorRepository struct {
	db *sql.DB
}

// NewVendorRepository creates a repository over a migrated database.
func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

const vendorColumns = `id, name, address, email, is_approved, created_by`

func (r *VendorRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors ORDER BY id LIMIT ? OFFSET ?`,
		limit, max(filter.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	defer rows.Close()

	vendors := make([]domain.Vendor, 0)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vendor row: %w", err)
		}
		vendors = append(vendors, v)
	}

	return vendors, rows.Err()
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	v, err := scanVendor(r.db.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Vendor{}, domain.ErrVendorNotFound
		}
		return domain.Vendor{}, fmt.Errorf("scanning vendor: %w", err)
	}
	return v, nil
}

func (r *VendorRepository) Create(ctx context.Context, v domain.Vendor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vendors (`+vendorColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Address, v.Email, boolToInt(v.IsApproved), v.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVendorExists
		}
		return fmt.Errorf("inserting vendor: %w", err)
	}
	return nil
}

// Update applies patch in a single statement. Renaming onto an existing id
// fails with a *domain.VendorConflictError and leaves the row untouched.
func (r *VendorRepository) Update(ctx context.Context, id string, patch domain.VendorPatch) error {
	var sets []string
	var args []any

	if patch.ID != nil {
		sets = append(sets, "id = ?")
		args = append(args, *patch.ID)
	}
	if patch.IsApproved != nil {
		sets = append(sets, "is_approved = ?")
		args = append(args, boolToInt(*patch.IsApproved))
	}
	if len(sets) == 0 {
		return r.CheckExists(ctx, id)
	}

	args = append(args, id)
	result, err := r.db.ExecContext(ctx,
		`UPDATE vendors SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		if patch.ID != nil && isUniqueViolation(err) {
			return &domain.VendorConflictError{ID: *patch.ID}
		}
		return fmt.Errorf("updating vendor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrVendorNotFound
	}

	return nil
}

func (r *VendorRepository) CheckExists(ctx context.Context, id string) error {
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrVendorNotFound
	}
	return nil
}

func (r *VendorRepository) CheckNotExists(ctx context.Context, id string) error {
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return &domain.VendorConflictError{ID: id}
	}
	return nil
}

func (r *VendorRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM vendors WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking vendor %q: %w", id, err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (domain.Vendor, error) {
	var v domain.Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Address, &v.Email, &v.IsApproved, &v.CreatedBy)
	return v, err
}
