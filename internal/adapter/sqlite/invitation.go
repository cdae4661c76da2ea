package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/devportal/internal/domain"
)

// Compile-time check: InvitationRepository implements domain.InvitationRepository.
var _ domain.InvitationRepository = (*InvitationRepository)(nil)

// InvitationRepository implements domain.InvitationRepository using SQLite.
type InvitationRepository struct {
	db *sql.DB
}

// NewInvitationRepository creates a repository over a migrated database.
func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Insert(ctx context.Context, inv domain.Invitation) error {
	var acceptedOn sql.NullString
	if inv.AcceptedOn != nil {
		acceptedOn = sql.NullString{String: inv.AcceptedOn.UTC().Format(timeFormat), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (code, vendor, email, invited_by, created_on, accepted_on)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.Code, inv.Vendor, inv.Email, inv.InvitedBy,
		inv.CreatedOn.UTC().Format(timeFormat), acceptedOn,
	)
	if err != nil {
		return fmt.Errorf("inserting invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) GetByCode(ctx context.Context, code string) (domain.Invitation, error) {
	var inv domain.Invitation
	var createdOn string
	var acceptedOn sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT code, vendor, email, invited_by, created_on, accepted_on
		 FROM invitations WHERE code = ?`, code,
	).Scan(&inv.Code, &inv.Vendor, &inv.Email, &inv.InvitedBy, &createdOn, &acceptedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invitation{}, domain.ErrInvitationNotFound
		}
		return domain.Invitation{}, fmt.Errorf("scanning invitation: %w", err)
	}

	if inv.CreatedOn, err = time.Parse(timeFormat, createdOn); err != nil {
		return domain.Invitation{}, fmt.Errorf("parsing created_on: %w", err)
	}
	if acceptedOn.Valid {
		at, err := time.Parse(timeFormat, acceptedOn.String)
		if err != nil {
			return domain.Invitation{}, fmt.Errorf("parsing accepted_on: %w", err)
		}
		inv.AcceptedOn = &at
	}

	return inv, nil
}

// MarkAccepted only touches a row that is still pending, so of two
// concurrent accepts exactly one succeeds.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, code string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET accepted_on = ? WHERE code = ? AND accepted_on IS NULL`,
		at.UTC().Format(timeFormat), code,
	)
	if err != nil {
		return fmt.Errorf("accepting invitation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByCode(ctx, code); err != nil {
		return err
	}
	return domain.ErrInvitationAccepted
}
