package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/devportal/internal/domain"
)

// Compile-time check: UserDirectory implements domain.UserDirectory.
var _ domain.UserDirectory = (*UserDirectory)(nil)

// UserDirectory keeps user accounts and vendor memberships in SQLite.
// Emails compare case-insensitively.
type UserDirectory struct {
	db *sql.DB
}

// NewUserDirectory creates a directory over a migrated database.
func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// Register creates the account or refreshes its display name. The admin
// flag of an existing account is left alone.
func (d *UserDirectory) Register(ctx context.Context, email, name string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (email, name) VALUES (?, ?)
		 ON CONFLICT (email) DO UPDATE SET name = excluded.name`,
		email, name,
	)
	if err != nil {
		return fmt.Errorf("registering user: %w", err)
	}
	return nil
}

// SetAdmin grants or revokes administrator rights.
func (d *UserDirectory) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE email = ?`, boolToInt(isAdmin), email,
	)
	if err != nil {
		return fmt.Errorf("updating admin flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (d *UserDirectory) FindUser(ctx context.Context, email string) (domain.User, bool, error) {
	var u domain.User
	err := d.db.QueryRowContext(ctx,
		`SELECT email, name, is_admin FROM users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, fmt.Errorf("scanning user: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT vendor FROM memberships WHERE email = ? ORDER BY vendor`, email,
	)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vendor string
		if err := rows.Scan(&vendor); err != nil {
			return domain.User{}, false, fmt.Errorf("scanning membership: %w", err)
		}
		u.Vendors = append(u.Vendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return domain.User{}, false, err
	}

	return u, true, nil
}

// AddUserToVendor is idempotent for existing members.
func (d *UserDirectory) AddUserToVendor(ctx context.Context, email, vendorID string) error {
	if err := d.checkUser(ctx, email); err != nil {
		return err
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO memberships (email, vendor)
		 SELECT email, ? FROM users WHERE email = ?
		 ON CONFLICT DO NOTHING`,
		vendorID, email,
	)
	if err != nil {
		return fmt.Errorf("adding membership: %w", err)
	}
	return nil
}

func (d *UserDirectory) RemoveUserFromVendor(ctx context.Context, email, vendorID string) error {
	if err := d.checkUser(ctx, email); err != nil {
		return err
	}

	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE email = ? AND vendor = ?`, email, vendorID,
	); err != nil {
		return fmt.Errorf("removing membership: %w", err)
	}
	return nil
}

func (d *UserDirectory) checkUser(ctx context.Context, email string) error {
	var exists bool
	if err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return nil
}
