package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/neomorfeo/devportal/internal/adapter/sqlite"
	"github.com/neomorfeo/devportal/internal/domain"
)

// newTestDB creates an in-memory, migrated SQLite database for testing.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateVendor(t *testing.T, repo *sqlite.VendorRepository, v domain.Vendor) {
	t.Helper()
	if err := repo.Create(context.Background(), v); err != nil {
		t.Fatalf("mustCreateVendor failed: %v", err)
	}
}

func mustRegister(t *testing.T, dir *sqlite.UserDirectory, u domain.User) {
	t.Helper()
	ctx := context.Background()
	if err := dir.Register(ctx, u.Email, u.Name); err != nil {
		t.Fatalf("mustRegister failed: %v", err)
	}
	if u.IsAdmin {
		if err := dir.SetAdmin(ctx, u.Email, true); err != nil {
			t.Fatalf("mustRegister admin failed: %v", err)
		}
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := sqlite.Migrate(db); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}
