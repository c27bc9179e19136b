// Package testing provides test helpers shared across packages.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/neurotradx/neurotradx/internal/database"
)

// NewTestDB creates a migrated sqlite database in a per-test temp directory.
// name selects the schema ("users", "config"); unknown names give an empty database.
// The database is closed automatically when the test ends.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("failed to create test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database %s: %v", name, err)
	}

	return db
}
