package test_utils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/samkassa/samkassa/pkg/user"
)

// SeedCouple inserts two mutually linked users and returns them. Used by
// repository tests that need real payer and partner rows.
func SeedCouple(t *testing.T, db *sql.DB) (user.User, user.User) {
	t.Helper()

	alice := SeedUser(t, db, "Alice", "alice@example.com")
	bob := SeedUser(t, db, "Bob", "bob@example.com")

	if _, err := db.Exec("UPDATE users SET partner_id = ? WHERE id = ?", bob.Id, alice.Id); err != nil {
		t.Fatalf("Failed to link users: %v", err)
	}
	if _, err := db.Exec("UPDATE users SET partner_id = ? WHERE id = ?", alice.Id, bob.Id); err != nil {
		t.Fatalf("Failed to link users: %v", err)
	}
	alice.PartnerId = &bob.Id
	bob.PartnerId = &alice.Id
	return alice, bob
}

// SeedUser inserts a single unlinked user.
func SeedUser(t *testing.T, db *sql.DB, name string, email string) user.User {
	t.Helper()

	u := user.User{Uid: uuid.NewString(), Name: name, Email: email}
	result, err := db.Exec("INSERT INTO users (uid, name, email, color) VALUES (?, ?, ?, '')", u.Uid, u.Name, u.Email)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded user id: %v", err)
	}
	u.Id = int(id)
	return u
}

// SeedCategory inserts a category and returns its id.
func SeedCategory(t *testing.T, db *sql.DB, name string) int {
	t.Helper()

	result, err := db.Exec("INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded category id: %v", err)
	}
	return int(id)
}

// WithTestUser returns a context carrying the given user, the same way the
// HTTP middleware does for real requests.
func WithTestUser(ctx context.Context, u user.User) context.Context {
	return user.WithUser(ctx, u)
}
