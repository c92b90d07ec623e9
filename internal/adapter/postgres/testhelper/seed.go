package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mutationwave/entitlements/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser inserts a registry user with the given role and tier.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.Role, tier domain.Tier) domain.User {
	t.Helper()

	suffix := uniqueSuffix()
	u := domain.User{
		ID:        "user-" + suffix,
		Name:      "Seed " + suffix,
		Email:     "seed-" + suffix + "@example.com",
		Role:      role,
		Tier:      tier,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, role, tier, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, string(u.Role), string(u.Tier), u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seed user: %v", err)
	}
	return u
}
