package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"movura-admin/config"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

func newSeedEnv(t *testing.T) (*config.AppConfig, store.UsersStore, store.FacilitiesStore, store.MerchantsStore) {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "seed.db"), Pepper: "pepper", AppEnv: "dev"}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return cfg, store.NewUsersStore(db), store.NewFacilitiesStore(db), store.NewMerchantsStore(db)
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg, users, facilities, merchants := newSeedEnv(t)
	ctx := context.Background()
	logger := utils.NewLogger()

	for i := 0; i < 2; i++ {
		if err := Seed(ctx, cfg, logger, users, facilities, merchants); err != nil {
			t.Fatalf("seed pass %d: %v", i, err)
		}
	}

	admin, roles, err := users.FindByIdentity(ctx, DefaultAdminIdentity)
	if err != nil || admin == nil {
		t.Fatalf("default admin missing: %v", err)
	}
	if !admin.FirstLogin {
		t.Fatal("default admin must be forced through first login")
	}
	if len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("admin roles: %v", roles)
	}

	nFac, err := facilities.Count(ctx)
	if err != nil || nFac != 3 {
		t.Fatalf("facilities seeded twice or not at all: %d", nFac)
	}
	nMerch, err := merchants.Count(ctx)
	if err != nil || nMerch != 4 {
		t.Fatalf("merchants: %d", nMerch)
	}
}
