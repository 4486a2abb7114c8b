package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"movura-admin/config"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

func newStores(t *testing.T) (store.SessionStore, store.AuditStore) {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "jobs.db"), Pepper: "p", AppEnv: "dev"}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return store.NewSQLSessionStore(db), store.NewAuditStore(db)
}

func TestRunOnceSweepsExpiredSessions(t *testing.T) {
	sessions, audits := newStores(t)
	ctx := context.Background()
	now := time.Now().UTC()
	put := func(token string, ttl time.Duration) {
		err := sessions.Put(ctx, &store.SessionRecord{
			Token: token, UserID: "u", Identity: "ops@movura.mx",
			CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(ttl),
		})
		if err != nil {
			t.Fatalf("put %s: %v", token, err)
		}
	}
	put("dead", -time.Minute)
	put("alive", time.Hour)

	h := NewHousekeeping(config.HousekeepingConfig{Enabled: true, PurgeSchedule: "15 3 * * *"}, sessions, audits, utils.NewLogger())
	h.RunOnce(ctx, now)

	if rec, _ := sessions.Get(ctx, "dead"); rec != nil {
		t.Fatal("expired session survived the sweep")
	}
	if rec, _ := sessions.Get(ctx, "alive"); rec == nil {
		t.Fatal("live session was swept")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sessions, audits := newStores(t)
	h := NewHousekeeping(config.HousekeepingConfig{Enabled: true, PurgeSchedule: "not a cron"}, sessions, audits, utils.NewLogger())
	if err := h.Start(context.Background()); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestDisabledHousekeepingIsInert(t *testing.T) {
	h := NewHousekeeping(config.HousekeepingConfig{Enabled: false}, nil, nil, utils.NewLogger())
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("disabled start: %v", err)
	}
	if err := h.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
