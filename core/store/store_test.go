package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"movura-admin/config"
	"movura-admin/core/utils"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{
		DBPath: filepath.Join(t.TempDir(), "movura.db"),
		Pepper: "pepper",
		AppEnv: "dev",
	}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func TestUsersCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	us := NewUsersStore(db)
	ctx := context.Background()

	u := &User{
		Identity:     "Ops@Movura.MX",
		FullName:     "Operadora Uno",
		PasswordHash: "hash",
		Salt:         "salt",
		FirstLogin:   true,
		Active:       true,
	}
	id, err := us.Create(ctx, u, []string{"operator", "auditor"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, roles, err := us.FindByIdentity(ctx, "ops@movura.mx")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != id {
		t.Fatalf("lookup mismatch: %+v", got)
	}
	if !got.FirstLogin || !got.Active {
		t.Fatalf("flags lost: %+v", got)
	}
	if len(roles) != 2 {
		t.Fatalf("roles: %v", roles)
	}

	missing, _, err := us.FindByIdentity(ctx, "nobody@movura.mx")
	if err != nil || missing != nil {
		t.Fatalf("expected nil,nil for unknown identity, got %+v %v", missing, err)
	}
}

func TestUsersUpdatePasswordClearsFirstLogin(t *testing.T) {
	db := newTestDB(t)
	us := NewUsersStore(db)
	ctx := context.Background()
	id, err := us.Create(ctx, &User{Identity: "a@movura.mx", PasswordHash: "h", Salt: "s", FirstLogin: true, Active: true}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := us.UpdatePassword(ctx, id, "h2", "s2", false); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, _, err := us.Get(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstLogin || got.PasswordHash != "h2" || got.Salt != "s2" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func sessionFixture(token string, ttl time.Duration) *SessionRecord {
	now := time.Now().UTC()
	return &SessionRecord{
		Token:      token,
		UserID:     "user-1",
		Identity:   "ops@movura.mx",
		Roles:      []string{"admin"},
		IP:         "10.0.0.1",
		UserAgent:  "test",
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

func TestSQLSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ss := NewSQLSessionStore(db)
	ctx := context.Background()

	if err := ss.Put(ctx, sessionFixture("tok-1", time.Hour)); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec, err := ss.Get(ctx, "tok-1")
	if err != nil || rec == nil {
		t.Fatalf("get: %+v %v", rec, err)
	}
	if len(rec.Roles) != 1 || rec.Roles[0] != "admin" {
		t.Fatalf("roles lost: %v", rec.Roles)
	}

	if err := ss.Revoke(ctx, "tok-1", "ops@movura.mx"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	rec, err = ss.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get revoked: %v", err)
	}
	if rec == nil || !rec.Revoked {
		t.Fatalf("revocation not recorded: %+v", rec)
	}

	if missing, err := ss.Get(ctx, "nope"); err != nil || missing != nil {
		t.Fatalf("expected nil,nil for unknown token")
	}
}

func TestSQLSessionPurgeExpired(t *testing.T) {
	db := newTestDB(t)
	ss := NewSQLSessionStore(db)
	ctx := context.Background()
	if err := ss.Put(ctx, sessionFixture("old", -time.Minute)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := ss.Put(ctx, sessionFixture("fresh", time.Hour)); err != nil {
		t.Fatalf("put: %v", err)
	}
	n, err := ss.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
	if rec, _ := ss.Get(ctx, "fresh"); rec == nil {
		t.Fatal("fresh session purged")
	}
}

func TestSQLSessionRevokeAllForUser(t *testing.T) {
	db := newTestDB(t)
	ss := NewSQLSessionStore(db)
	ctx := context.Background()
	for _, token := range []string{"a", "b", "c"} {
		if err := ss.Put(ctx, sessionFixture(token, time.Hour)); err != nil {
			t.Fatalf("put %s: %v", token, err)
		}
	}
	n, err := ss.RevokeAllForUser(ctx, "user-1", "admin")
	if err != nil || n != 3 {
		t.Fatalf("revoke all: n=%d err=%v", n, err)
	}
	active, err := ss.ListActiveForUser(ctx, "user-1")
	if err != nil || len(active) != 0 {
		t.Fatalf("expected no active sessions, got %d", len(active))
	}
}

func TestFacilitiesTariffUpdate(t *testing.T) {
	db := newTestDB(t)
	fs := NewFacilitiesStore(db)
	ctx := context.Background()
	id, err := fs.Create(ctx, &Facility{
		Name: "Parking Centro", Group: "centro", Capacity: 100,
		Tariffs: TariffConfig{BaseRateCents: 3000, HourlyCents: 1500, FractionMinutes: 15, FractionCents: 500, GraceMinutes: 10, Cutoff: "23:00"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	next := TariffConfig{BaseRateCents: 4000, HourlyCents: 2000, FractionMinutes: 20, FractionCents: 700, GraceMinutes: 5, Cutoff: "22:00"}
	if err := fs.UpdateTariffs(ctx, id, next); err != nil {
		t.Fatalf("update tariffs: %v", err)
	}
	got, err := fs.Get(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Tariffs != next {
		t.Fatalf("tariffs mismatch: %+v", got.Tariffs)
	}
	if err := fs.UpdateTariffs(ctx, "missing", next); err != sql.ErrNoRows {
		t.Fatalf("expected ErrNoRows for unknown facility, got %v", err)
	}
}

func TestTicketSettleIsSingleShot(t *testing.T) {
	db := newTestDB(t)
	fs := NewFacilitiesStore(db)
	ts := NewTicketsStore(db)
	ctx := context.Background()
	fid, err := fs.Create(ctx, &Facility{Name: "Centro", Capacity: 10})
	if err != nil {
		t.Fatalf("facility: %v", err)
	}
	tid, err := ts.Create(ctx, &Ticket{FacilityID: fid, Plate: "abc123", Email: "Car@Mail.MX"})
	if err != nil {
		t.Fatalf("ticket: %v", err)
	}

	found, err := ts.FindOpenByContact(ctx, "", "car@mail.mx", "")
	if err != nil || len(found) != 1 {
		t.Fatalf("search by email: %v %v", found, err)
	}
	byPlate, err := ts.FindOpenByPlate(ctx, fid, "ABC123")
	if err != nil || byPlate == nil || byPlate.ID != tid {
		t.Fatalf("search by plate failed: %+v %v", byPlate, err)
	}

	p := &Payment{FacilityID: fid, AmountCents: 4200, SettledBy: "ops@movura.mx"}
	if err := ts.Settle(ctx, tid, p); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := ts.Settle(ctx, tid, &Payment{FacilityID: fid}); err != sql.ErrNoRows {
		t.Fatalf("second settle must fail with ErrNoRows, got %v", err)
	}
	got, err := ts.Get(ctx, tid)
	if err != nil || got == nil || got.Status != TicketStatusPaid || got.ExitedAt == nil {
		t.Fatalf("ticket not closed: %+v", got)
	}
}

func TestOccupancyCountsOnlyOpenTickets(t *testing.T) {
	db := newTestDB(t)
	fs := NewFacilitiesStore(db)
	ts := NewTicketsStore(db)
	ctx := context.Background()
	fid, err := fs.Create(ctx, &Facility{Name: "Norte", Capacity: 50})
	if err != nil {
		t.Fatalf("facility: %v", err)
	}
	open1, _ := ts.Create(ctx, &Ticket{FacilityID: fid})
	if _, err := ts.Create(ctx, &Ticket{FacilityID: fid}); err != nil {
		t.Fatalf("ticket: %v", err)
	}
	if err := ts.Settle(ctx, open1, &Payment{FacilityID: fid, AmountCents: 100}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	rows, err := ts.Occupancy(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("occupancy: %v %v", rows, err)
	}
	if rows[0].OpenTickets != 1 || rows[0].Capacity != 50 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestTransactionsFilterByFacilityAndTime(t *testing.T) {
	db := newTestDB(t)
	fs := NewFacilitiesStore(db)
	ts := NewTicketsStore(db)
	ctx := context.Background()
	fidA, _ := fs.Create(ctx, &Facility{Name: "A"})
	fidB, _ := fs.Create(ctx, &Facility{Name: "B"})
	for _, fid := range []string{fidA, fidB} {
		tid, err := ts.Create(ctx, &Ticket{FacilityID: fid})
		if err != nil {
			t.Fatalf("ticket: %v", err)
		}
		if err := ts.Settle(ctx, tid, &Payment{FacilityID: fid, AmountCents: 1000}); err != nil {
			t.Fatalf("settle: %v", err)
		}
	}
	got, err := ts.Transactions(ctx, TransactionsFilter{FacilityID: fidA})
	if err != nil || len(got) != 1 {
		t.Fatalf("facility filter: %v %v", got, err)
	}
	none, err := ts.Transactions(ctx, TransactionsFilter{To: time.Now().UTC().Add(-time.Hour)})
	if err != nil || len(none) != 0 {
		t.Fatalf("time filter: %v %v", none, err)
	}
}

func TestAuditAppendAndPurge(t *testing.T) {
	db := newTestDB(t)
	as := NewAuditStore(db)
	ctx := context.Background()
	if err := as.Append(ctx, "ops@movura.mx", "auth.login", ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := as.Recent(ctx, 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("recent: %v %v", entries, err)
	}
	n, err := as.PurgeOlderThan(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("purge: n=%d err=%v", n, err)
	}
}
