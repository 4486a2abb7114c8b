package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

type FacilitiesStore interface {
	Create(ctx context.Context, f *Facility) (string, error)
	Get(ctx context.Context, id string) (*Facility, error)
	List(ctx context.Context) ([]Facility, error)
	UpdateTariffs(ctx context.Context, id string, t TariffConfig) error
	SetStatus(ctx context.Context, id, status string) error
	Count(ctx context.Context) (int, error)
}

type facilitiesStore struct {
	db *sql.DB
}

func NewFacilitiesStore(db *sql.DB) FacilitiesStore {
	return &facilitiesStore{db: db}
}

const facilityColumns = `id, name, address, grp, admin_name, admin_email, status, capacity, base_rate_cents, hourly_cents, fraction_minutes, fraction_cents, grace_minutes, cutoff, created_at`

func (s *facilitiesStore) Create(ctx context.Context, f *Facility) (string, error) {
	if f.ID == "" {
		f.ID = uuid.Must(uuid.NewV4()).String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.Status == "" {
		f.Status = FacilityStatusActive
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO facilities(`+facilityColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		f.ID, f.Name, f.Address, f.Group, f.AdminName, f.AdminEmail, f.Status, f.Capacity,
		f.Tariffs.BaseRateCents, f.Tariffs.HourlyCents, f.Tariffs.FractionMinutes, f.Tariffs.FractionCents, f.Tariffs.GraceMinutes, f.Tariffs.Cutoff,
		f.CreatedAt)
	return f.ID, err
}

func scanFacility(scan func(dest ...any) error) (*Facility, error) {
	var f Facility
	if err := scan(&f.ID, &f.Name, &f.Address, &f.Group, &f.AdminName, &f.AdminEmail, &f.Status, &f.Capacity,
		&f.Tariffs.BaseRateCents, &f.Tariffs.HourlyCents, &f.Tariffs.FractionMinutes, &f.Tariffs.FractionCents, &f.Tariffs.GraceMinutes, &f.Tariffs.Cutoff,
		&f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *facilitiesStore) Get(ctx context.Context, id string) (*Facility, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+facilityColumns+` FROM facilities WHERE id=?`, id)
	f, err := scanFacility(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (s *facilitiesStore) List(ctx context.Context) ([]Facility, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+facilityColumns+` FROM facilities ORDER BY grp, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Facility
	for rows.Next() {
		f, err := scanFacility(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, *f)
	}
	return res, rows.Err()
}

func (s *facilitiesStore) UpdateTariffs(ctx context.Context, id string, t TariffConfig) error {
	res, err := s.db.ExecContext(ctx, `UPDATE facilities SET base_rate_cents=?, hourly_cents=?, fraction_minutes=?, fraction_cents=?, grace_minutes=?, cutoff=? WHERE id=?`,
		t.BaseRateCents, t.HourlyCents, t.FractionMinutes, t.FractionCents, t.GraceMinutes, t.Cutoff, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (s *facilitiesStore) SetStatus(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	res, err := s.db.ExecContext(ctx, `UPDATE facilities SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (s *facilitiesStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facilities`).Scan(&n)
	return n, err
}
