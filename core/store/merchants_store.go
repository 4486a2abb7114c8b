package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
)

type MerchantsStore interface {
	Create(ctx context.Context, m *Merchant) (string, error)
	Get(ctx context.Context, id string) (*Merchant, error)
	List(ctx context.Context, facilityID string) ([]Merchant, error)
	Update(ctx context.Context, m *Merchant) error
	SetStatus(ctx context.Context, id, status string) error
	Count(ctx context.Context) (int, error)
}

type merchantsStore struct {
	db *sql.DB
}

func NewMerchantsStore(db *sql.DB) MerchantsStore {
	return &merchantsStore{db: db}
}

func (s *merchantsStore) Create(ctx context.Context, m *Merchant) (string, error) {
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV4()).String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = MerchantStatusActive
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO merchants(id, facility_id, name, status, courtesy_minutes, created_at) VALUES(?,?,?,?,?,?)`,
		m.ID, m.FacilityID, m.Name, m.Status, m.CourtesyMinutes, m.CreatedAt)
	return m.ID, err
}

func (s *merchantsStore) Get(ctx context.Context, id string) (*Merchant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, facility_id, name, status, courtesy_minutes, created_at FROM merchants WHERE id=?`, id)
	var m Merchant
	err := row.Scan(&m.ID, &m.FacilityID, &m.Name, &m.Status, &m.CourtesyMinutes, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all merchants, or only those of one facility when
// facilityID is non-empty.
func (s *merchantsStore) List(ctx context.Context, facilityID string) ([]Merchant, error) {
	query := `SELECT id, facility_id, name, status, courtesy_minutes, created_at FROM merchants`
	var args []any
	if facilityID != "" {
		query += ` WHERE facility_id=?`
		args = append(args, facilityID)
	}
	query += ` ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Merchant
	for rows.Next() {
		var m Merchant
		if err := rows.Scan(&m.ID, &m.FacilityID, &m.Name, &m.Status, &m.CourtesyMinutes, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *merchantsStore) Update(ctx context.Context, m *Merchant) error {
	res, err := s.db.ExecContext(ctx, `UPDATE merchants SET name=?, courtesy_minutes=?, status=? WHERE id=?`,
		m.Name, m.CourtesyMinutes, m.Status, m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (s *merchantsStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE merchants SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (s *merchantsStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM merchants`).Scan(&n)
	return n, err
}
