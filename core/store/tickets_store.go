package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

type TicketsStore interface {
	Create(ctx context.Context, t *Ticket) (string, error)
	Get(ctx context.Context, id string) (*Ticket, error)
	FindOpenByContact(ctx context.Context, facilityID, email, phone string) ([]Ticket, error)
	FindOpenByPlate(ctx context.Context, facilityID, plate string) (*Ticket, error)
	Settle(ctx context.Context, ticketID string, p *Payment) error
	Occupancy(ctx context.Context) ([]OccupancyRow, error)
	Transactions(ctx context.Context, f TransactionsFilter) ([]Payment, error)
	CountOpen(ctx context.Context) (int, error)
}

type ticketsStore struct {
	db *sql.DB
}

func NewTicketsStore(db *sql.DB) TicketsStore {
	return &ticketsStore{db: db}
}

const ticketColumns = `id, facility_id, plate, email, phone, status, entered_at, exited_at`

func (s *ticketsStore) Create(ctx context.Context, t *Ticket) (string, error) {
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV4()).String()
	}
	if t.EnteredAt.IsZero() {
		t.EnteredAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = TicketStatusOpen
	}
	t.Plate = strings.ToUpper(strings.TrimSpace(t.Plate))
	_, err := s.db.ExecContext(ctx, `INSERT INTO tickets(`+ticketColumns+`) VALUES(?,?,?,?,?,?,?,?)`,
		t.ID, t.FacilityID, t.Plate, strings.ToLower(strings.TrimSpace(t.Email)), strings.TrimSpace(t.Phone), t.Status, t.EnteredAt, t.ExitedAt)
	return t.ID, err
}

func scanTicket(scan func(dest ...any) error) (*Ticket, error) {
	var t Ticket
	var exited sql.NullTime
	if err := scan(&t.ID, &t.FacilityID, &t.Plate, &t.Email, &t.Phone, &t.Status, &t.EnteredAt, &exited); err != nil {
		return nil, err
	}
	if exited.Valid {
		t.ExitedAt = &exited.Time
	}
	return &t, nil
}

func (s *ticketsStore) Get(ctx context.Context, id string) (*Ticket, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=?`, id)
	t, err := scanTicket(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// FindOpenByContact looks up open tickets by email or phone. Either
// value may be empty; both empty returns no rows.
func (s *ticketsStore) FindOpenByContact(ctx context.Context, facilityID, email, phone string) ([]Ticket, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return nil, nil
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status=?`
	args := []any{TicketStatusOpen}
	if facilityID != "" {
		query += ` AND facility_id=?`
		args = append(args, facilityID)
	}
	switch {
	case email != "" && phone != "":
		query += ` AND (email=? OR phone=?)`
		args = append(args, email, phone)
	case email != "":
		query += ` AND email=?`
		args = append(args, email)
	default:
		query += ` AND phone=?`
		args = append(args, phone)
	}
	query += ` ORDER BY entered_at`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Ticket
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (s *ticketsStore) FindOpenByPlate(ctx context.Context, facilityID, plate string) (*Ticket, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, nil
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status=? AND plate=?`
	args := []any{TicketStatusOpen, plate}
	if facilityID != "" {
		query += ` AND facility_id=?`
		args = append(args, facilityID)
	}
	query += ` ORDER BY entered_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	t, err := scanTicket(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// Settle marks the ticket paid and records the payment in one
// transaction. The ticket must still be open.
func (s *ticketsStore) Settle(ctx context.Context, ticketID string, p *Payment) error {
	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV4()).String()
	}
	if p.SettledAt.IsZero() {
		p.SettledAt = time.Now().UTC()
	}
	if p.Method == "" {
		p.Method = "manual"
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `UPDATE tickets SET status=?, exited_at=? WHERE id=? AND status=?`,
		TicketStatusPaid, p.SettledAt, ticketID, TicketStatusOpen)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	p.TicketID = ticketID
	_, err = tx.ExecContext(ctx, `INSERT INTO payments(id, ticket_id, facility_id, amount_cents, method, settled_by, settled_at) VALUES(?,?,?,?,?,?,?)`,
		p.ID, p.TicketID, p.FacilityID, p.AmountCents, p.Method, p.SettledBy, p.SettledAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ticketsStore) Occupancy(ctx context.Context) ([]OccupancyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.capacity, COUNT(t.id)
		FROM facilities f
		LEFT JOIN tickets t ON t.facility_id = f.id AND t.status = ?
		GROUP BY f.id, f.name, f.capacity
		ORDER BY f.name`, TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []OccupancyRow
	for rows.Next() {
		var r OccupancyRow
		if err := rows.Scan(&r.FacilityID, &r.FacilityName, &r.Capacity, &r.OpenTickets); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *ticketsStore) Transactions(ctx context.Context, f TransactionsFilter) ([]Payment, error) {
	query := `SELECT id, ticket_id, facility_id, amount_cents, method, settled_by, settled_at FROM payments WHERE 1=1`
	var args []any
	if f.FacilityID != "" {
		query += ` AND facility_id=?`
		args = append(args, f.FacilityID)
	}
	if !f.From.IsZero() {
		query += ` AND settled_at >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND settled_at < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY settled_at DESC`
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TicketID, &p.FacilityID, &p.AmountCents, &p.Method, &p.SettledBy, &p.SettledAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *ticketsStore) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE status=?`, TicketStatusOpen).Scan(&n)
	return n, err
}
