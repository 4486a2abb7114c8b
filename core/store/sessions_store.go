package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// SessionStore abstracts the session backend so the SQL and Redis
// implementations can be swapped through config.
type SessionStore interface {
	Put(ctx context.Context, rec *SessionRecord) error
	Get(ctx context.Context, token string) (*SessionRecord, error)
	Touch(ctx context.Context, token string, at time.Time) error
	Revoke(ctx context.Context, token, by string) error
	RevokeAllForUser(ctx context.Context, userID, by string) (int64, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	ListActiveForUser(ctx context.Context, userID string) ([]SessionRecord, error)
}

type sqlSessionStore struct {
	db *sql.DB
}

func NewSQLSessionStore(db *sql.DB) SessionStore {
	return &sqlSessionStore{db: db}
}

func (s *sqlSessionStore) Put(ctx context.Context, rec *SessionRecord) error {
	roles, err := json.Marshal(rec.Roles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions(token, user_id, identity, roles, ip, user_agent, created_at, last_seen_at, expires_at, revoked) VALUES(?,?,?,?,?,?,?,?,?,0)`,
		rec.Token, rec.UserID, rec.Identity, string(roles), rec.IP, rec.UserAgent, rec.CreatedAt, rec.LastSeenAt, rec.ExpiresAt)
	return err
}

func (s *sqlSessionStore) Get(ctx context.Context, token string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT token, user_id, identity, roles, ip, user_agent, created_at, last_seen_at, expires_at, revoked, revoked_at, revoked_by FROM sessions WHERE token=?`, token)
	var rec SessionRecord
	var roles string
	var revoked int
	var revokedAt sql.NullTime
	var revokedBy sql.NullString
	err := row.Scan(&rec.Token, &rec.UserID, &rec.Identity, &roles, &rec.IP, &rec.UserAgent, &rec.CreatedAt, &rec.LastSeenAt, &rec.ExpiresAt, &revoked, &revokedAt, &revokedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if roles != "" {
		if err := json.Unmarshal([]byte(roles), &rec.Roles); err != nil {
			return nil, err
		}
	}
	rec.Revoked = revoked == 1
	if revokedAt.Valid {
		rec.RevokedAt = &revokedAt.Time
	}
	rec.RevokedBy = revokedBy.String
	return &rec, nil
}

func (s *sqlSessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at=? WHERE token=? AND revoked=0`, at, token)
	return err
}

func (s *sqlSessionStore) Revoke(ctx context.Context, token, by string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked=1, revoked_at=?, revoked_by=? WHERE token=? AND revoked=0`, now, by, token)
	return err
}

func (s *sqlSessionStore) RevokeAllForUser(ctx context.Context, userID, by string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked=1, revoked_at=?, revoked_by=? WHERE user_id=? AND revoked=0`, now, by, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqlSessionStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ? OR revoked=1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqlSessionStore) ListActiveForUser(ctx context.Context, userID string) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, user_id, identity, roles, ip, user_agent, created_at, last_seen_at, expires_at FROM sessions WHERE user_id=? AND revoked=0 AND expires_at > ? ORDER BY created_at DESC`, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var roles string
		if err := rows.Scan(&rec.Token, &rec.UserID, &rec.Identity, &roles, &rec.IP, &rec.UserAgent, &rec.CreatedAt, &rec.LastSeenAt, &rec.ExpiresAt); err != nil {
			return nil, err
		}
		if roles != "" {
			if err := json.Unmarshal([]byte(roles), &rec.Roles); err != nil {
				return nil, err
			}
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
