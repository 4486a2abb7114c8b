package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

type UsersStore interface {
	Create(ctx context.Context, u *User, roles []string) (string, error)
	FindByIdentity(ctx context.Context, identity string) (*User, []string, error)
	Get(ctx context.Context, id string) (*User, []string, error)
	Update(ctx context.Context, u *User, roles []string) error
	UpdatePassword(ctx context.Context, id, hash, salt string, firstLogin bool) error
	List(ctx context.Context) ([]User, error)
}

type usersStore struct {
	db *sql.DB
}

func NewUsersStore(db *sql.DB) UsersStore {
	return &usersStore{db: db}
}

func (s *usersStore) Create(ctx context.Context, u *User, roles []string) (string, error) {
	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV4()).String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Identity = strings.ToLower(strings.TrimSpace(u.Identity))
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `INSERT INTO users(id, identity, full_name, password_hash, salt, first_login, active, created_at, last_login_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Identity, u.FullName, u.PasswordHash, u.Salt, boolToInt(u.FirstLogin), boolToInt(u.Active), u.CreatedAt, u.LastLoginAt)
	if err != nil {
		return "", err
	}
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO user_roles(user_id, role) VALUES(?,?)`, u.ID, role); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *usersStore) FindByIdentity(ctx context.Context, identity string) (*User, []string, error) {
	identity = strings.ToLower(strings.TrimSpace(identity))
	row := s.db.QueryRowContext(ctx, `SELECT id, identity, full_name, password_hash, salt, first_login, active, created_at, last_login_at FROM users WHERE identity=?`, identity)
	return s.scanUser(ctx, row)
}

func (s *usersStore) Get(ctx context.Context, id string) (*User, []string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, identity, full_name, password_hash, salt, first_login, active, created_at, last_login_at FROM users WHERE id=?`, id)
	return s.scanUser(ctx, row)
}

func (s *usersStore) scanUser(ctx context.Context, row *sql.Row) (*User, []string, error) {
	var u User
	var firstLogin, active int
	var lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.Identity, &u.FullName, &u.PasswordHash, &u.Salt, &firstLogin, &active, &u.CreatedAt, &lastLogin); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	u.FirstLogin = firstLogin == 1
	u.Active = active == 1
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	roles, err := s.userRoles(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return &u, roles, nil
}

func (s *usersStore) userRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id=? ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// Update rewrites the user row; roles are replaced only when non-nil.
func (s *usersStore) Update(ctx context.Context, u *User, roles []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `UPDATE users SET full_name=?, password_hash=?, salt=?, first_login=?, active=?, last_login_at=? WHERE id=?`,
		u.FullName, u.PasswordHash, u.Salt, boolToInt(u.FirstLogin), boolToInt(u.Active), u.LastLoginAt, u.ID)
	if err != nil {
		return err
	}
	if roles != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id=?`, u.ID); err != nil {
			return err
		}
		for _, role := range roles {
			role = strings.TrimSpace(role)
			if role == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO user_roles(user_id, role) VALUES(?,?)`, u.ID, role); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *usersStore) UpdatePassword(ctx context.Context, id, hash, salt string, firstLogin bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=?, salt=?, first_login=? WHERE id=?`,
		hash, salt, boolToInt(firstLogin), id)
	return err
}

func (s *usersStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, identity, full_name, first_login, active, created_at, last_login_at FROM users ORDER BY identity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		var u User
		var firstLogin, active int
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Identity, &u.FullName, &firstLogin, &active, &u.CreatedAt, &lastLogin); err != nil {
			return nil, err
		}
		u.FirstLogin = firstLogin == 1
		u.Active = active == 1
		if lastLogin.Valid {
			u.LastLoginAt = &lastLogin.Time
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
