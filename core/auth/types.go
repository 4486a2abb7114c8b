package auth

import "movura-admin/core/store"

type contextKey string

// SessionContextKey carries the authenticated *store.SessionRecord
// through request contexts.
const SessionContextKey contextKey = "session"

type Credentials struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// UserDTO is the wire shape of an authenticated operator. FirstLogin
// tells the client to route into the forced password change flow.
type UserDTO struct {
	ID         string   `json:"id"`
	Identity   string   `json:"identity"`
	FullName   string   `json:"full_name"`
	Roles      []string `json:"roles"`
	FirstLogin bool     `json:"first_login"`
}

func UserToDTO(u *store.User, roles []string) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Identity:   u.Identity,
		FullName:   u.FullName,
		Roles:      roles,
		FirstLogin: u.FirstLogin,
	}
}
