package store

import "time"

type User struct {
	ID           string
	Identity     string
	FullName     string
	PasswordHash string
	Salt         string
	FirstLogin   bool
	Active       bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// SessionRecord is a server-side bearer session. Token is the opaque value
// handed to the client; it doubles as the primary key.
type SessionRecord struct {
	Token      string     `json:"token"`
	UserID     string     `json:"user_id"`
	Identity   string     `json:"identity"`
	Roles      []string   `json:"roles"`
	IP         string     `json:"ip"`
	UserAgent  string     `json:"user_agent"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Revoked    bool       `json:"revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	RevokedBy  string     `json:"revoked_by,omitempty"`
}

const (
	FacilityStatusActive    = "activo"
	FacilityStatusCancelled = "cancelado"
)

// TariffConfig is the per-facility pricing setup. All amounts are MXN cents.
type TariffConfig struct {
	BaseRateCents   int64  `json:"base_rate_cents"`
	HourlyCents     int64  `json:"hourly_cents"`
	FractionMinutes int    `json:"fraction_minutes"`
	FractionCents   int64  `json:"fraction_cents"`
	GraceMinutes    int    `json:"grace_minutes"`
	Cutoff          string `json:"cutoff"` // HH:MM, daily billing cutoff
}

type Facility struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Address    string       `json:"address"`
	Group      string       `json:"group"`
	AdminName  string       `json:"admin_name"`
	AdminEmail string       `json:"admin_email"`
	Status     string       `json:"status"`
	Capacity   int          `json:"capacity"`
	CreatedAt  time.Time    `json:"created_at"`
	Tariffs    TariffConfig `json:"tariffs"`
}

const (
	MerchantStatusActive   = "activo"
	MerchantStatusInactive = "inactivo"
)

// Merchant is an affiliated business granting parking courtesy minutes.
type Merchant struct {
	ID              string    `json:"id"`
	FacilityID      string    `json:"facility_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	CourtesyMinutes int       `json:"courtesy_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	TicketStatusOpen = "abierto"
	TicketStatusPaid = "pagado"
)

type Ticket struct {
	ID         string     `json:"id"`
	FacilityID string     `json:"facility_id"`
	Plate      string     `json:"plate,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Status     string     `json:"status"`
	EnteredAt  time.Time  `json:"entered_at"`
	ExitedAt   *time.Time `json:"exited_at,omitempty"`
}

type Payment struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	FacilityID  string    `json:"facility_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	SettledBy   string    `json:"settled_by"`
	SettledAt   time.Time `json:"settled_at"`
}

type OccupancyRow struct {
	FacilityID   string `json:"facility_id"`
	FacilityName string `json:"facility_name"`
	Capacity     int    `json:"capacity"`
	OpenTickets  int    `json:"open_tickets"`
}

type TransactionsFilter struct {
	FacilityID string
	From       time.Time
	To         time.Time
	Limit      int
}

type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
