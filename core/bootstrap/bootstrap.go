package bootstrap

import (
	"context"
	"fmt"
	"time"

	"movura-admin/config"
	"movura-admin/core/auth"
	"movura-admin/core/rbac"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

const (
	DefaultAdminIdentity = "admin@movura.mx"
	defaultAdminPassword = "movura-inicial"
)

// Seed makes a fresh database usable: a default admin that must change
// its password on first login, plus reference facilities and merchants.
func Seed(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger,
	users store.UsersStore, facilities store.FacilitiesStore, merchants store.MerchantsStore) error {
	if err := ensureDefaultAdmin(ctx, cfg, logger, users); err != nil {
		return err
	}
	return seedReferenceData(ctx, logger, facilities, merchants)
}

func ensureDefaultAdmin(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger, users store.UsersStore) error {
	existing, _, err := users.FindByIdentity(ctx, DefaultAdminIdentity)
	if err != nil {
		return fmt.Errorf("look up default admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	ph, err := auth.HashPassword(defaultAdminPassword, cfg.Pepper)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	u := &store.User{
		Identity:     DefaultAdminIdentity,
		FullName:     "Administrador",
		PasswordHash: ph.Hash,
		Salt:         ph.Salt,
		FirstLogin:   true,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := users.Create(ctx, u, []string{rbac.RoleAdmin}); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	logger.Printf("seeded default admin %s (password change forced on first login)", DefaultAdminIdentity)
	return nil
}

func seedReferenceData(ctx context.Context, logger *utils.Logger,
	facilities store.FacilitiesStore, merchants store.MerchantsStore) error {
	n, err := facilities.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	defaults := []store.Facility{
		{
			Name: "Parking Centro", Group: "centro", Capacity: 220,
			Tariffs: store.TariffConfig{BaseRateCents: 3500, HourlyCents: 2000, FractionMinutes: 15, FractionCents: 500, GraceMinutes: 10, Cutoff: "23:00"},
		},
		{
			Name: "Plaza Norte", Group: "norte", Capacity: 340,
			Tariffs: store.TariffConfig{BaseRateCents: 3000, HourlyCents: 1800, FractionMinutes: 20, FractionCents: 600, GraceMinutes: 15, Cutoff: "22:30"},
		},
		{
			Name: "Estacionamiento Sur", Group: "sur", Capacity: 150,
			Tariffs: store.TariffConfig{BaseRateCents: 2500, HourlyCents: 1500, FractionMinutes: 15, FractionCents: 400, GraceMinutes: 10, Cutoff: "23:59"},
		},
	}
	var firstID string
	for i := range defaults {
		id, err := facilities.Create(ctx, &defaults[i])
		if err != nil {
			return fmt.Errorf("seed facility %q: %w", defaults[i].Name, err)
		}
		if firstID == "" {
			firstID = id
		}
	}
	refMerchants := []store.Merchant{
		{FacilityID: firstID, Name: "Cine Aurora", CourtesyMinutes: 120},
		{FacilityID: firstID, Name: "Restaurante La Palma", CourtesyMinutes: 90},
		{FacilityID: firstID, Name: "Farmacia Lux", CourtesyMinutes: 30},
		{FacilityID: firstID, Name: "Super Centro", CourtesyMinutes: 60},
	}
	for i := range refMerchants {
		if _, err := merchants.Create(ctx, &refMerchants[i]); err != nil {
			return fmt.Errorf("seed merchant %q: %w", refMerchants[i].Name, err)
		}
	}
	logger.Printf("seeded %d facilities and %d merchants", len(defaults), len(refMerchants))
	return nil
}
