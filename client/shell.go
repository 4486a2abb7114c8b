package client

import "context"

// ScreenID names a management or report screen inside the shell.
type ScreenID string

const (
	ScreenTariffs      ScreenID = "tariffs"
	ScreenMerchants    ScreenID = "merchants"
	ScreenOccupancy    ScreenID = "occupancy"
	ScreenTransactions ScreenID = "transactions"
	ScreenSettlement   ScreenID = "settlement"
)

var shellScreens = []ScreenID{
	ScreenTariffs,
	ScreenMerchants,
	ScreenOccupancy,
	ScreenTransactions,
	ScreenSettlement,
}

// Shell is the authenticated application surface. It only exists while
// the controller authorizes the app phase; rendering is left to the
// embedding frontend.
type Shell struct {
	controller *Controller
	provider   *Provider
	current    ScreenID
}

func NewShell(controller *Controller, provider *Provider) *Shell {
	return &Shell{controller: controller, provider: provider, current: ScreenTariffs}
}

func (s *Shell) Identity() string {
	return s.provider.Session().Identity
}

func (s *Shell) Screens() []ScreenID {
	out := make([]ScreenID, len(shellScreens))
	copy(out, shellScreens)
	return out
}

func (s *Shell) Current() ScreenID {
	return s.current
}

// Navigate refuses unknown screens and any navigation while the shell
// is not authorized.
func (s *Shell) Navigate(id ScreenID) bool {
	if _, ok := s.controller.Authorize(); !ok {
		return false
	}
	for _, known := range shellScreens {
		if known == id {
			s.current = id
			return true
		}
	}
	return false
}

func (s *Shell) Logout(ctx context.Context) {
	s.provider.Logout(ctx)
}
