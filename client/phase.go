package client

import "sync"

// Phase is the view the operator is authorized to see.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseLogin       Phase = "login"
	PhaseForgot      Phase = "forgot"
	PhaseForceChange Phase = "forceChange"
	PhaseUpdated     Phase = "updated"
	PhaseApp         Phase = "app"
)

// Event is a user action feeding the phase machine. Session changes
// arrive separately, as EventSessionChanged.
type Event string

const (
	EventInitDone        Event = "initDone"
	EventSessionChanged  Event = "sessionChanged"
	EventRequestRecovery Event = "requestRecovery"
	EventReturnToLogin   Event = "returnToLogin"
	EventPasswordChanged Event = "passwordChanged"
	EventContinue        Event = "continue"
)

// phaseForSession is the forced mapping from session shape to phase,
// used at init and whenever authentication is lost or gained.
func phaseForSession(s Session) Phase {
	switch {
	case !s.Authenticated():
		return PhaseLogin
	case s.FirstLogin:
		return PhaseForceChange
	default:
		return PhaseApp
	}
}

// Transition is the pure phase function. It is total: unknown
// combinations keep the current phase.
func Transition(current Phase, session Session, ev Event) Phase {
	switch ev {
	case EventInitDone:
		return phaseForSession(session)
	case EventSessionChanged:
		// forgot is a valid unauthenticated state; an operator mid
		// recovery is not bounced back to login.
		if current == PhaseForgot && !session.Authenticated() {
			return PhaseForgot
		}
		if !session.Authenticated() {
			return PhaseLogin
		}
		// updated is held until the operator continues, even though
		// the session is already authenticated past first login.
		if current == PhaseUpdated {
			return PhaseUpdated
		}
		return phaseForSession(session)
	case EventRequestRecovery:
		if current == PhaseLogin {
			return PhaseForgot
		}
	case EventReturnToLogin:
		if current == PhaseForgot {
			return PhaseLogin
		}
	case EventPasswordChanged:
		if current == PhaseForceChange {
			return PhaseUpdated
		}
	case EventContinue:
		if current == PhaseUpdated {
			return PhaseApp
		}
	}
	return current
}

// Controller tracks the current phase, reacting to provider session
// changes and to user actions. It starts in the loading pre-state and
// leaves it only when the provider finishes restoring.
type Controller struct {
	provider *Provider

	mu    sync.Mutex
	phase Phase
}

func NewController(provider *Provider) *Controller {
	c := &Controller{provider: provider, phase: PhaseLoading}
	provider.Subscribe(c.onSessionChanged)
	return c
}

// Start runs the provider restore and computes the initial phase.
func (c *Controller) Start() {
	c.provider.Init()
	c.mu.Lock()
	if c.phase == PhaseLoading {
		c.phase = Transition(PhaseLogin, c.provider.Session(), EventInitDone)
	}
	c.mu.Unlock()
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) onSessionChanged(s Session) {
	c.mu.Lock()
	if c.phase == PhaseLoading {
		c.phase = Transition(PhaseLogin, s, EventInitDone)
	} else {
		c.phase = Transition(c.phase, s, EventSessionChanged)
	}
	c.mu.Unlock()
}

// Dispatch applies a user action to the machine. The continue action
// out of the updated screen also completes the first login.
func (c *Controller) Dispatch(ev Event) Phase {
	c.mu.Lock()
	before := c.phase
	c.phase = Transition(before, c.provider.Session(), ev)
	after := c.phase
	c.mu.Unlock()
	if ev == EventContinue && before == PhaseUpdated && after == PhaseApp {
		c.provider.CompleteFirstLogin()
	}
	return after
}

// Authorize guards deep links into the shell: only the app phase may
// render it, anything else redirects to the phase the machine dictates.
func (c *Controller) Authorize() (Phase, bool) {
	p := c.Phase()
	return p, p == PhaseApp
}
