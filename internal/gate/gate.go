// Package gate decides whether a route may render for a given session and
// site state. Decisions are pure values: identical inputs always yield the
// identical decision, and nothing here performs the redirect itself.
package gate

import (
	"slices"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

// Action enumerates gate outcomes.
type Action string

const (
	// Wait means the session is still resolving; render a placeholder and
	// re-evaluate on the next state change.
	Wait Action = "wait"
	// RedirectLogin sends an unauthenticated visitor to sign-in.
	RedirectLogin Action = "redirect_login"
	// RedirectHome sends an authenticated but unauthorized user to the
	// default landing route. Never sign-in: this is an authorization
	// failure, not an authentication failure.
	RedirectHome Action = "redirect_home"
	// RedirectHolding sends public visitors to the holding page while the
	// site is not live.
	RedirectHolding Action = "redirect_holding"
	// Admit renders the requested content.
	Admit Action = "admit"
)

// Well-known routes redirect decisions point at.
const (
	LoginRoute       = "/login"
	HomeRoute        = "/admin"
	MaintenanceRoute = "/maintenance"
	ComingSoonRoute  = "/coming-soon"
)

// Input is everything a gate decision depends on.
type Input struct {
	SessionLoading bool
	User           *model.User
	Role           string
	RequiredRoles  []string
	Location       string
}

// Decision is the gate's verdict. ReturnTo carries the originally requested
// location so sign-in can send the user back.
type Decision struct {
	Action     Action
	RedirectTo string
	ReturnTo   string
}

// Decide applies the admission table for protected routes.
func Decide(in Input) Decision {
	if in.SessionLoading {
		return Decision{Action: Wait}
	}

	if in.User == nil {
		return Decision{
			Action:     RedirectLogin,
			RedirectTo: LoginRoute,
			ReturnTo:   in.Location,
		}
	}

	if len(in.RequiredRoles) > 0 && !slices.Contains(in.RequiredRoles, in.Role) {
		return Decision{
			Action:     RedirectHome,
			RedirectTo: HomeRoute,
		}
	}

	return Decision{Action: Admit}
}

// DecidePublic gates public routes on the site's operational status.
// Operators are always admitted so they can preview a site that is not live.
func DecidePublic(status model.SiteStatus, operator bool) Decision {
	if operator {
		return Decision{Action: Admit}
	}

	switch status {
	case model.SiteStatusMaintenance:
		return Decision{Action: RedirectHolding, RedirectTo: MaintenanceRoute}
	case model.SiteStatusComingSoon:
		return Decision{Action: RedirectHolding, RedirectTo: ComingSoonRoute}
	}

	return Decision{Action: Admit}
}
