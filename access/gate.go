// access/gate.go

package access

import (
	"context"
	"fmt"
	"time"

	"github.com/retailhq/console/model"
)

// State is the terminal outcome of one gate evaluation.
type State string

const (
	StateLoading            State = "loading"
	StateUnauthenticated    State = "unauthenticated"
	StateGranted            State = "granted"
	StateDeniedByRole       State = "denied_by_role"
	StateDeniedByPermission State = "denied_by_permission"
	StateDeniedByFeature    State = "denied_by_feature"
	StateDeniedByBilling    State = "denied_by_billing"
)

// Decision is what the gate hands back. Denials are normal results, not
// errors; Reason names the unmet condition for the default denial notice.
type Decision struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

func (d Decision) Granted() bool {
	return d.State == StateGranted
}

// Snapshot is the session/feature state read from the Provider at
// evaluation time.
type Snapshot struct {
	Loading       bool
	Authenticated bool
	User          model.User
	Features      model.FeatureMap
	Billing       model.Billing
}

// Provider exposes the live session and store feature state. The gate only
// reads it.
type Provider interface {
	Snapshot(ctx context.Context) Snapshot
}

// Contract describes what a protected subtree requires. Empty fields are
// not checked.
type Contract struct {
	AllowedRoles        []model.Role `json:"allowed_roles,omitempty"`
	RequiredPermissions []string     `json:"required_permissions,omitempty"`
	Feature             string       `json:"feature,omitempty"`
}

// Gate evaluates contracts against the provider's current snapshot. Every
// evaluation recomputes from live state; nothing is cached here.
type Gate struct {
	provider Provider
	now      func() time.Time
}

func NewGate(provider Provider) *Gate {
	return &Gate{provider: provider, now: time.Now}
}

// Evaluate runs the checks in fixed order; the first failing check wins
// and short-circuits the rest:
// loading, authentication, role, permissions, billing, feature.
func (g *Gate) Evaluate(ctx context.Context, contract Contract) Decision {
	return g.evaluate(g.provider.Snapshot(ctx), contract)
}

func (g *Gate) evaluate(snap Snapshot, contract Contract) Decision {
	if snap.Loading {
		return Decision{State: StateLoading}
	}
	if !snap.Authenticated {
		return Decision{State: StateUnauthenticated, Reason: "not signed in"}
	}

	if len(contract.AllowedRoles) > 0 && !roleAllowed(snap.User.Role, contract.AllowedRoles) {
		return Decision{
			State:  StateDeniedByRole,
			Reason: fmt.Sprintf("role %q is not permitted here", snap.User.Role),
		}
	}

	for _, required := range contract.RequiredPermissions {
		if !snap.User.HasPermission(required) {
			return Decision{
				State:  StateDeniedByPermission,
				Reason: fmt.Sprintf("missing permission %q", required),
			}
		}
	}

	if contract.Feature != "" {
		// Billing is checked before the flag itself: an expired account is
		// denied even when the feature is switched on.
		if !billingAllows(snap.Billing, g.now()) {
			return Decision{
				State:  StateDeniedByBilling,
				Reason: "store billing is not active",
			}
		}
		if !ToBoolFlag(snap.Features[contract.Feature]) {
			return Decision{
				State:  StateDeniedByFeature,
				Reason: fmt.Sprintf("feature %q is not enabled for this store", contract.Feature),
			}
		}
	}

	return Decision{State: StateGranted}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func billingAllows(b model.Billing, now time.Time) bool {
	if b.Status != model.BillingActive && b.Status != model.BillingTrial {
		return false
	}
	if !b.PaidUntil.IsZero() && now.After(b.PaidUntil) {
		return false
	}
	return true
}
