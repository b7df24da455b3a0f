package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/epic-events-crm/internal"
)

// Effect is the outcome tag of an authorization check.
type Effect int

const (
	EffectDeny Effect = iota
	EffectAllow
)

func (e Effect) String() string {
	if e == EffectAllow {
		return "allow"
	}
	return "deny"
}

// Decision is returned by every guard. Denials carry the permission that was
// missing or the ownership rule that failed.
type Decision struct {
	Effect     Effect
	Permission Permission
	Reason     string
}

func (d Decision) Allowed() bool {
	return d.Effect == EffectAllow
}

// Err is nil when allowed, a PermissionDenied AppError otherwise.
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	return internal.NewPermissionDeniedError(string(d.Permission), d.Reason)
}

// Scope limits a listing to the rows an actor may see.
type Scope struct {
	All          bool
	CommercialID int64
	SupportID    int64
}

type ContractAction string

const (
	ContractSign   ContractAction = "sign"
	ContractUpdate ContractAction = "update"
	ContractPay    ContractAction = "pay"
	ContractDelete ContractAction = "delete"
)

type EventAction string

const (
	EventView   EventAction = "view"
	EventUpdate EventAction = "update"
	EventDelete EventAction = "delete"
)

type Report string

const (
	ReportContracts Report = "contracts"
	ReportEvents    Report = "events"
	ReportUsers     Report = "users"
)

// HasPermission reports whether the actor's role grants p. It says nothing
// about ownership.
func HasPermission(actor *Actor, p Permission) bool {
	if actor == nil {
		return false
	}
	return PermissionsFor(actor.Role).Has(p)
}

func hasAny(actor *Actor, ps ...Permission) bool {
	if actor == nil {
		return false
	}
	return PermissionsFor(actor.Role).HasAny(ps...)
}

// Policy combines catalog lookups with ownership predicates. Callers must
// pass ownership attributes read from freshly loaded entities.
type Policy struct {
	logger *slog.Logger
}

func NewPolicy(logger *slog.Logger) *Policy {
	return &Policy{logger: logger}
}

func (p *Policy) allow(perm Permission) Decision {
	authorizationDecisions.WithLabelValues(string(perm), EffectAllow.String()).Inc()
	return Decision{Effect: EffectAllow, Permission: perm}
}

func (p *Policy) deny(ctx context.Context, actor *Actor, perm Permission, reason string) Decision {
	authorizationDecisions.WithLabelValues(string(perm), EffectDeny.String()).Inc()
	args := []any{"required_permission", perm, "reason", reason}
	if actor != nil {
		args = append(args, "user_id", actor.ID, "role", actor.Role)
	}
	p.logger.WarnContext(ctx, "access denied", args...)
	return Decision{Effect: EffectDeny, Permission: perm, Reason: reason}
}

func (p *Policy) ViewClients(ctx context.Context, actor *Actor) Decision {
	if hasAny(actor, PermViewClients, PermViewAll) {
		return p.allow(PermViewClients)
	}
	return p.deny(ctx, actor, PermViewClients, "role cannot view clients")
}

func (p *Policy) CreateClient(ctx context.Context, actor *Actor) Decision {
	if hasAny(actor, PermManageClients, PermManageAll) {
		return p.allow(PermManageClients)
	}
	return p.deny(ctx, actor, PermManageClients, "role cannot create clients")
}

// ModifyClient covers update and delete of an existing client.
func (p *Policy) ModifyClient(ctx context.Context, actor *Actor, commercialID int64) Decision {
	switch {
	case HasPermission(actor, PermManageAll):
		return p.allow(PermManageAll)
	case HasPermission(actor, PermManageClients) && actor.Is(RoleSales):
		if commercialID != actor.ID {
			return p.deny(ctx, actor, PermManageClients, "client belongs to another salesperson")
		}
		return p.allow(PermManageClients)
	}
	return p.deny(ctx, actor, PermManageClients, "role cannot modify clients")
}

// ReassignClient moves a client to another salesperson.
func (p *Policy) ReassignClient(ctx context.Context, actor *Actor) Decision {
	if HasPermission(actor, PermManageAll) {
		return p.allow(PermManageAll)
	}
	return p.deny(ctx, actor, PermManageAll, "only management can reassign clients")
}

func (p *Policy) ViewContracts(ctx context.Context, actor *Actor) Decision {
	if hasAny(actor, PermViewContracts, PermViewAll) {
		return p.allow(PermViewContracts)
	}
	return p.deny(ctx, actor, PermViewContracts, "role cannot view contracts")
}

// CreateContract needs the owner of the client the contract is drawn for.
func (p *Policy) CreateContract(ctx context.Context, actor *Actor, clientCommercialID int64) Decision {
	switch {
	case hasAny(actor, PermManageContracts, PermManageAll):
		return p.allow(PermManageContracts)
	case HasPermission(actor, PermCreateContracts):
		if clientCommercialID != actor.ID {
			return p.deny(ctx, actor, PermCreateContracts, "client belongs to another salesperson")
		}
		return p.allow(PermCreateContracts)
	}
	return p.deny(ctx, actor, PermCreateContracts, "role cannot create contracts")
}

func ownContractPermission(action ContractAction) Permission {
	switch action {
	case ContractSign:
		return PermSignOwnContracts
	case ContractUpdate:
		return PermUpdateOwnContracts
	default:
		return PermManageOwnContracts
	}
}

func (p *Policy) ModifyContract(ctx context.Context, actor *Actor, action ContractAction, commercialID int64) Decision {
	if hasAny(actor, PermManageContracts, PermManageAll) {
		return p.allow(PermManageContracts)
	}
	perm := ownContractPermission(action)
	if !HasPermission(actor, perm) {
		return p.deny(ctx, actor, perm, "role cannot "+string(action)+" contracts")
	}
	if commercialID != actor.ID {
		return p.deny(ctx, actor, perm, "contract belongs to another salesperson")
	}
	return p.allow(perm)
}

// CreateEvent checks only who may create; contract consistency is a
// validation concern handled by the caller afterwards.
func (p *Policy) CreateEvent(ctx context.Context, actor *Actor, clientCommercialID int64) Decision {
	switch {
	case actor.Is(RoleManagement) && HasPermission(actor, PermManageEvents):
		return p.allow(PermManageEvents)
	case actor.Is(RoleSales) && HasPermission(actor, PermCreateOwnEvents):
		if clientCommercialID != actor.ID {
			return p.deny(ctx, actor, PermCreateOwnEvents, "client belongs to another salesperson")
		}
		return p.allow(PermCreateOwnEvents)
	}
	return p.deny(ctx, actor, PermCreateOwnEvents, "role cannot create events")
}

// AccessEvent covers view, update and delete of one event. supportID is nil
// when nobody is assigned.
func (p *Policy) AccessEvent(ctx context.Context, actor *Actor, action EventAction, supportID *int64) Decision {
	switch {
	case actor.Is(RoleManagement) && hasAny(actor, PermManageEvents, PermViewAll):
		return p.allow(PermManageEvents)
	case actor.Is(RoleSupport) && HasPermission(actor, PermManageOwnEvents):
		if supportID == nil || *supportID != actor.ID {
			return p.deny(ctx, actor, PermManageOwnEvents, "event is not assigned to this support agent")
		}
		return p.allow(PermManageOwnEvents)
	}
	return p.deny(ctx, actor, PermManageEvents, "role cannot "+string(action)+" events")
}

// ViewEvent extends AccessEvent so a salesperson may read events of the
// clients they own.
func (p *Policy) ViewEvent(ctx context.Context, actor *Actor, supportID *int64, clientCommercialID int64) Decision {
	if actor.Is(RoleSales) && HasPermission(actor, PermViewOwnEvents) {
		if clientCommercialID != actor.ID {
			return p.deny(ctx, actor, PermViewOwnEvents, "event belongs to another salesperson's client")
		}
		return p.allow(PermViewOwnEvents)
	}
	return p.AccessEvent(ctx, actor, EventView, supportID)
}

// EventScope decides which events an actor may list.
func (p *Policy) EventScope(ctx context.Context, actor *Actor) (Scope, Decision) {
	switch {
	case hasAny(actor, PermViewAll):
		return Scope{All: true}, p.allow(PermViewAll)
	case actor.Is(RoleSupport) && HasPermission(actor, PermViewEvents):
		return Scope{SupportID: actor.ID}, p.allow(PermViewEvents)
	case actor.Is(RoleSales) && HasPermission(actor, PermViewOwnEvents):
		return Scope{CommercialID: actor.ID}, p.allow(PermViewOwnEvents)
	}
	return Scope{}, p.deny(ctx, actor, PermViewEvents, "role cannot view events")
}

func (p *Policy) AssignSupport(ctx context.Context, actor *Actor) Decision {
	if actor.Is(RoleManagement) && HasPermission(actor, PermManageEvents) {
		return p.allow(PermManageEvents)
	}
	return p.deny(ctx, actor, PermManageEvents, "only management can assign support")
}

func (p *Policy) ManageUsers(ctx context.Context, actor *Actor) Decision {
	if HasPermission(actor, PermManageUsers) {
		return p.allow(PermManageUsers)
	}
	return p.deny(ctx, actor, PermManageUsers, "only management can manage users")
}

// ChangeRole guards role reassignment. Nobody may change their own role.
func (p *Policy) ChangeRole(ctx context.Context, actor *Actor, targetID int64) Decision {
	if !HasPermission(actor, PermManagePermissions) {
		return p.deny(ctx, actor, PermManagePermissions, "only management can reassign roles")
	}
	if actor.ID == targetID {
		return p.deny(ctx, actor, PermManagePermissions, "cannot reassign own role")
	}
	return p.allow(PermManagePermissions)
}

// ReportScope decides which rows feed a summary.
func (p *Policy) ReportScope(ctx context.Context, actor *Actor, report Report) (Scope, Decision) {
	if HasPermission(actor, PermViewReports) {
		return Scope{All: true}, p.allow(PermViewReports)
	}
	switch {
	case report == ReportContracts && actor.Is(RoleSales) && HasPermission(actor, PermViewContracts):
		return Scope{CommercialID: actor.ID}, p.allow(PermViewContracts)
	case report == ReportEvents && actor.Is(RoleSupport) && HasPermission(actor, PermViewEvents):
		return Scope{SupportID: actor.ID}, p.allow(PermViewEvents)
	}
	return Scope{}, p.deny(ctx, actor, PermViewReports, "role cannot view "+string(report)+" report")
}

func (p *Policy) ViewAudit(ctx context.Context, actor *Actor) Decision {
	if HasPermission(actor, PermViewReports) {
		return p.allow(PermViewReports)
	}
	return p.deny(ctx, actor, PermViewReports, "only management can read the audit log")
}
