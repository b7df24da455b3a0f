package auth

import "sort"

// Permission is an opaque capability tag. Tags containing "own" are
// ownership scoped: holding the tag is necessary but the caller must also
// prove the actor owns the target entity.
type Permission string

const (
	PermViewClients        Permission = "view_clients"
	PermManageClients      Permission = "manage_clients"
	PermViewContracts      Permission = "view_contracts"
	PermCreateContracts    Permission = "create_contracts"
	PermSignOwnContracts   Permission = "sign_own_contracts"
	PermUpdateOwnContracts Permission = "update_own_contracts"
	PermManageOwnContracts Permission = "manage_own_contracts"
	PermViewOwnEvents      Permission = "view_own_events"
	PermCreateOwnEvents    Permission = "create_own_events"
	PermViewEvents         Permission = "view_events"
	PermManageEvents       Permission = "manage_events"
	PermManageOwnEvents    Permission = "manage_own_events"
	PermViewAll            Permission = "view_all"
	PermManageAll          Permission = "manage_all"
	PermManageUsers        Permission = "manage_users"
	PermManageContracts    Permission = "manage_contracts"
	PermViewReports        Permission = "view_reports"
	PermManagePermissions  Permission = "manage_permissions"
)

// PermissionSet is a read-only set of tags.
type PermissionSet struct {
	tags map[Permission]struct{}
}

func newPermissionSet(tags ...Permission) PermissionSet {
	m := make(map[Permission]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return PermissionSet{tags: m}
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s.tags[p]
	return ok
}

func (s PermissionSet) HasAny(ps ...Permission) bool {
	for _, p := range ps {
		if s.Has(p) {
			return true
		}
	}
	return false
}

func (s PermissionSet) Len() int {
	return len(s.tags)
}

// Slice returns the tags sorted, as a fresh slice.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// catalog is built once at init and never written afterwards. PermissionSet
// exposes no mutators, so handing out values is safe.
var catalog = map[Role]PermissionSet{
	RoleSales: newPermissionSet(
		PermViewClients,
		PermManageClients,
		PermViewContracts,
		PermCreateContracts,
		PermSignOwnContracts,
		PermUpdateOwnContracts,
		PermManageOwnContracts,
		PermViewOwnEvents,
		PermCreateOwnEvents,
	),
	RoleSupport: newPermissionSet(
		PermViewEvents,
		PermManageEvents,
		PermManageOwnEvents,
		PermViewClients,
		PermViewContracts,
	),
	RoleManagement: newPermissionSet(
		PermViewAll,
		PermManageAll,
		PermManageUsers,
		PermManageContracts,
		PermManageEvents,
		PermViewReports,
		PermManagePermissions,
	),
}

// PermissionsFor returns the tags granted to role. Unknown roles get the
// empty set.
func PermissionsFor(role Role) PermissionSet {
	if set, ok := catalog[role]; ok {
		return set
	}
	return PermissionSet{}
}
