package authz

// Role is a staff role with a strict total ordering. Higher ranks
// inherit everything below them.
type Role string

const (
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleRank = map[Role]int{
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Rank returns the role's position in the ordering, 0 for unknown
// roles so that an unrecognized role never satisfies any requirement.
func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasRole reports whether a held role satisfies a required one:
// moderator(1) < admin(2) < super_admin(3).
func HasRole(held, required Role) bool {
	heldRank := held.Rank()
	requiredRank := required.Rank()
	if heldRank == 0 || requiredRank == 0 {
		return false
	}
	return heldRank >= requiredRank
}
