package policy

type actorKind int

const (
	kindAnonymous actorKind = iota
	kindAuthenticated
)

// Actor is either anonymous or an authenticated user with a role.
// The zero value is anonymous.
type Actor struct {
	kind      actorKind
	userID    string
	username  string
	role      Role
	superuser bool
}

func Anonymous() Actor {
	return Actor{kind: kindAnonymous}
}

func Authenticated(userID, username string, role Role, superuser bool) Actor {
	return Actor{
		kind:      kindAuthenticated,
		userID:    userID,
		username:  username,
		role:      role,
		superuser: superuser,
	}
}

func (a Actor) IsAuthenticated() bool { return a.kind == kindAuthenticated }

func (a Actor) UserID() string { return a.userID }

func (a Actor) Username() string { return a.username }

func (a Actor) Role() Role { return a.role }

func (a Actor) IsSuperuser() bool { return a.kind == kindAuthenticated && a.superuser }

// HasRole reports whether the actor's role is a member of roles.
func (a Actor) HasRole(roles ...Role) bool {
	if a.kind != kindAuthenticated {
		return false
	}
	for _, r := range roles {
		if a.role == r {
			return true
		}
	}
	return false
}

// IsAdmin is true for the admin role and for superusers of any role.
func (a Actor) IsAdmin() bool {
	return a.IsSuperuser() || a.HasRole(RoleAdmin)
}

// IsStaff covers everyone allowed to edit other users' reviews and comments.
func (a Actor) IsStaff() bool {
	return a.IsSuperuser() || a.HasRole(RoleAdmin, RoleModerator)
}

func (a Actor) String() string {
	if a.kind != kindAuthenticated {
		return "anonymous"
	}
	return a.username + "(" + string(a.role) + ")"
}
