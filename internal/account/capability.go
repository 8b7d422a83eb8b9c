package account

// Capability is a named permission derived from Role. Authorization checks
// go through this table rather than comparing roles inline, so the role
// model can change without touching call sites.
type Capability string

const (
	CapModerateAchievements Capability = "achievements.moderate"
	CapViewReports          Capability = "reports.view"
	CapManageUsers          Capability = "users.manage"
	CapDeleteUsers          Capability = "users.delete"
	CapChangeRole           Capability = "users.change_role"
)

var roleCapabilities = map[Role][]Capability{
	RoleSuperAdmin: {
		CapModerateAchievements,
		CapViewReports,
		CapManageUsers,
		CapDeleteUsers,
		CapChangeRole,
	},
	RoleDirector: {
		CapModerateAchievements,
		CapViewReports,
		CapManageUsers,
	},
	RoleMethodist: {
		CapModerateAchievements,
	},
	RoleTeacher: nil,
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set granted by the role.
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// IsModerator reports whether the account may approve or reject achievements.
func (a *Account) IsModerator() bool {
	return a.Role.Can(CapModerateAchievements)
}
