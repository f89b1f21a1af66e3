package enums

import "fmt"

// UserRole is the directory-wide permission tier of a principal.
type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperadmin UserRole = "superadmin"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleAdmin,
	UserRoleSuperadmin,
}

var userRoleRank = map[UserRole]int{
	UserRoleUser:       1,
	UserRoleAdmin:      2,
	UserRoleSuperadmin: 3,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether r grants every permission of min.
func (r UserRole) AtLeast(min UserRole) bool {
	have, ok := userRoleRank[r]
	if !ok {
		return false
	}
	return have >= userRoleRank[min]
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
