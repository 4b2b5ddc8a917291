package enums

import "fmt"

// UserRole gates privileged operations.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleOperator   UserRole = "operator"
	UserRoleAccountant UserRole = "accountant"
	UserRoleCustomer   UserRole = "customer"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleSupervisor,
	UserRoleOperator,
	UserRoleAccountant,
	UserRoleCustomer,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanSkipGrinding reports whether the role may jump polishing to toughening.
func (r UserRole) CanSkipGrinding() bool {
	return r == UserRoleSupervisor || r == UserRoleAdmin
}

func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
