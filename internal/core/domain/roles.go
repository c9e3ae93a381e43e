package domain

// Role is the single category a principal belongs to
type Role string

// Partner roles (business-facing, may self-register)
const (
	RoleDriver     Role = "driver"
	RoleBusVendor  Role = "bus-vendor"
	RoleMechanic   Role = "mechanic"
	RoleCleaner    Role = "cleaner"
	RoleRestaurant Role = "restaurant"
	RoleParcel     Role = "parcel"
	RoleDryCleaner Role = "dry-cleaner"
)

// Staff roles (internal operators, created by an admin)
const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleBranchHead Role = "branch-head"
	RoleSales      Role = "sales"
)

// Category groups roles into partner and staff
type Category string

const (
	CategoryPartner Category = "partner"
	CategoryStaff   Category = "staff"
)

var roleCategories = map[Role]Category{
	RoleDriver:     CategoryPartner,
	RoleBusVendor:  CategoryPartner,
	RoleMechanic:   CategoryPartner,
	RoleCleaner:    CategoryPartner,
	RoleRestaurant: CategoryPartner,
	RoleParcel:     CategoryPartner,
	RoleDryCleaner: CategoryPartner,
	RoleAdmin:      CategoryStaff,
	RoleManager:    CategoryStaff,
	RoleAccountant: CategoryStaff,
	RoleBranchHead: CategoryStaff,
	RoleSales:      CategoryStaff,
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	_, ok := roleCategories[r]
	return ok
}

// Category returns the role's category, or "" for unknown roles
func (r Role) Category() Category {
	return roleCategories[r]
}

// IsPartner returns true for business-facing roles
func (r Role) IsPartner() bool {
	return r.Category() == CategoryPartner
}

// IsStaff returns true for internal operator roles
func (r Role) IsStaff() bool {
	return r.Category() == CategoryStaff
}

// RolesIn returns every role of the given category
func RolesIn(c Category) []Role {
	var roles []Role
	for r, cat := range roleCategories {
		if cat == c {
			roles = append(roles, r)
		}
	}
	return roles
}

// Principal is the authenticated caller. It never carries credential secrets.
type Principal struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Capability is a named authorization level
type Capability string

const (
	AdminOnly    Capability = "AdminOnly"
	StaffOrAdmin Capability = "StaffOrAdmin"
)

var capabilityRoles = map[Capability]map[Role]bool{
	AdminOnly: {
		RoleAdmin: true,
	},
	StaffOrAdmin: {
		RoleAdmin:      true,
		RoleManager:    true,
		RoleAccountant: true,
		RoleBranchHead: true,
		RoleSales:      true,
	},
}

// Authorize checks the principal's role against the capability.
// It looks at nothing but the role.
func Authorize(p *Principal, c Capability) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if capabilityRoles[c][p.Role] {
		return nil
	}
	return ErrForbidden
}
