// Package authz implements tenant isolation, role/permission checks and
// subscription feature gating.
package authz

// RoleType distinguishes platform-wide roles from tenant-scoped ones.
type RoleType string

const (
	RoleTypeGlobal RoleType = "global"
	RoleTypeTenant RoleType = "tenant"
)

// Role codes known to the platform.
const (
	RoleSuperAdmin  = "Super-Admin"
	RoleSupport     = "Support"
	RoleClientAdmin = "Client-Admin"
	RoleClientStaff = "Client-Staff"
	RoleCashier     = "Cashier"
)

// Permission slugs consumed by handlers.
const (
	PermManagePOS          = "manage_pos"
	PermManageAppointments = "manage_appointments"
	PermManageEmployees    = "manage_employees"
	PermManageSettings     = "manage_settings"
	PermManageBilling      = "manage_billing"
	PermViewReports        = "view_reports"
	PermViewTenants        = "view_tenants"
)

// RoleDef describes one entry of the static role catalogue.
type RoleDef struct {
	Code        string
	Type        RoleType
	Permissions []string
	// EmployeeSeat marks roles that consume an employee seat for plan
	// limit purposes.
	EmployeeSeat bool
}

// Roles is the hardcoded role catalogue.
var Roles = map[string]RoleDef{
	RoleSuperAdmin: {
		Code: RoleSuperAdmin,
		Type: RoleTypeGlobal,
		// superusers bypass permission checks entirely; the empty set is
		// never consulted
	},
	RoleSupport: {
		Code:        RoleSupport,
		Type:        RoleTypeGlobal,
		Permissions: []string{PermViewTenants, PermViewReports},
	},
	RoleClientAdmin: {
		Code: RoleClientAdmin,
		Type: RoleTypeTenant,
		Permissions: []string{
			PermManagePOS,
			PermManageAppointments,
			PermManageEmployees,
			PermManageSettings,
			PermManageBilling,
			PermViewReports,
		},
	},
	RoleClientStaff: {
		Code:         RoleClientStaff,
		Type:         RoleTypeTenant,
		Permissions:  []string{PermManageAppointments, PermManagePOS},
		EmployeeSeat: true,
	},
	RoleCashier: {
		Code:        RoleCashier,
		Type:        RoleTypeTenant,
		Permissions: []string{PermManagePOS},
	},
}

// PermissionsFor returns the permission slugs granted by a role code. Unknown
// codes grant nothing.
func PermissionsFor(code string) []string {
	def, ok := Roles[code]
	if !ok {
		return nil
	}
	return def.Permissions
}

// IsEmployeeRole reports whether the role code marks an employee seat.
func IsEmployeeRole(code string) bool {
	def, ok := Roles[code]
	return ok && def.EmployeeSeat
}

// ValidRole reports whether the role code is in the catalogue.
func ValidRole(code string) bool {
	_, ok := Roles[code]
	return ok
}
