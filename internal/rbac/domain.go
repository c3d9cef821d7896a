package rbac

import "time"

// Role is one of the fixed identity categories. The set is not extensible
// at runtime; new roles are a schema change, not a data change.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSupervisor  Role = "supervisor"
	RoleCashier     Role = "cashier"
	RoleUnderwriter Role = "underwriter"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleSupervisor, RoleCashier, RoleUnderwriter}
}

// ValidRole reports whether r names a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleCashier, RoleUnderwriter:
		return true
	}
	return false
}

// Capabilities gating privileged operations.
const (
	CapDeletionRequest   = "deletion.request"
	CapDeletionApprove   = "deletion.approve"
	CapDeletionPurge     = "deletion.purge"
	CapPermissionsManage = "permissions.manage"
	CapPermissionsView   = "permissions.view"
	CapAuditView         = "audit.view"
	CapPaymentsReceive   = "payments.receive"
	CapPoliciesEdit      = "policies.edit"
	CapCustomersEdit     = "customers.edit"
)

// DefaultCapabilities returns the compiled-in role grants used to seed
// role_permissions and as the fallback when a stored row is missing.
func DefaultCapabilities() map[Role][]string {
	return map[Role][]string{
		RoleAdmin: {
			CapDeletionRequest,
			CapDeletionApprove,
			CapDeletionPurge,
			CapPermissionsManage,
			CapPermissionsView,
			CapAuditView,
			CapPaymentsReceive,
			CapPoliciesEdit,
			CapCustomersEdit,
		},
		RoleSupervisor: {
			CapDeletionRequest,
			CapDeletionApprove,
			CapPermissionsView,
			CapAuditView,
			CapPoliciesEdit,
			CapCustomersEdit,
		},
		RoleCashier: {
			CapPaymentsReceive,
		},
		RoleUnderwriter: {
			CapDeletionRequest,
			CapPoliciesEdit,
			CapCustomersEdit,
		},
	}
}

// RolePermission is the stored capability set for one role.
type RolePermission struct {
	Role         Role
	Capabilities []string
	UpdatedAt    time.Time
}

// Actor describes the authenticated caller of a guarded operation.
type Actor struct {
	UserID int64
	Role   Role
}
