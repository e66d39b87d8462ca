package authz

// Capability names one action a caller may perform. Handlers guard on
// capabilities, never on role strings.
type Capability string

const (
	CapFinanceRead  Capability = "finance.read"
	CapLedgerRead   Capability = "ledger.read"
	CapLedgerWrite  Capability = "ledger.write"
	CapPayrollRead  Capability = "payroll.read"
	CapPayrollWrite Capability = "payroll.write"
	CapCoaManage    Capability = "coa.manage"
)

// Role is the stored role name attached to a user row.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleFinance Role = "finance"
	RoleHR      Role = "hr"
	RoleStaff   Role = "staff"
)

// CapabilitySet is the resolved grant for one caller.
type CapabilitySet map[Capability]struct{}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(cap Capability) bool {
	_, ok := s[cap]
	return ok
}

// Policy maps roles to capability grants. It is configuration data so a new
// role or grant is a data change, not a handler change.
type Policy map[Role][]Capability

// DefaultPolicy returns the standard grant table.
func DefaultPolicy() Policy {
	return Policy{
		RoleOwner: {
			CapFinanceRead, CapLedgerRead, CapLedgerWrite,
			CapPayrollRead, CapPayrollWrite, CapCoaManage,
		},
		RoleFinance: {
			CapFinanceRead, CapLedgerRead, CapLedgerWrite, CapCoaManage,
		},
		RoleHR: {
			CapPayrollRead, CapPayrollWrite,
		},
		RoleStaff: {
			CapLedgerRead,
		},
	}
}

// Resolve expands a role into its capability set. Unknown roles resolve to
// the empty set.
func (p Policy) Resolve(role Role) CapabilitySet {
	set := make(CapabilitySet)
	for _, cap := range p[role] {
		set[cap] = struct{}{}
	}
	return set
}
