package rbac

// Operation is an atomic capability tag checked before a handler runs.
type Operation string

const (
	OpProductsRead   Operation = "products.read"
	OpProductsWrite  Operation = "products.write"
	OpSuppliersRead  Operation = "suppliers.read"
	OpSuppliersWrite Operation = "suppliers.write"
	OpSuppliersLink  Operation = "suppliers.link"
	OpHistoryRead    Operation = "history.read"
	OpAdminAccess    Operation = "admin.access"
)

// capabilities is the role-to-operation policy map. Authorization decisions
// are pure lookups into this table; the supplier role's write capability is
// additionally restricted to owned records at the supplier service.
var capabilities = map[Role]map[Operation]struct{}{
	RoleAdmin: {
		OpProductsRead:   {},
		OpProductsWrite:  {},
		OpSuppliersRead:  {},
		OpSuppliersWrite: {},
		OpSuppliersLink:  {},
		OpHistoryRead:    {},
		OpAdminAccess:    {},
	},
	RoleSupplier: {
		OpProductsRead:   {},
		OpSuppliersRead:  {},
		OpSuppliersWrite: {},
		OpHistoryRead:    {},
	},
	RoleGeneral: {
		OpProductsRead:  {},
		OpSuppliersRead: {},
		OpHistoryRead:   {},
	},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role Role, op Operation) bool {
	grants, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = grants[op]
	return ok
}

// Capabilities returns the operation tags granted to a role.
func Capabilities(role Role) []Operation {
	grants, ok := capabilities[role]
	if !ok {
		return nil
	}
	ops := make([]Operation, 0, len(grants))
	for op := range grants {
		ops = append(ops, op)
	}
	return ops
}
