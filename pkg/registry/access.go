package registry

import "github.com/starlane-io/starlane/pkg/wave"

// Access is the boolean-permission result of an access query (spec
// §4.5/§7): four independent grants plus a human reason when any of
// them is false.
type Access struct {
	Read         bool
	Write        bool
	Execute      bool
	Grant        bool
	DeniedReason string
}

// FullAccess is granted to the HyperUser agent and to any point
// accessing itself.
var FullAccess = Access{Read: true, Write: true, Execute: true, Grant: true}

// Allows reports whether Access grants the permission a method class
// requires, per spec §7's "Field layer rejects waves whose method
// class requires a permission the agent lacks" rule.
func (a Access) Allows(class wave.MethodClass) bool {
	switch class {
	case wave.MethodHyp:
		return a.Grant
	case wave.MethodCmd:
		return a.Execute
	case wave.MethodHttp, wave.MethodExt:
		return a.Read
	default:
		return false
	}
}
