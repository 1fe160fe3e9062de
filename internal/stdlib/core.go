package stdlib

import (
	"hangeulscript/internal/errors"
	"hangeulscript/internal/vm"
)

func registerCoreFunctions(v *vm.VM) {
	v.RegisterBuiltin("타입", builtinTypeOf)
}

// 타입(v) — spec.md §4.5's type-name table, implemented once on Value
// itself (vm.Value.TypeName) so every caller (this built-in, future
// diagnostics) agrees on the same Korean type names.
func builtinTypeOf(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "타입은 인자 1개가 필요합니다")
	}
	return vm.Str(args[0].TypeName()), nil
}
