// Package stdlib registers every 한글스크립트 built-in function that isn't
// VM-core machinery (internal/vm/builtins.go keeps __new__/__try__/
// __throw__/길이 since the compiler depends on them existing unconditionally).
// Grounded on the teacher's internal/stdlib package shape: one
// Register<Concern>Functions(v *vm.VM) function per file, each a flat list
// of v.RegisterBuiltin calls.
package stdlib

import (
	"os"

	"hangeulscript/internal/vm"
)

// Register wires every built-in SPEC_FULL.md §6 names into v, plus the
// built-in path variables resolved once at VM construction.
func Register(v *vm.VM) {
	registerCoreFunctions(v)
	registerStringFunctions(v)
	registerMathFunctions(v)
	registerFilesystemFunctions(v)
	registerDatabaseFunctions(v)
	registerNetworkFunctions(v)
	registerBuiltinVars(v)
}

func registerBuiltinVars(v *vm.VM) {
	wd, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	v.RegisterGlobal("경로", vm.Str(os.Args[0]))
	v.RegisterGlobal("절대경로", vm.Str(wd))
	v.RegisterGlobal("상대경로", vm.Str("."))
	v.RegisterGlobal("작업디렉토리", vm.Str(wd))
	v.RegisterGlobal("홈디렉토리", vm.Str(home))
	v.RegisterGlobal("임시디렉토리", vm.Str(os.TempDir()))
}
