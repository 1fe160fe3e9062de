// String built-ins. Grounded on the teacher's own ad hoc strings.* call
// sites scattered through its stdlib (Split/Contains/Replace/ToUpper/
// ToLower) but gathered here behind the five Korean names SPEC_FULL.md §6
// names — stdlib `strings` is the whole implementation, justified since no
// pack library specializes in generic string transforms beyond it.
package stdlib

import (
	"strings"

	"hangeulscript/internal/errors"
	"hangeulscript/internal/vm"
)

func registerStringFunctions(v *vm.VM) {
	v.RegisterBuiltin("분리", builtinSplit)
	v.RegisterBuiltin("찾기", builtinFind)
	v.RegisterBuiltin("바꾸기", builtinReplace)
	v.RegisterBuiltin("대문자", builtinUpper)
	v.RegisterBuiltin("소문자", builtinLower)
}

func stringArg(v *vm.VM, args []vm.Value, i int, who string) (string, error) {
	if i >= len(args) || args[i].Kind != vm.KindString {
		return "", v.RuntimeError(errors.TypeMismatch, "%s의 %d번째 인자는 문자열이어야 합니다", who, i+1)
	}
	return args[i].Str, nil
}

// 분리(s, sep) — splits s on sep into a string Array.
func builtinSplit(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "분리는 인자 2개가 필요합니다")
	}
	s, err := stringArg(v, args, 0, "분리")
	if err != nil {
		return vm.Null, err
	}
	sep, err := stringArg(v, args, 1, "분리")
	if err != nil {
		return vm.Null, err
	}
	parts := strings.Split(s, sep)
	items := make([]vm.Value, len(parts))
	for i, p := range parts {
		items[i] = vm.Str(p)
	}
	return vm.NewArray(items), nil
}

// 찾기(s, needle) — index of the first occurrence, or -1.
func builtinFind(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "찾기는 인자 2개가 필요합니다")
	}
	s, err := stringArg(v, args, 0, "찾기")
	if err != nil {
		return vm.Null, err
	}
	needle, err := stringArg(v, args, 1, "찾기")
	if err != nil {
		return vm.Null, err
	}
	return vm.Int(int64(strings.Index(s, needle))), nil
}

// 바꾸기(s, old, new) — replaces every occurrence of old with new.
func builtinReplace(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 3 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "바꾸기는 인자 3개가 필요합니다")
	}
	s, err := stringArg(v, args, 0, "바꾸기")
	if err != nil {
		return vm.Null, err
	}
	old, err := stringArg(v, args, 1, "바꾸기")
	if err != nil {
		return vm.Null, err
	}
	newS, err := stringArg(v, args, 2, "바꾸기")
	if err != nil {
		return vm.Null, err
	}
	return vm.Str(strings.ReplaceAll(s, old, newS)), nil
}

func builtinUpper(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "대문자는 인자 1개가 필요합니다")
	}
	s, err := stringArg(v, args, 0, "대문자")
	if err != nil {
		return vm.Null, err
	}
	return vm.Str(strings.ToUpper(s)), nil
}

func builtinLower(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "소문자는 인자 1개가 필요합니다")
	}
	s, err := stringArg(v, args, 0, "소문자")
	if err != nil {
		return vm.Null, err
	}
	return vm.Str(strings.ToLower(s)), nil
}
