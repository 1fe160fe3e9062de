// Numeric built-ins over math, grounded on the teacher's own numeric
// built-ins (abs/round/ceil/floor wrappers over the same package) — no
// pack library wraps elementary math better than stdlib already does.
package stdlib

import (
	"math"
	"strconv"

	"hangeulscript/internal/errors"
	"hangeulscript/internal/vm"
)

func registerMathFunctions(v *vm.VM) {
	v.RegisterBuiltin("정수", builtinToInt)
	v.RegisterBuiltin("실수", builtinToFloat)
	v.RegisterBuiltin("반올림", builtinRound)
	v.RegisterBuiltin("올림", builtinCeil)
	v.RegisterBuiltin("내림", builtinFloor)
	v.RegisterBuiltin("절대값", builtinAbs)
	v.RegisterBuiltin("제곱근", builtinSqrt)
	v.RegisterBuiltin("제곱", builtinPow)
}

func numericArg(v *vm.VM, args []vm.Value, i int, who string) (float64, error) {
	if i >= len(args) {
		return 0, v.RuntimeError(errors.ArityMismatch, "%s에 인자가 부족합니다", who)
	}
	switch args[i].Kind {
	case vm.KindInteger:
		return float64(args[i].Int), nil
	case vm.KindFloat:
		return args[i].Float, nil
	default:
		return 0, v.RuntimeError(errors.TypeMismatch, "%s의 %d번째 인자는 숫자여야 합니다", who, i+1)
	}
}

func builtinToInt(v *vm.VM, args []vm.Value) (vm.Value, error) {
	switch {
	case len(args) == 1 && args[0].Kind == vm.KindString:
		n, err := strconv.ParseInt(args[0].Str, 10, 64)
		if err != nil {
			return vm.Null, v.RuntimeError(errors.TypeMismatch, "정수로 변환할 수 없습니다: %q", args[0].Str)
		}
		return vm.Int(n), nil
	default:
		f, err := numericArg(v, args, 0, "정수")
		if err != nil {
			return vm.Null, err
		}
		return vm.Int(int64(f)), nil
	}
}

func builtinToFloat(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) == 1 && args[0].Kind == vm.KindString {
		f, err := strconv.ParseFloat(args[0].Str, 64)
		if err != nil {
			return vm.Null, v.RuntimeError(errors.TypeMismatch, "실수로 변환할 수 없습니다: %q", args[0].Str)
		}
		return vm.Float(f), nil
	}
	f, err := numericArg(v, args, 0, "실수")
	if err != nil {
		return vm.Null, err
	}
	return vm.Float(f), nil
}

func builtinRound(v *vm.VM, args []vm.Value) (vm.Value, error) {
	f, err := numericArg(v, args, 0, "반올림")
	if err != nil {
		return vm.Null, err
	}
	return vm.Int(int64(math.Round(f))), nil
}

func builtinCeil(v *vm.VM, args []vm.Value) (vm.Value, error) {
	f, err := numericArg(v, args, 0, "올림")
	if err != nil {
		return vm.Null, err
	}
	return vm.Int(int64(math.Ceil(f))), nil
}

func builtinFloor(v *vm.VM, args []vm.Value) (vm.Value, error) {
	f, err := numericArg(v, args, 0, "내림")
	if err != nil {
		return vm.Null, err
	}
	return vm.Int(int64(math.Floor(f))), nil
}

func builtinAbs(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) == 1 && args[0].Kind == vm.KindInteger {
		n := args[0].Int
		if n < 0 {
			n = -n
		}
		return vm.Int(n), nil
	}
	f, err := numericArg(v, args, 0, "절대값")
	if err != nil {
		return vm.Null, err
	}
	return vm.Float(math.Abs(f)), nil
}

func builtinSqrt(v *vm.VM, args []vm.Value) (vm.Value, error) {
	f, err := numericArg(v, args, 0, "제곱근")
	if err != nil {
		return vm.Null, err
	}
	return vm.Float(math.Sqrt(f)), nil
}

func builtinPow(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "제곱은 인자 2개가 필요합니다")
	}
	base, err := numericArg(v, args, 0, "제곱")
	if err != nil {
		return vm.Null, err
	}
	exp, err := numericArg(v, args, 1, "제곱")
	if err != nil {
		return vm.Null, err
	}
	result := math.Pow(base, exp)
	if args[0].Kind == vm.KindInteger && args[1].Kind == vm.KindInteger && exp >= 0 {
		return vm.Int(int64(result)), nil
	}
	return vm.Float(result), nil
}
