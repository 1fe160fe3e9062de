// Package vm executes a compiled bytecode.Chunk. Grounded on the teacher's
// internal/vm/vm.go fetch-decode-dispatch shape (a flat switch over the
// opcode byte, a Go slice as the operand stack, PrintValue's type-switch
// stringifier) but retargeted at spec.md §4.4/§4.5's own contract: a Value
// is a tagged struct rather than the teacher's bare interface{}, per
// DESIGN.md's "tagged unions over dynamic_cast" design note, and every
// composite variant (Array, Dictionary) carries Go pointer/map reference
// semantics so two Values that alias the same object observe each other's
// mutations, matching spec.md §3's "shared, mutable" wording.
package vm

import (
	"fmt"
	"strconv"
	"strings"

	"hangeulscript/internal/bytecode"
)

// Kind discriminates Value's variants — spec.md §3's Value sum type.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindArray
	KindDictionary
	KindFunction
	KindBuiltin
	KindClassInstance
	KindError
	KindPromise
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindDictionary:
		return "Dictionary"
	case KindFunction:
		return "Function"
	case KindBuiltin:
		return "BuiltinFunction"
	case KindClassInstance:
		return "ClassInstance"
	case KindError:
		return "Error"
	case KindPromise:
		return "Promise"
	default:
		return "Unknown"
	}
}

// Array backs the Array variant behind a pointer so every Value holding it
// aliases the same backing slice — 추가한다/합친다 and INDEX_SET all mutate
// through this one object, per spec.md §3's shared-mutable note.
type Array struct {
	Items []Value
}

// Dictionary backs the Dictionary variant the same way. Keys are always
// stringified at construction (사전_생성 in internal/stdlib): spec.md never
// describes non-string dictionary keys, so this is the only representation
// INDEX_GET/INDEX_SET need to understand.
type Dictionary struct {
	Items map[string]Value
}

// Function is a callable compiled into the running Chunk: Addr is the
// BUILD_FUNCTION body offset, Arity the parameter count including a bound
// "이것" receiver slot when Name is a mangled "Class.method". Functions
// never close over an enclosing frame (spec.md §3) so this is the entire
// callable representation — no captured-environment pointer.
type Function struct {
	Name  string
	Arity int
	Addr  int
}

// BuiltinFunction is a Go-native callable — either a genuine stdlib
// function (internal/stdlib) or a bound-method closure synthesized by
// INDEX_GET when resolving "instance.method" (the receiver is baked into
// the closure since Values carry no environment pointer of their own).
type BuiltinFunction func(v *VM, args []Value) (Value, error)

// ClassInstance is a constructed object: a reference to its class's
// bytecode.ClassInfo (for method/field-name resolution) plus its own
// field-value map, shared by every Value that aliases this instance.
type ClassInstance struct {
	Class  *bytecode.ClassInfo
	Fields map[string]Value
}

// Value is the tagged union every VM stack slot, global, and local slot
// holds. Exactly one of the type-specific fields is meaningful for a given
// Kind; the rest are zero.
type Value struct {
	Kind    Kind
	Int     int64
	Float   float64
	Bool    bool
	Str     string
	Arr     *Array
	Dict    *Dictionary
	Fn      *Function
	Builtin BuiltinFunction
	BuiltinName string
	Instance *ClassInstance
	ErrKind    string
	ErrMessage string
}

var Null = Value{Kind: KindNull}

func Int(i int64) Value      { return Value{Kind: KindInteger, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value      { return Value{Kind: KindBoolean, Bool: b} }
func Str(s string) Value     { return Value{Kind: KindString, Str: s} }
func NewArray(items []Value) Value {
	return Value{Kind: KindArray, Arr: &Array{Items: items}}
}
func NewDictionary(items map[string]Value) Value {
	return Value{Kind: KindDictionary, Dict: &Dictionary{Items: items}}
}
func NewFunction(fn *Function) Value { return Value{Kind: KindFunction, Fn: fn} }
func NewBuiltin(name string, fn BuiltinFunction) Value {
	return Value{Kind: KindBuiltin, Builtin: fn, BuiltinName: name}
}
func NewInstance(inst *ClassInstance) Value { return Value{Kind: KindClassInstance, Instance: inst} }
func NewError(kind, message string) Value {
	return Value{Kind: KindError, ErrKind: kind, ErrMessage: message}
}

// Truthy implements spec.md §4.5: Null and false Booleans are falsy; the
// integer 0, the float 0.0, and the empty string are falsy; every other
// value (including an empty array) is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.Bool
	case KindInteger:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	default:
		return true
	}
}

// Equals implements spec.md §4.5's structural-for-composites equality:
// numeric variants compare across Integer/Float by promoting to float64,
// Arrays/Dictionaries compare deep, Functions compare by identity-or-
// structural-equal (same Addr), everything else by Kind+scalar field.
func (v Value) Equals(o Value) bool {
	switch {
	case v.Kind == KindInteger && o.Kind == KindInteger:
		return v.Int == o.Int
	case v.Kind == KindFloat && o.Kind == KindFloat:
		return v.Float == o.Float
	case isNumeric(v) && isNumeric(o):
		return v.asFloat() == o.asFloat()
	case v.Kind != o.Kind:
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.Bool == o.Bool
	case KindString:
		return v.Str == o.Str
	case KindArray:
		if v.Arr == o.Arr {
			return true
		}
		if len(v.Arr.Items) != len(o.Arr.Items) {
			return false
		}
		for i := range v.Arr.Items {
			if !v.Arr.Items[i].Equals(o.Arr.Items[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		if v.Dict == o.Dict {
			return true
		}
		if len(v.Dict.Items) != len(o.Dict.Items) {
			return false
		}
		for k, vv := range v.Dict.Items {
			ov, ok := o.Dict.Items[k]
			if !ok || !vv.Equals(ov) {
				return false
			}
		}
		return true
	case KindFunction:
		return v.Fn == o.Fn || (v.Fn != nil && o.Fn != nil && v.Fn.Addr == o.Fn.Addr)
	case KindBuiltin:
		return v.BuiltinName == o.BuiltinName
	case KindClassInstance:
		return v.Instance == o.Instance
	case KindError:
		return v.ErrKind == o.ErrKind && v.ErrMessage == o.ErrMessage
	default:
		return false
	}
}

func isNumeric(v Value) bool { return v.Kind == KindInteger || v.Kind == KindFloat }

func (v Value) asFloat() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}
	return v.Float
}

// String renders v for PRINT: no quoting of top-level strings, arrays as
// "[v1, v2, ...]", booleans as 참/거짓 to match the language's own
// identity rather than Go's true/false — spec.md §4.5.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "널"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBoolean:
		if v.Bool {
			return "참"
		}
		return "거짓"
	case KindString:
		return v.Str
	case KindArray:
		parts := make([]string, len(v.Arr.Items))
		for i, item := range v.Arr.Items {
			parts[i] = item.quoted()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDictionary:
		parts := make([]string, 0, len(v.Dict.Items))
		for k, vv := range v.Dict.Items {
			parts = append(parts, fmt.Sprintf("%q: %s", k, vv.quoted()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunction:
		return fmt.Sprintf("<함수 %s>", v.Fn.Name)
	case KindBuiltin:
		return fmt.Sprintf("<내장함수 %s>", v.BuiltinName)
	case KindClassInstance:
		return fmt.Sprintf("<%s 인스턴스>", v.Instance.Class.Name)
	case KindError:
		return fmt.Sprintf("<오류 %s: %s>", v.ErrKind, v.ErrMessage)
	case KindPromise:
		return "<프로미스>"
	default:
		return "?"
	}
}

// quoted is String's nested-element form: a string nested inside an array
// or dictionary literal IS quoted, matching how the teacher's own
// PrintValue distinguishes top-level from nested rendering.
func (v Value) quoted() string {
	if v.Kind == KindString {
		return strconv.Quote(v.Str)
	}
	return v.String()
}

// TypeName is the value spec.md's 타입() builtin returns.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNull:
		return "널"
	case KindInteger:
		return "정수"
	case KindFloat:
		return "실수"
	case KindBoolean:
		return "불리언"
	case KindString:
		return "문자열"
	case KindArray:
		return "배열"
	case KindDictionary:
		return "사전"
	case KindFunction, KindBuiltin:
		return "함수"
	case KindClassInstance:
		return v.Instance.Class.Name
	case KindError:
		return "오류"
	case KindPromise:
		return "프로미스"
	default:
		return "알수없음"
	}
}
