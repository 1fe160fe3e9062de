package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"time"

	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/errors"
)

// JIT is the hook internal/jit's HotPathDetector/Tier-1/Tier-2 machinery
// implements. The VM only ever sees this narrow interface — it has no
// import on internal/jit — so OnCall can bump a hot-path counter and
// TryNative can short-circuit a CALL with a natively-compiled result
// without the VM knowing anything about templates, NaN-boxing, or LLVM IR.
type JIT interface {
	// OnCall is invoked for every CALL whose target is a user Function,
	// before the call executes, keyed by the function's bytecode region.
	OnCall(chunkID uintptr, fn *Function)
	// TryNative attempts to run fn as a compiled native region instead of
	// interpreting it. ok is false whenever the region isn't (yet, or
	// ever) tier-1 eligible; the VM falls back to the normal frame-based
	// call in that case.
	TryNative(chunkID uintptr, fn *Function, args []Value) (result Value, ok bool)
}

// postpositionArity is the closed arity table for the four Array methods
// POSTPOSITION_CALL may dispatch to (DESIGN.md Open Question #2) — the
// opcode's own operands carry no argument count, so the VM must already
// know each verb's shape.
var postpositionArity = map[string]int{
	"정렬한다":      0,
	"역순으로_나열한다": 0,
	"추가한다":      1,
	"합친다":       1,
}

// VM executes one bytecode.Chunk at a time. Grounded on the teacher's
// vm.go single-struct-plus-big-switch shape; unlike the teacher, locals
// live in a per-Frame slice distinct from the general operand stack (a
// STORE_VAR copies the operand-stack top into that slice without popping,
// matching how the compiler always follows STORE_VAR/STORE_GLOBAL with an
// explicit POP of its own).
type VM struct {
	chunk  *bytecode.Chunk
	ip     int
	stack  []Value
	frames []Frame

	globals map[string]Value
	// topLocals backs LOAD_VAR/STORE_VAR on the rare path where they run
	// with no frame pushed — never emitted by the compiler today, kept as
	// a safety net rather than a panic.
	topLocals []Value

	limits     Limits
	instrCount int64
	startTime  time.Time

	Out io.Writer
	jit JIT

	fileName string
}

// New constructs a VM with spec.md §4.4's default runtime limits and
// os.Stdout as the PRINT sink. Builtins are registered separately —
// internal/stdlib, internal/module, and the VM's own hidden intrinsics
// each populate vm.globals via RegisterBuiltin/RegisterGlobal.
func New() *VM {
	v := &VM{
		globals: map[string]Value{},
		limits:  DefaultLimits(),
		Out:     os.Stdout,
	}
	v.registerCoreBuiltins()
	return v
}

// SetLimits overrides the three runtime
// safety limits — how internal/config applies .hgsrc.yaml overrides.
func (v *VM) SetLimits(l Limits) { v.limits = l }

// SetJIT installs the HotPathDetector/Tier-1/Tier-2 facade. Passing nil
// disables JIT entirely and every CALL interprets.
func (v *VM) SetJIT(j JIT) { v.jit = j }

// RegisterBuiltin exposes name as a callable global backed by fn —
// internal/stdlib's sole entry point into the VM's global environment.
func (v *VM) RegisterBuiltin(name string, fn BuiltinFunction) {
	v.globals[name] = NewBuiltin(name, fn)
}

// RegisterGlobal exposes name as an ordinary (non-callable) global value —
// used for the builtin variables 경로/절대경로/작업디렉토리/홈디렉토리/임시디렉토리.
func (v *VM) RegisterGlobal(name string, val Value) {
	v.globals[name] = val
}

// Globals returns a snapshot of every global name v's chunk defined —
// internal/module's __import__ builtin exposes this as the imported
// module's Dictionary Value, since a module has no other notion of
// "exports" than its own top-level globals.
func (v *VM) Globals() map[string]Value {
	out := make(map[string]Value, len(v.globals))
	for k, val := range v.globals {
		out[k] = val
	}
	return out
}

// ChunkID identifies the currently-loaded chunk for the JIT's per-region
// cache keys — the Chunk's own address is stable for its lifetime and
// unique per compilation, exactly what a cache key needs.
func (v *VM) ChunkID() uintptr {
	return chunkIdentity(v.chunk)
}

func chunkIdentity(c *bytecode.Chunk) uintptr {
	return reflect.ValueOf(c).Pointer()
}

// ChunkIdentity exposes the same identity chunkIdentity computes
// internally, so internal/jit — which only ever sees a chunkID uintptr
// through the JIT interface — can key its own chunk-tracking table by the
// same value the VM uses, without internal/vm importing internal/jit.
func ChunkIdentity(c *bytecode.Chunk) uintptr {
	return chunkIdentity(c)
}

func (v *VM) push(val Value) { v.stack = append(v.stack, val) }

func (v *VM) pop() Value {
	if len(v.stack) == 0 {
		return Null
	}
	n := len(v.stack) - 1
	val := v.stack[n]
	v.stack = v.stack[:n]
	return val
}

func (v *VM) peek() Value {
	if len(v.stack) == 0 {
		return Null
	}
	return v.stack[len(v.stack)-1]
}

func (v *VM) currentLocals() *[]Value {
	if len(v.frames) == 0 {
		return &v.topLocals
	}
	return &v.frames[len(v.frames)-1].Locals
}

func (v *VM) currentFunctionName() string {
	if len(v.frames) == 0 {
		return "<최상위>"
	}
	return v.frames[len(v.frames)-1].Function
}

func (v *VM) debugHere(ip int) bytecode.DebugInfo {
	return v.chunk.GetDebugInfo(ip)
}

func (v *VM) runtimeErr(ip int, kind errors.Kind, format string, args ...interface{}) error {
	d := v.debugHere(ip)
	return errors.New(kind, fmt.Sprintf(format, args...), d.File, d.Line, d.Column).
		AddStackFrame(v.currentFunctionName(), d.File, d.Line, d.Column)
}

// RuntimeError builds a LangError located at the instruction currently
// executing — internal/stdlib's entry point for reporting a built-in's own
// type/arity/I-O failures with the same file:line:col precision the VM's
// own opcodes get, without exposing the unexported runtimeErr/debugHere
// machinery itself.
func (v *VM) RuntimeError(kind errors.Kind, format string, args ...interface{}) error {
	return v.runtimeErr(v.ip, kind, format, args...)
}

// Run loads chunk as the VM's program and executes it from offset 0 until
// HALT, or a bare top-level RETURN, or a runtime error. It resets all
// per-run state first, so one VM can run many chunks in sequence (the
// REPL's line-at-a-time loop does exactly this).
func (v *VM) Run(chunk *bytecode.Chunk) (Value, error) {
	v.chunk = chunk
	v.ip = 0
	v.stack = v.stack[:0]
	v.frames = v.frames[:0]
	v.topLocals = nil
	v.instrCount = 0
	v.startTime = time.Now()
	return v.loop()
}

// CallValue invokes callee (a Function or BuiltinFunction Value) with args
// from Go code — the path internal/vm's own __try__/__new__/bound-method
// intrinsics, and anything else holding a *VM, use to re-enter execution
// without going through a CALL opcode. The VM's current ip/stack/frames
// are preserved around the call.
func (v *VM) CallValue(callee Value, args []Value) (Value, error) {
	switch callee.Kind {
	case KindBuiltin:
		return callee.Builtin(v, args)
	case KindFunction:
		fn := callee.Fn
		if len(args) != fn.Arity {
			return Null, v.runtimeErr(v.ip, errors.ArityMismatch,
				"%s는 인자 %d개를 받지만 %d개가 전달되었습니다", fn.Name, fn.Arity, len(args))
		}
		if len(v.frames) >= v.limits.MaxStackDepth {
			return Null, v.runtimeErr(v.ip, errors.RuntimeLimitExceeded, "StackDepth")
		}
		savedIP := v.ip
		v.frames = append(v.frames, Frame{
			ReturnIP:  -1,
			Locals:    append([]Value{}, args...),
			Function:  fn.Name,
			Synthetic: true,
		})
		result, err := v.loop()
		v.ip = savedIP
		return result, err
	default:
		return Null, v.runtimeErr(v.ip, errors.NotCallable, "호출할 수 없는 값입니다 (%s)", callee.Kind)
	}
}

// loop is the fetch-decode-dispatch core, shared by Run (targetDepth
// established implicitly by an empty frame stack) and CallValue (a
// Synthetic frame marks where this particular nested loop must stop).
func (v *VM) loop() (Value, error) {
	for {
		v.instrCount++
		if v.instrCount >= v.limits.MaxInstructions {
			return Null, v.runtimeErr(v.ip, errors.RuntimeLimitExceeded, "Instructions")
		}
		if time.Since(v.startTime) >= v.limits.MaxExecutionTime {
			return Null, v.runtimeErr(v.ip, errors.RuntimeLimitExceeded, "Time")
		}
		if v.ip < 0 || v.ip >= len(v.chunk.Code) {
			return Null, nil
		}
		instrIP := v.ip
		op := bytecode.OpCode(v.chunk.Code[v.ip])
		v.ip++

		switch op {
		case bytecode.OpLoadConst:
			idx := v.readU16()
			v.push(constantToValue(v.chunk.Constants[idx]))

		case bytecode.OpLoadTrue:
			v.push(Bool(true))
		case bytecode.OpLoadFalse:
			v.push(Bool(false))
		case bytecode.OpLoadNull:
			v.push(Null)

		case bytecode.OpLoadVar:
			slot := v.readU16()
			locals := v.currentLocals()
			v.push(localAt(locals, slot))

		case bytecode.OpStoreVar:
			slot := v.readU16()
			locals := v.currentLocals()
			setLocalAt(locals, slot, v.peek())

		case bytecode.OpLoadGlobal:
			idx := v.readU16()
			name := v.chunk.Names[idx]
			val, ok := v.globals[name]
			if !ok {
				return Null, v.runtimeErr(instrIP, errors.UndefinedGlobal, "정의되지 않은 전역 이름입니다: %s", name)
			}
			v.push(val)

		case bytecode.OpStoreGlobal:
			idx := v.readU16()
			name := v.chunk.Names[idx]
			val := v.peek()
			if val.Kind == KindFunction && val.Fn.Name == "익명" {
				val.Fn.Name = name
			}
			v.globals[name] = val

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			b := v.pop()
			a := v.pop()
			res, err := v.arith(op, a, b, instrIP)
			if err != nil {
				return Null, err
			}
			v.push(res)

		case bytecode.OpNeg:
			a := v.pop()
			switch a.Kind {
			case KindInteger:
				v.push(Int(-a.Int))
			case KindFloat:
				v.push(Float(-a.Float))
			default:
				return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "숫자가 아닌 값은 부호를 바꿀 수 없습니다 (%s)", a.Kind)
			}

		case bytecode.OpEq:
			b := v.pop()
			a := v.pop()
			v.push(Bool(a.Equals(b)))
		case bytecode.OpNe:
			b := v.pop()
			a := v.pop()
			v.push(Bool(!a.Equals(b)))

		case bytecode.OpLt, bytecode.OpGt, bytecode.OpLe, bytecode.OpGe:
			b := v.pop()
			a := v.pop()
			res, err := v.compare(op, a, b, instrIP)
			if err != nil {
				return Null, err
			}
			v.push(Bool(res))

		case bytecode.OpAnd:
			b := v.pop()
			a := v.pop()
			v.push(Bool(a.Truthy() && b.Truthy()))
		case bytecode.OpOr:
			b := v.pop()
			a := v.pop()
			v.push(Bool(a.Truthy() || b.Truthy()))
		case bytecode.OpNot:
			a := v.pop()
			v.push(Bool(!a.Truthy()))

		case bytecode.OpJump:
			off := int(v.readU8())
			v.ip += off

		case bytecode.OpJumpIfFalse:
			off := int(v.readU8())
			if !v.peek().Truthy() {
				v.ip += off
			}

		case bytecode.OpJumpIfTrue:
			off := int(v.readU8())
			if v.peek().Truthy() {
				v.ip += off
			}

		case bytecode.OpLoop:
			off := v.readU16()
			v.ip -= off

		case bytecode.OpCall:
			argc := int(v.readU8())
			if err := v.doCall(argc, instrIP); err != nil {
				return Null, err
			}

		case bytecode.OpReturn:
			r := v.pop()
			if len(v.frames) == 0 {
				return r, nil
			}
			frame := v.frames[len(v.frames)-1]
			v.frames = v.frames[:len(v.frames)-1]
			if frame.Synthetic {
				return r, nil
			}
			v.push(r)
			v.ip = frame.ReturnIP

		case bytecode.OpBuildFunction:
			arity := int(v.readU8())
			addr := v.readU16()
			v.push(NewFunction(&Function{Name: "익명", Arity: arity, Addr: addr}))

		case bytecode.OpBuildArray:
			n := v.readU16()
			items := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				items[i] = v.pop()
			}
			v.push(NewArray(items))

		case bytecode.OpIndexGet:
			idx := v.pop()
			obj := v.pop()
			res, err := v.indexGet(obj, idx, instrIP)
			if err != nil {
				return Null, err
			}
			v.push(res)

		case bytecode.OpIndexSet:
			val := v.pop()
			idx := v.pop()
			obj := v.pop()
			if err := v.indexSet(obj, idx, val, instrIP); err != nil {
				return Null, err
			}

		case bytecode.OpArrayAppend:
			val := v.pop()
			arr := v.pop()
			if arr.Kind != KindArray {
				return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "배열이 아닌 값에 추가할 수 없습니다 (%s)", arr.Kind)
			}
			arr.Arr.Items = append(arr.Arr.Items, val)
			v.push(arr)

		case bytecode.OpPostpositionCall:
			v.readU16() // postposition kind — only the method name drives dispatch
			nameIdx := v.readU16()
			method := v.chunk.Names[nameIdx]
			if err := v.doPostpositionCall(method, instrIP); err != nil {
				return Null, err
			}

		case bytecode.OpPop:
			v.pop()
		case bytecode.OpDup:
			v.push(v.peek())
		case bytecode.OpSwap:
			n := len(v.stack)
			v.stack[n-1], v.stack[n-2] = v.stack[n-2], v.stack[n-1]

		case bytecode.OpPrint:
			val := v.pop()
			fmt.Fprintln(v.Out, val.String())

		case bytecode.OpHalt:
			return Null, nil

		default:
			return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "알 수 없는 명령어입니다 (%s)", op)
		}
	}
}

func (v *VM) readU8() byte {
	b := v.chunk.Code[v.ip]
	v.ip++
	return b
}

func (v *VM) readU16() int {
	val := binary.BigEndian.Uint16(v.chunk.Code[v.ip : v.ip+2])
	v.ip += 2
	return int(val)
}

func localAt(locals *[]Value, slot int) Value {
	if slot >= len(*locals) {
		return Null
	}
	return (*locals)[slot]
}

func setLocalAt(locals *[]Value, slot int, val Value) {
	for slot >= len(*locals) {
		*locals = append(*locals, Null)
	}
	(*locals)[slot] = val
}

func constantToValue(c interface{}) Value {
	switch x := c.(type) {
	case int64:
		return Int(x)
	case int:
		return Int(int64(x))
	case float64:
		return Float(x)
	case string:
		return Str(x)
	case bool:
		return Bool(x)
	default:
		return Null
	}
}

// doCall implements the CALL opcode: pop argc args, pop the callee, and
// either push a Frame for a user Function or invoke a BuiltinFunction
// inline. A user-function call consults the JIT hook first — a hot,
// tier-1-eligible region executes natively instead of interpreting.
func (v *VM) doCall(argc int, instrIP int) error {
	if len(v.stack) < argc+1 {
		return v.runtimeErr(instrIP, errors.StackUnderflow, "호출에 필요한 피연산자가 부족합니다")
	}
	args := append([]Value{}, v.stack[len(v.stack)-argc:]...)
	v.stack = v.stack[:len(v.stack)-argc]
	callee := v.pop()

	switch callee.Kind {
	case KindBuiltin:
		result, err := callee.Builtin(v, args)
		if err != nil {
			return err
		}
		v.push(result)
		return nil

	case KindFunction:
		fn := callee.Fn
		if len(args) != fn.Arity {
			return v.runtimeErr(instrIP, errors.ArityMismatch,
				"%s는 인자 %d개를 받지만 %d개가 전달되었습니다", fn.Name, fn.Arity, len(args))
		}
		if v.jit != nil {
			id := v.ChunkID()
			v.jit.OnCall(id, fn)
			if result, ok := v.jit.TryNative(id, fn, args); ok {
				v.push(result)
				return nil
			}
		}
		if len(v.frames) >= v.limits.MaxStackDepth {
			return v.runtimeErr(instrIP, errors.RuntimeLimitExceeded, "StackDepth")
		}
		v.frames = append(v.frames, Frame{
			ReturnIP: v.ip,
			Locals:   args,
			Function: fn.Name,
		})
		v.ip = fn.Addr
		return nil

	default:
		return v.runtimeErr(instrIP, errors.NotCallable, "호출할 수 없는 값입니다 (%s)", callee.Kind)
	}
}

// arith implements spec.md §4.4's ADD/SUB/MUL/DIV/MOD type semantics:
// numeric promotion on a mixed Integer/Float pair, String-operand
// stringify-and-concatenate for ADD, ZeroDivision on a zero divisor.
func (v *VM) arith(op bytecode.OpCode, a, b Value, instrIP int) (Value, error) {
	if op == bytecode.OpAdd && (a.Kind == KindString || b.Kind == KindString) {
		return Str(a.String() + b.String()), nil
	}
	if !isNumeric(a) || !isNumeric(b) {
		return Null, v.runtimeErr(instrIP, errors.TypeMismatch,
			"숫자가 아닌 값에 산술 연산을 적용할 수 없습니다 (%s, %s)", a.Kind, b.Kind)
	}
	bothInt := a.Kind == KindInteger && b.Kind == KindInteger
	switch op {
	case bytecode.OpAdd:
		if bothInt {
			return Int(a.Int + b.Int), nil
		}
		return Float(a.asFloat() + b.asFloat()), nil
	case bytecode.OpSub:
		if bothInt {
			return Int(a.Int - b.Int), nil
		}
		return Float(a.asFloat() - b.asFloat()), nil
	case bytecode.OpMul:
		if bothInt {
			return Int(a.Int * b.Int), nil
		}
		return Float(a.asFloat() * b.asFloat()), nil
	case bytecode.OpDiv:
		if bothInt {
			if b.Int == 0 {
				return Null, v.runtimeErr(instrIP, errors.ZeroDivision, "0으로 나눌 수 없습니다")
			}
			return Int(a.Int / b.Int), nil
		}
		if b.asFloat() == 0 {
			return Null, v.runtimeErr(instrIP, errors.ZeroDivision, "0으로 나눌 수 없습니다")
		}
		return Float(a.asFloat() / b.asFloat()), nil
	case bytecode.OpMod:
		if bothInt {
			if b.Int == 0 {
				return Null, v.runtimeErr(instrIP, errors.ZeroDivision, "0으로 나눌 수 없습니다")
			}
			return Int(a.Int % b.Int), nil
		}
		if b.asFloat() == 0 {
			return Null, v.runtimeErr(instrIP, errors.ZeroDivision, "0으로 나눌 수 없습니다")
		}
		return Float(floatMod(a.asFloat(), b.asFloat())), nil
	}
	return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "알 수 없는 산술 연산입니다")
}

func floatMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

// compare implements LT/GT/LE/GE: numeric cross-promotion, String
// lexicographic comparison, TypeMismatch across unrelated variants.
func (v *VM) compare(op bytecode.OpCode, a, b Value, instrIP int) (bool, error) {
	switch {
	case isNumeric(a) && isNumeric(b):
		x, y := a.asFloat(), b.asFloat()
		switch op {
		case bytecode.OpLt:
			return x < y, nil
		case bytecode.OpGt:
			return x > y, nil
		case bytecode.OpLe:
			return x <= y, nil
		case bytecode.OpGe:
			return x >= y, nil
		}
	case a.Kind == KindString && b.Kind == KindString:
		switch op {
		case bytecode.OpLt:
			return a.Str < b.Str, nil
		case bytecode.OpGt:
			return a.Str > b.Str, nil
		case bytecode.OpLe:
			return a.Str <= b.Str, nil
		case bytecode.OpGe:
			return a.Str >= b.Str, nil
		}
	}
	return false, v.runtimeErr(instrIP, errors.TypeMismatch,
		"비교할 수 없는 값입니다 (%s, %s)", a.Kind, b.Kind)
}

// Arith and Compare expose arith/compare at the VM's current instruction —
// internal/evaluator's tree-walking fallback reuses these rather than
// re-deriving spec.md §4.4/§4.5's numeric-promotion and ZeroDivision rules
// a second time, so the bytecode VM and the legacy evaluator can never
// silently drift apart on what "+" or "<" means.
func (v *VM) Arith(op bytecode.OpCode, a, b Value) (Value, error) {
	return v.arith(op, a, b, v.ip)
}

func (v *VM) Compare(op bytecode.OpCode, a, b Value) (bool, error) {
	return v.compare(op, a, b, v.ip)
}

// IndexGet and IndexSet expose indexGet/indexSet the same way, so
// internal/evaluator's MemberExpr/IndexExpr handling shares INDEX_GET/SET's
// exact Array/Dictionary/ClassInstance dispatch rules instead of
// reimplementing them.
func (v *VM) IndexGet(obj, idx Value) (Value, error) {
	return v.indexGet(obj, idx, v.ip)
}

func (v *VM) IndexSet(obj, idx, val Value) error {
	return v.indexSet(obj, idx, val, v.ip)
}

// indexGet implements INDEX_GET generalized over three receiver kinds, per
// DESIGN.md: Array[Integer] (bounds-checked), Dictionary[String], and
// ClassInstance[String] (field, falling back to a bound method) — the
// last two cover MemberExpr's "object.property" lowering, since no
// GET_PROPERTY opcode exists in spec.md §4.3's normative table.
func (v *VM) indexGet(obj, idx Value, instrIP int) (Value, error) {
	switch obj.Kind {
	case KindArray:
		if idx.Kind != KindInteger {
			return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "배열 색인은 정수여야 합니다")
		}
		if idx.Int < 0 || idx.Int >= int64(len(obj.Arr.Items)) {
			return Null, v.runtimeErr(instrIP, errors.IndexOutOfBounds, "배열 색인 범위를 벗어났습니다: %d", idx.Int)
		}
		return obj.Arr.Items[idx.Int], nil

	case KindDictionary:
		if idx.Kind != KindString {
			return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "사전 키는 문자열이어야 합니다")
		}
		if val, ok := obj.Dict.Items[idx.Str]; ok {
			return val, nil
		}
		return Null, nil

	case KindClassInstance:
		if idx.Kind != KindString {
			return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "필드 이름은 문자열이어야 합니다")
		}
		if val, ok := obj.Instance.Fields[idx.Str]; ok {
			return val, nil
		}
		if mangled, ok := obj.Instance.Class.Methods[idx.Str]; ok {
			fnVal, ok := v.globals[mangled]
			if !ok {
				return Null, v.runtimeErr(instrIP, errors.UndefinedGlobal, "정의되지 않은 메소드입니다: %s", mangled)
			}
			return v.bindMethod(obj, fnVal), nil
		}
		return Null, v.runtimeErr(instrIP, errors.UndefinedName, "정의되지 않은 필드입니다: %s", idx.Str)

	default:
		return Null, v.runtimeErr(instrIP, errors.TypeMismatch, "색인할 수 없는 값입니다 (%s)", obj.Kind)
	}
}

func (v *VM) indexSet(obj, idx, val Value, instrIP int) error {
	switch obj.Kind {
	case KindArray:
		if idx.Kind != KindInteger {
			return v.runtimeErr(instrIP, errors.TypeMismatch, "배열 색인은 정수여야 합니다")
		}
		if idx.Int < 0 || idx.Int >= int64(len(obj.Arr.Items)) {
			return v.runtimeErr(instrIP, errors.IndexOutOfBounds, "배열 색인 범위를 벗어났습니다: %d", idx.Int)
		}
		obj.Arr.Items[idx.Int] = val
		return nil
	case KindDictionary:
		if idx.Kind != KindString {
			return v.runtimeErr(instrIP, errors.TypeMismatch, "사전 키는 문자열이어야 합니다")
		}
		obj.Dict.Items[idx.Str] = val
		return nil
	case KindClassInstance:
		if idx.Kind != KindString {
			return v.runtimeErr(instrIP, errors.TypeMismatch, "필드 이름은 문자열이어야 합니다")
		}
		obj.Instance.Fields[idx.Str] = val
		return nil
	default:
		return v.runtimeErr(instrIP, errors.TypeMismatch, "색인할 수 없는 값입니다 (%s)", obj.Kind)
	}
}

// bindMethod closes over receiver so "인스턴스.메소드()" calls the mangled
// global with the receiver already prepended — Values carry no
// environment pointer of their own, so the closure itself is the binding.
func (v *VM) bindMethod(receiver, fnVal Value) Value {
	name := receiver.Instance.Class.Name + "." + describeFn(fnVal)
	return NewBuiltin(name, func(vm *VM, args []Value) (Value, error) {
		full := append([]Value{receiver}, args...)
		return vm.CallValue(fnVal, full)
	})
}

func describeFn(fnVal Value) string {
	if fnVal.Kind == KindFunction {
		return fnVal.Fn.Name
	}
	return "메소드"
}

// doPostpositionCall implements POSTPOSITION_CALL against the closed
// four-method Array dispatch table — DESIGN.md's resolution of Open
// Question #2.
func (v *VM) doPostpositionCall(method string, instrIP int) error {
	arity, ok := postpositionArity[method]
	if !ok {
		return v.runtimeErr(instrIP, errors.TypeMismatch, "알 수 없는 후치사 호출입니다: %s", method)
	}
	if len(v.stack) < arity+1 {
		return v.runtimeErr(instrIP, errors.StackUnderflow, "후치사 호출에 필요한 피연산자가 부족합니다")
	}
	args := make([]Value, arity)
	for i := arity - 1; i >= 0; i-- {
		args[i] = v.pop()
	}
	target := v.pop()
	if target.Kind != KindArray {
		return v.runtimeErr(instrIP, errors.TypeMismatch, "배열이 아닌 값에는 %s를 사용할 수 없습니다", method)
	}

	switch method {
	case "정렬한다":
		sort.SliceStable(target.Arr.Items, func(i, j int) bool {
			return lessValue(target.Arr.Items[i], target.Arr.Items[j])
		})
		v.push(Null)
	case "역순으로_나열한다":
		items := target.Arr.Items
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		v.push(Null)
	case "추가한다":
		target.Arr.Items = append(target.Arr.Items, args[0])
		v.push(Null)
	case "합친다":
		if args[0].Kind != KindArray {
			return v.runtimeErr(instrIP, errors.TypeMismatch, "합친다는 배열만 인자로 받습니다")
		}
		merged := make([]Value, 0, len(target.Arr.Items)+len(args[0].Arr.Items))
		merged = append(merged, target.Arr.Items...)
		merged = append(merged, args[0].Arr.Items...)
		v.push(NewArray(merged))
	}
	return nil
}

func lessValue(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return a.asFloat() < b.asFloat()
	}
	if a.Kind == KindString && b.Kind == KindString {
		return a.Str < b.Str
	}
	return a.String() < b.String()
}
