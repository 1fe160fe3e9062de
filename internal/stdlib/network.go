// Network built-ins, backed by internal/network's gorilla/websocket
// client. 소켓_열기 returns an instance the same shape as 데이터베이스_연결's —
// bound method fields closing over the open connection.
package stdlib

import (
	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/network"
	"hangeulscript/internal/vm"
)

var socketClass = &bytecode.ClassInfo{Name: "소켓", Methods: map[string]string{}}

func registerNetworkFunctions(v *vm.VM) {
	v.RegisterBuiltin("소켓_열기", builtinOpenSocket)
}

// 소켓_열기(url) — dials url and returns an instance exposing 보내기(msg),
// 받기(), 닫기().
func builtinOpenSocket(v *vm.VM, args []vm.Value) (vm.Value, error) {
	url, err := stringArg(v, args, 0, "소켓_열기")
	if err != nil {
		return vm.Null, err
	}
	conn, derr := network.Dial(url)
	if derr != nil {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "소켓을 열 수 없습니다: %v", derr)
	}
	return vm.NewInstance(&vm.ClassInstance{
		Class: socketClass,
		Fields: map[string]vm.Value{
			"보내기": vm.NewBuiltin("보내기", func(vv *vm.VM, sargs []vm.Value) (vm.Value, error) {
				msg, serr := stringArg(vv, sargs, 0, "보내기")
				if serr != nil {
					return vm.Null, serr
				}
				if werr := conn.Send(msg); werr != nil {
					return vm.Null, vv.RuntimeError(errors.TypeMismatch, "메시지를 보낼 수 없습니다: %v", werr)
				}
				return vm.Null, nil
			}),
			"받기": vm.NewBuiltin("받기", func(vv *vm.VM, _ []vm.Value) (vm.Value, error) {
				msg, rerr := conn.Receive()
				if rerr != nil {
					return vm.Null, vv.RuntimeError(errors.TypeMismatch, "메시지를 받을 수 없습니다: %v", rerr)
				}
				return vm.Str(msg), nil
			}),
			"닫기": vm.NewBuiltin("닫기", func(vv *vm.VM, _ []vm.Value) (vm.Value, error) {
				conn.Close()
				return vm.Null, nil
			}),
		},
	}), nil
}
