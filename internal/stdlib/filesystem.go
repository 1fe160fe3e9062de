// File-system and misc utility built-ins, backed by internal/filesystem
// plus three new-to-the-spec wrappers (읽기쉬운크기/고유아이디/해시) that give
// the teacher's pack dependencies (go-humanize, uuid, bcrypt) a home even
// though the teacher itself never used them for this purpose.
package stdlib

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hangeulscript/internal/errors"
	"hangeulscript/internal/filesystem"
	"hangeulscript/internal/vm"
)

func registerFilesystemFunctions(v *vm.VM) {
	v.RegisterBuiltin("파일_읽기", builtinReadFile)
	v.RegisterBuiltin("파일_쓰기", builtinWriteFile)
	v.RegisterBuiltin("절대경로인가", builtinIsAbs)
	v.RegisterBuiltin("디렉토리인가", builtinIsDir)
	v.RegisterBuiltin("읽기쉬운크기", builtinHumanSize)
	v.RegisterBuiltin("고유아이디", builtinUUID)
	v.RegisterBuiltin("해시", builtinHash)
}

func builtinReadFile(v *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := stringArg(v, args, 0, "파일_읽기")
	if err != nil {
		return vm.Null, err
	}
	contents, rerr := filesystem.ReadFile(path)
	if rerr != nil {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "파일을 읽을 수 없습니다: %s (%v)", path, rerr)
	}
	return vm.Str(contents), nil
}

func builtinWriteFile(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "파일_쓰기는 인자 2개가 필요합니다")
	}
	path, err := stringArg(v, args, 0, "파일_쓰기")
	if err != nil {
		return vm.Null, err
	}
	contents, err := stringArg(v, args, 1, "파일_쓰기")
	if err != nil {
		return vm.Null, err
	}
	if werr := filesystem.WriteFile(path, contents); werr != nil {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "파일을 쓸 수 없습니다: %s (%v)", path, werr)
	}
	return vm.Null, nil
}

func builtinIsAbs(v *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := stringArg(v, args, 0, "절대경로인가")
	if err != nil {
		return vm.Null, err
	}
	return vm.Bool(filesystem.IsAbs(path)), nil
}

func builtinIsDir(v *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := stringArg(v, args, 0, "디렉토리인가")
	if err != nil {
		return vm.Null, err
	}
	return vm.Bool(filesystem.IsDir(path)), nil
}

// 읽기쉬운크기(n) — e.g. 1536 -> "1.5 kB".
func builtinHumanSize(v *vm.VM, args []vm.Value) (vm.Value, error) {
	n, err := numericArg(v, args, 0, "읽기쉬운크기")
	if err != nil {
		return vm.Null, err
	}
	return vm.Str(humanize.Bytes(uint64(n))), nil
}

// 고유아이디() — a fresh random (v4) UUID string.
func builtinUUID(v *vm.VM, args []vm.Value) (vm.Value, error) {
	return vm.Str(uuid.New().String()), nil
}

// 해시(password) — a bcrypt hash of password, for scripts storing
// credentials rather than plaintext.
func builtinHash(v *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := stringArg(v, args, 0, "해시")
	if err != nil {
		return vm.Null, err
	}
	hashed, herr := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if herr != nil {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "해시를 생성할 수 없습니다: %v", herr)
	}
	return vm.Str(string(hashed)), nil
}
