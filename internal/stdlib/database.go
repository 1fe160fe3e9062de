// Database built-ins, backed by internal/database. 데이터베이스_연결 returns
// a class-shaped instance whose single "질의" field is a bound closure over
// the open *sql.DB — Value has no generic opaque-handle kind, so a
// connection is represented the same way a user-defined object is,
// matching how internal/vm.indexGet already returns a Fields entry
// verbatim when it holds a callable Value.
package stdlib

import (
	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/database"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/vm"
)

var databaseConnClass = &bytecode.ClassInfo{Name: "데이터베이스연결", Methods: map[string]string{}}

func registerDatabaseFunctions(v *vm.VM) {
	v.RegisterBuiltin("데이터베이스_연결", builtinDatabaseConnect)
	v.RegisterBuiltin("질의", builtinQueryStandalone)
}

// 데이터베이스_연결(driver, dsn) — driver is one of "mysql", "postgres",
// "sqlite3", "mssql" (database/sql driver names, not module-qualified
// aliases) — returns an instance exposing 질의(sql, ...).
func builtinDatabaseConnect(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "데이터베이스_연결은 인자 2개가 필요합니다")
	}
	driver, err := stringArg(v, args, 0, "데이터베이스_연결")
	if err != nil {
		return vm.Null, err
	}
	dsn, err := stringArg(v, args, 1, "데이터베이스_연결")
	if err != nil {
		return vm.Null, err
	}
	conn, cerr := database.Connect(driver, dsn)
	if cerr != nil {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "데이터베이스에 연결할 수 없습니다: %v", cerr)
	}
	return vm.NewInstance(&vm.ClassInstance{
		Class: databaseConnClass,
		Fields: map[string]vm.Value{
			"질의": vm.NewBuiltin("질의", func(vv *vm.VM, qargs []vm.Value) (vm.Value, error) {
				return runQuery(vv, conn, qargs)
			}),
		},
	}), nil
}

// 질의(conn, sql) — a free-standing alias for conn.질의(sql), matching the
// module-qualified name SPEC_FULL.md §6 lists alongside 데이터베이스_연결.
func builtinQueryStandalone(v *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) < 1 || args[0].Kind != vm.KindClassInstance || args[0].Instance.Class != databaseConnClass {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "질의의 첫 번째 인자는 데이터베이스_연결의 결과여야 합니다")
	}
	bound, ok := args[0].Instance.Fields["질의"]
	if !ok || bound.Kind != vm.KindBuiltin {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "연결 객체에 질의 메소드가 없습니다")
	}
	return bound.Builtin(v, args[1:])
}

func runQuery(v *vm.VM, conn *database.Conn, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null, v.RuntimeError(errors.ArityMismatch, "질의는 SQL 문자열 인자 1개가 필요합니다")
	}
	sql, err := stringArg(v, args, 0, "질의")
	if err != nil {
		return vm.Null, err
	}
	rows, qerr := conn.Query(sql)
	if qerr != nil {
		return vm.Null, v.RuntimeError(errors.TypeMismatch, "질의를 실행할 수 없습니다: %v", qerr)
	}
	out := make([]vm.Value, len(rows))
	for i, row := range rows {
		cols := make(map[string]vm.Value, len(row))
		for k, val := range row {
			cols[k] = vm.Str(val)
		}
		out[i] = vm.NewDictionary(cols)
	}
	return vm.NewArray(out), nil
}
