package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hangeulscript/internal/compiler"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/jit"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/vm"
)

func TestLoadReturnsZeroConfigWhenNoFileExists(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
	t.Setenv("HOME", dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)
}

func TestLoadParsesHgsrcYaml(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	content := "vm:\n  max_instructions: 42\n  max_execution_time_ms: 10\n  max_stack_depth: 7\njit:\n  hot_threshold: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hgsrc.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.EqualValues(t, 42, cfg.VM.MaxInstructions)
	require.EqualValues(t, 10, cfg.VM.MaxExecutionTimeMs)
	require.Equal(t, 7, cfg.VM.MaxStackDepth)
	require.Equal(t, 3, cfg.JIT.HotThreshold)
}

// ApplyLimits must actually change the VM's enforced instruction ceiling,
// not merely parse into an unused struct: a program that loops well past a
// tiny configured MaxInstructions must hit RuntimeLimitExceeded.
func TestApplyLimitsEnforcesConfiguredInstructionCeiling(t *testing.T) {
	cfg := &Config{VM: VMConfig{MaxInstructions: 5}}

	dict := dictionary.Default()
	src := `정수 i = 0
i가 1부터 100까지 반복 {
    i = i + 1
}
`
	sc := lexer.New("<test>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<test>")
	stmts := p.Parse()
	require.Empty(t, p.Errors)

	c := compiler.New("<test>")
	chunk, cerrs := c.Compile(&parser.Program{Stmts: stmts})
	require.Empty(t, cerrs)

	v := vm.New()
	cfg.ApplyLimits(v)

	_, err := v.Run(chunk)
	require.Error(t, err)
	le, ok := err.(*errors.LangError)
	require.True(t, ok, "expected *errors.LangError, got %T", err)
	require.Equal(t, errors.RuntimeLimitExceeded, le.Kind)
}

func TestApplyJITWithThresholdDoesNotPanic(t *testing.T) {
	cfg := &Config{JIT: JITConfig{HotThreshold: 3}}
	rt := jit.NewRuntime()
	require.NotPanics(t, func() { cfg.ApplyJIT(rt) })
}

func TestApplyJITNoopWhenZero(t *testing.T) {
	cfg := &Config{}
	rt := jit.NewRuntime()
	require.NotPanics(t, func() { cfg.ApplyJIT(rt) })
}
