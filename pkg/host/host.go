// Package host executes compiled modules with wazero, supplying the
// "imports" namespace the compiler links against.
package host

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

const (
	Namespace  = "imports"
	EntryPoint = "_start"
)

type Options struct {
	// Stdout receives print output. Nil discards it.
	Stdout io.Writer
}

// Result is the entry point's return value. HasValue is false when the
// program's result type was none and _start returned nothing.
type Result struct {
	Value    int32
	HasValue bool
}

// Run instantiates binary in a fresh runtime and calls its entry point.
// Traps are returned as errors. Cancelling ctx stops a running program.
func Run(ctx context.Context, binary []byte, opts Options) (Result, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	defer runtime.Close(ctx)

	if _, err := Instantiate(ctx, runtime, stdout); err != nil {
		return Result{}, err
	}
	compiled, err := runtime.CompileModule(ctx, binary)
	if err != nil {
		return Result{}, errors.Wrap(err, "host: compile module")
	}
	// Start functions are disabled so _start runs exactly once, below.
	config := wazero.NewModuleConfig().WithName("program").WithStartFunctions()
	mod, err := runtime.InstantiateModule(ctx, compiled, config)
	if err != nil {
		return Result{}, errors.Wrap(err, "host: instantiate module")
	}
	entry := mod.ExportedFunction(EntryPoint)
	if entry == nil {
		return Result{}, errors.Errorf("host: module does not export %s", EntryPoint)
	}
	results, err := entry.Call(ctx)
	if err != nil {
		return Result{}, errors.Wrapf(err, "host: run %s", EntryPoint)
	}
	if len(results) == 0 {
		return Result{}, nil
	}
	return Result{Value: api.DecodeI32(results[0]), HasValue: true}, nil
}

// Instantiate registers the host namespace in runtime.
func Instantiate(ctx context.Context, runtime wazero.Runtime, stdout io.Writer) (api.Module, error) {
	builder := runtime.NewHostModuleBuilder(Namespace)
	builder.NewFunctionBuilder().WithFunc(printer(stdout, FormatNum)).Export("print_num")
	builder.NewFunctionBuilder().WithFunc(printer(stdout, FormatBool)).Export("print_bool")
	builder.NewFunctionBuilder().WithFunc(printer(stdout, FormatNone)).Export("print_none")
	builder.NewFunctionBuilder().WithFunc(Abs).Export("abs")
	builder.NewFunctionBuilder().WithFunc(Max).Export("max")
	builder.NewFunctionBuilder().WithFunc(Min).Export("min")
	builder.NewFunctionBuilder().WithFunc(Pow).Export("pow")
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "host: instantiate imports")
	}
	return mod, nil
}

// printer writes one formatted value per line and hands the value back.
func printer(w io.Writer, format func(int32) string) func(int32) int32 {
	return func(v int32) int32 {
		fmt.Fprintln(w, format(v))
		return v
	}
}

func FormatNum(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func FormatNone(int32) string {
	return "None"
}

func FormatBool(v int32) string {
	if v != 0 {
		return "True"
	}
	return "False"
}

// Abs wraps like the i32 it operates on: Abs(math.MinInt32) is math.MinInt32.
func Abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func Max(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func Min(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Pow is integer exponentiation with 32-bit wrap-around. A negative
// exponent yields 0.
func Pow(base, exp int32) int32 {
	if exp < 0 {
		return 0
	}
	result := int32(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
