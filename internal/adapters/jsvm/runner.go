// Package jsvm executes bundle scripts in-process on the goja JavaScript engine.
package jsvm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ScriptRunner = (*Runner)(nil)

// maxCallDepth turns unbounded recursion, such as requiring a module that is
// part of an import cycle, into an error instead of exhausting memory.
const maxCallDepth = 10000

// Runner implements ports.ScriptRunner. Each Run uses a fresh runtime, so no
// global state leaks between scripts.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run evaluates script. console.log, console.info and console.debug write to
// stdout; console.warn and console.error write to stderr. Canceling ctx
// interrupts the script.
func (r *Runner) Run(ctx context.Context, name, script string, stdout, stderr io.Writer) error {
	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallDepth)

	if err := installConsole(vm, stdout, stderr); err != nil {
		return errors.Join(domain.ErrScriptFailed, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err := vm.RunScript(name, script)
	if err == nil {
		return nil
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return zerr.With(errors.Join(domain.ErrScriptFailed, err), "script", name)
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		wrapped := zerr.With(errors.Join(domain.ErrScriptFailed, err), "script", name)
		return zerr.With(wrapped, "exception", exception.Value().String())
	}

	return zerr.With(errors.Join(domain.ErrScriptFailed, err), "script", name)
}

func installConsole(vm *goja.Runtime, stdout, stderr io.Writer) error {
	console := vm.NewObject()

	printer := func(w io.Writer) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, formatValue(arg))
			}
			_, _ = fmt.Fprintln(w, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	for name, w := range map[string]io.Writer{
		"log":   stdout,
		"info":  stdout,
		"debug": stdout,
		"warn":  stderr,
		"error": stderr,
	} {
		if err := console.Set(name, printer(w)); err != nil {
			return err
		}
	}

	return vm.Set("console", console)
}

// formatValue renders a console argument. Plain objects and arrays are shown
// as JSON; everything else uses its string conversion.
func formatValue(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}

	switch obj.ClassName() {
	case "Object", "Array":
		data, err := obj.MarshalJSON()
		if err != nil {
			return v.String()
		}
		return string(data)
	default:
		return v.String()
	}
}
