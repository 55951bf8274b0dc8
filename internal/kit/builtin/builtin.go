// Package builtin provides the small set of generic, domain-free
// handlers a composed board needs for trivial wiring (pass a value
// through, fan a value onto every output port, transform a string,
// fail deliberately for error-path testing) — the board-execution
// analogue of the teacher's tools.Registry entries, minus anything
// that calls out to an LLM or external API.
package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
)

// Passthrough copies its "value" input to a "value" output unchanged.
// Useful as a no-op node in test boards and as a default when a board
// author hasn't wired real logic yet.
func Passthrough() handler.Handler {
	return handler.Handler{
		Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"value": inputs["value"]}, nil
		},
		Describe: describe("copies its value input to its value output unchanged"),
	}
}

// Dupe copies its "value" input onto both "a" and "b" outputs, useful
// for exercising fan-out through two normal edges off one node.
func Dupe() handler.Handler {
	return handler.Handler{
		Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			v := inputs["value"]
			return map[string]interface{}{"a": v, "b": v}, nil
		},
		Describe: describe("copies its value input onto both its a and b outputs"),
	}
}

// StarPassthrough returns every input it was given, unmodified, so a
// star out-port can deliver the whole map to every matching edge.
func StarPassthrough() handler.Handler {
	return handler.Handler{
		Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			out := make(map[string]interface{}, len(inputs))
			for k, v := range inputs {
				out[k] = v
			}
			return out, nil
		},
		Describe: describe("returns every input unmodified, for exercising star out-ports"),
	}
}

// Uppercase transforms a string "value" input to its upper-cased form.
func Uppercase() handler.Handler {
	return handler.Handler{
		Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			s, _ := inputs["value"].(string)
			return map[string]interface{}{"value": strings.ToUpper(s)}, nil
		},
		Describe: describe("upper-cases its string value input"),
	}
}

// AlwaysError fails every invocation, for exercising the folded
// "$error" output-port path without needing a real handler to break.
func AlwaysError() handler.Handler {
	return handler.Handler{
		Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			return nil, fmt.Errorf("builtin always-error handler invoked")
		},
		Describe: describe("always fails, for exercising error-path handling"),
	}
}

// ModuleExecutor is the capability contract a lifted imperative
// descriptor's runModule node hands execution off to: given the named
// module and the star-delivered input bag, run it and return its
// output bag. Sandboxing and module resolution are entirely the
// embedder's concern — this package never executes arbitrary code.
type ModuleExecutor func(ctx context.Context, module string, inputs map[string]interface{}) (map[string]interface{}, error)

// RunModule adapts a ModuleExecutor into the handler board.Lift's
// synthetic runModule node resolves to.
func RunModule(exec ModuleExecutor) handler.Handler {
	return handler.Handler{
		Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			module, _ := inputs[board.ModuleConfigKey].(string)
			bag, _ := inputs[board.StarPort].(map[string]interface{})
			return exec(ctx, module, bag)
		},
		Describe: describe("invokes the named module through the registered ModuleExecutor capability"),
	}
}

// UnsandboxedModuleExecutor is the ModuleExecutor a runModule handler
// falls back to absent an embedder-supplied one: it fails every call,
// surfacing the missing capability as a clear error rather than
// silently no-oping.
func UnsandboxedModuleExecutor(ctx context.Context, module string, inputs map[string]interface{}) (map[string]interface{}, error) {
	return nil, fmt.Errorf("no ModuleExecutor registered; cannot run module %q", module)
}

func describe(text string) func() map[string]interface{} {
	return func() map[string]interface{} { return map[string]interface{}{"description": text} }
}

// Kit bundles all builtin handlers under their conventional node types.
func Kit() handler.Kit {
	return handler.Kit{
		"builtin.passthrough":      Passthrough(),
		"builtin.dupe":             Dupe(),
		"builtin.star_passthrough": StarPassthrough(),
		"builtin.uppercase":        Uppercase(),
		"builtin.always_error":     AlwaysError(),
		board.RunModuleNodeType:    RunModule(UnsandboxedModuleExecutor),
	}
}
