package hydrate

import (
	"log"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// programs caches compiled expressions by source so repeated hydrations of
// the same type never recompile.
var programs sync.Map // string -> *vm.Program

func compiledProgram(src string) (*vm.Program, error) {
	if cached, ok := programs.Load(src); ok {
		return cached.(*vm.Program), nil
	}
	prog, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	programs.Store(src, prog)
	return prog, nil
}

// applyComputed evaluates a template's computed-field expressions against the
// hydrated row and assigns the results. Runs last so expressions can read
// resolved relations and arrays. A failing expression skips only its own
// field.
func (h *Hydrator) applyComputed(row map[string]any, computed map[string]string) {
	if len(computed) == 0 {
		return
	}

	names := make([]string, 0, len(computed))
	for name := range computed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prog, err := compiledProgram(computed[name])
		if err != nil {
			log.Printf("WARN: computed field %s: compile: %v", name, err)
			continue
		}
		out, err := expr.Run(prog, row)
		if err != nil {
			log.Printf("WARN: computed field %s: eval: %v", name, err)
			continue
		}
		row[name] = out
	}
}
