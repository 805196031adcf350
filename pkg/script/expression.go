package script

import (
	"errors"
	"fmt"

	"github.com/dshills/canvasundo/pkg/scene"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrInvalidExpression is returned when an attribute expression fails to
// compile or run.
var ErrInvalidExpression = errors.New("invalid expression")

// evaluator compiles attribute expressions once and runs them against a
// cell's attributes. The cell ID is available as id.
type evaluator struct {
	programs map[string]*vm.Program
}

func newEvaluator() *evaluator {
	return &evaluator{programs: make(map[string]*vm.Program)}
}

// evaluate computes every expression against the same view of cell, so the
// order in which the keys are evaluated does not matter.
func (e *evaluator) evaluate(cell scene.Cell, exprs map[string]string) (scene.Attributes, error) {
	env := make(map[string]any, len(cell.Attributes)+1)
	for k, v := range cell.Attributes.Clone() {
		env[k] = v
	}
	env["id"] = cell.ID

	out := make(scene.Attributes, len(exprs))
	for key, source := range exprs {
		program, err := e.program(source)
		if err != nil {
			return nil, err
		}
		value, err := vm.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("%w: %s = %s: %v", ErrInvalidExpression, key, source, err)
		}
		out[key] = value
	}
	return out, nil
}

func (e *evaluator) program(source string) (*vm.Program, error) {
	if program, ok := e.programs[source]; ok {
		return program, nil
	}
	program, err := expr.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidExpression, source, err)
	}
	e.programs[source] = program
	return program, nil
}
