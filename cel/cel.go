// Package cel builds element comparators from CEL expressions, for sorted
// container fields whose ordering is configured as data rather than code.
package cel

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// Evaluator contains the CEL expression & the cel program used to evaluate
// expression vs. input variables.
type Evaluator struct {
	Expression string
	program    cel.Program
}

// Instantiate a new CEL evaluator used to order a sorted field's elements.
// expression param is expected to be an expression that can compare elemX vs
// elemY, the two operands of a comparison, returning an int sign.
func NewEvaluator(name string, expression string) (*Evaluator, error) {
	if name == "" {
		return nil, fmt.Errorf("name can't be emptry string")
	}
	if expression == "" {
		return nil, fmt.Errorf("expression can't be emptry string")
	}

	env, err := cel.NewEnv(
		// Declare variables based on the expected context (JSON/map[string]any) data to be evaluated against.
		cel.Variable("elemX", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("elemY", cel.MapType(cel.StringType, cel.AnyType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %v", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error compiling CEL expression: %v", issues.Err())
	}
	p, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("error creating Program: %v", err)
	}
	return &Evaluator{
		Expression: expression,
		program:    p,
	}, nil
}

// Evaluates the CEL expression passed in on initialization vs a provided pair
// of comparison operands.
func (e *Evaluator) Evaluate(elemX map[string]any, elemY map[string]any) (int, error) {
	out, _, err := e.program.Eval(map[string]any{
		"elemX": elemX,
		"elemY": elemY,
	})
	if err != nil {
		return 0, fmt.Errorf("error evaluating CEL expression: %v", err)
	}
	nv, err := out.ConvertToNative(reflect.TypeOf(int(0)))
	if err != nil {
		return 0, fmt.Errorf("error ConvertToNative, got err: %v", err)
	}

	if v, ok := nv.(int); !ok {
		return 0, fmt.Errorf("error converting to int, nv: %v", nv)
	} else {
		return v, nil
	}
}

// NewComparator compiles the expression and returns a sco.ComparerFunc over
// raw elements. Struct elements surface their marshaled fields to the
// expression; scalar elements surface under the key "value". Evaluation
// failures fall back to sco.DefaultComparer.
func NewComparator(name string, expression string) (sco.ComparerFunc, error) {
	e, err := NewEvaluator(name, expression)
	if err != nil {
		return nil, err
	}
	return func(x, y any) int {
		mx, errX := toContext(x)
		my, errY := toContext(y)
		if errX != nil || errY != nil {
			return sco.DefaultComparer(x, y)
		}
		r, err := e.Evaluate(mx, my)
		if err != nil {
			return sco.DefaultComparer(x, y)
		}
		return r
	}, nil
}

// toContext renders an element as the map[string]any a comparator expression
// sees.
func toContext(v any) (map[string]any, error) {
	ba, err := encoding.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(ba, &m); err == nil {
		return m, nil
	}
	var scalar any
	if err := json.Unmarshal(ba, &scalar); err != nil {
		return nil, err
	}
	return map[string]any{"value": scalar}, nil
}
