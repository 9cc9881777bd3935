package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/schema"
)

// CalculatorName is the registered name of the calculator tool.
const CalculatorName = "calculator"

// ErrNotANumber is returned when an expression evaluates to something other than a number.
var ErrNotANumber = errors.New("expression did not evaluate to a number")

// Calculator evaluates an arithmetic expression such as "23 * 47" or "(3+5)/2".
// Expressions run in an empty environment: no variables, no user functions.
func Calculator() lessongraph.ToolDefinition {
	return lessongraph.ToolDefinition{
		Name:        CalculatorName,
		Description: "Evaluate an arithmetic expression, for example '23 * 47'.",
		Parameters: schema.Object(map[string]*schema.Property{
			"expression": schema.String("Arithmetic expression, e.g. (3+5)*2").MinLength(1),
		}, "expression"),
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			expression, _ := args["expression"].(string)
			result, err := Evaluate(expression)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("The result of %s is %s", strings.TrimSpace(expression), result), nil
		},
	}
}

// Evaluate runs expression and formats the numeric result.
func Evaluate(expression string) (string, error) {
	program, err := expr.Compile(expression, expr.Env(map[string]any{}))
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}
	out, err := expr.Run(program, map[string]any{})
	if err != nil {
		return "", fmt.Errorf("evaluation failed: %w", err)
	}

	switch v := out.(type) {
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%g", v), nil
	default:
		return "", fmt.Errorf("%w: got %T", ErrNotANumber, out)
	}
}
