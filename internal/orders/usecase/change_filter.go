package usecase

import (
	"fmt"

	"mongo-tracing/internal/orders/domain/model"
	apperrors "mongo-tracing/internal/shared/errors"

	"github.com/google/cel-go/cel"
)

// ChangeFilter selects change events with a CEL expression over three
// variables: operation (string), orderId (string) and order (a map, null
// for deletes). For example:
//
//	operation == "update" && order.status == "paid" && order.total > 100.0
type ChangeFilter struct {
	expression string
	program    cel.Program
}

func newFilterEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("operation", cel.StringType),
		cel.Variable("orderId", cel.StringType),
		cel.Variable("order", cel.DynType),
	)
}

// CompileChangeFilter parses expression. The expression must evaluate to
// a bool; anything else is a validation error.
func CompileChangeFilter(expression string) (*ChangeFilter, error) {
	env, err := newFilterEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, invalidFilter(expression, issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
		return nil, invalidFilter(expression, fmt.Sprintf("expression returns %s, not bool", ast.OutputType()))
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, invalidFilter(expression, err.Error())
	}
	return &ChangeFilter{expression: expression, program: program}, nil
}

// String returns the source expression.
func (f *ChangeFilter) String() string {
	return f.expression
}

// Match reports whether ev passes the filter. Evaluation errors, such as
// reading order.status on a delete, count as no match.
func (f *ChangeFilter) Match(ev model.ChangeEvent) bool {
	out, _, err := f.program.Eval(map[string]interface{}{
		"operation": ev.OperationType,
		"orderId":   ev.OrderID(),
		"order":     orderVars(ev.FullDocument),
	})
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}

func orderVars(order *model.Order) interface{} {
	if order == nil {
		return nil
	}
	items := make([]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"sku":       item.SKU,
			"quantity":  int64(item.Quantity),
			"unitPrice": item.UnitPrice,
		})
	}
	return map[string]interface{}{
		"id":        order.ID.Hex(),
		"customer":  order.Customer,
		"status":    string(order.Status),
		"total":     order.Total,
		"items":     items,
		"createdAt": order.CreatedAt,
	}
}

func invalidFilter(expression, reason string) error {
	return apperrors.NewValidationError("invalid watch filter").
		WithCause(apperrors.ErrInvalidFilter).
		WithDetail("filter", expression).
		WithDetail("reason", reason)
}
