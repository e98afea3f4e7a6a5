// ABOUTME: Request-scoped operator identity carried through context
// ABOUTME: Shared WithOperator/FromContext pattern for middleware and handlers

package auth

import "context"

// Operator identifies the authenticated caller of an admin API request.
type Operator struct {
	// ID is the JWT subject, or "api-key" for static key credentials.
	ID string
}

type contextKey string

const operatorContextKey contextKey = "auth_operator"

// WithOperator returns a context carrying the operator identity.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, op)
}

// FromContext extracts the operator identity, if any.
func FromContext(ctx context.Context) (*Operator, bool) {
	op, ok := ctx.Value(operatorContextKey).(*Operator)
	return op, ok
}
