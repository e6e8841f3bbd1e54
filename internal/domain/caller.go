package domain

import "context"

// Caller is the identity bound to the current request. A nil *Caller is anonymous.
type Caller struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

func (c *Caller) IsAdmin() bool { return c != nil && c.Role == RoleAdmin }

type callerKey struct{}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerKey{}).(*Caller)
	return c
}
