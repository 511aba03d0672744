package orm

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunehost/internal/compose"
)

// SessionMethod is the capability name [SessionTrait] provides.
const SessionMethod = "session"

// SessionTrait returns the trait granting a "session" method backed by c.
// The receiver of the composed type must implement [Handle].
func SessionTrait(c *Cache) compose.Trait {
	return compose.Trait{
		Name: "orm.Database",
		Methods: map[string]compose.Method{
			SessionMethod: func(ctx context.Context, recv any, _ ...any) (any, error) {
				h, ok := recv.(Handle)
				if !ok {
					return nil, fmt.Errorf("%w: %T has no connection url", ErrInvalidHandle, recv)
				}
				return c.Session(ctx, h)
			},
		},
	}
}

// SessionOf calls the session capability on obj.
func SessionOf(ctx context.Context, obj compose.Caller) (*Session, error) {
	v, err := obj.Call(ctx, SessionMethod)
	if err != nil {
		return nil, err
	}

	s, ok := v.(*Session)
	if !ok {
		return nil, fmt.Errorf("%w: session capability returned %T", ErrInvalidHandle, v)
	}
	return s, nil
}
