// Package actorctx carries the authenticated user id on a context.Context so
// log records written deep in a request can be attributed without passing
// the principal around just for logging.
package actorctx

import "context"

type ctxKey struct{}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ctxKey{}).(int64)

	return v, ok && v > 0
}
