package mongo

import (
	"context"
	"time"
)

// OpTimeout bounds every single repository operation.
const OpTimeout = 5 * time.Second

// withTimeout keeps ctx when its deadline is already within d (or it is done),
// otherwise it derives a context that expires after d. cancel is always safe to defer.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx.Err() != nil {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, OpTimeout)
}
