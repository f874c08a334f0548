package testutil

import (
	"context"
	"time"

	"crm/pkg/requestcontext"
)

// Context returns a context carrying a fixed request time and request id, the
// state the HTTP middleware chain would have set.
func Context(now time.Time, requestID string) context.Context {
	ctx := requestcontext.WithTime(context.Background(), now)
	return requestcontext.WithRequestID(ctx, requestID)
}
