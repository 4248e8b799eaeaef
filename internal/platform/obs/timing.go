package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey carries the request correlation ID through a context.
// CLI runs leave it unset, so the log line omits the key entirely.
const RequestIDKey ctxKey = "req_id"

// Time logs the duration of an operation when the returned function is
// deferred. Pass the address of the named error return so failures are
// logged with the timing.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	prefix := ""
	if reqID != "" {
		prefix = "req_id=" + reqID + " "
	}

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("%sop=%s dur=%dms err=%v", prefix, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("%sop=%s dur=%dms", prefix, name, dur.Milliseconds())
	}
}
