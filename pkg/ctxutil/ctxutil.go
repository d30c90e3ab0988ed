package ctxutil

import "context"

type ctxKey string

const (
	requestIDKey   ctxKey = "request_id"
	requestMetaKey ctxKey = "request_meta"
)

// RequestMeta carries the transport-level metadata captured with audit
// entries. It is threaded through the context by the HTTP middleware; the
// engine itself never reads ambient session state (actors are passed
// explicitly into every mutating call).
type RequestMeta struct {
	IP        string
	UserAgent string
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithRequestMeta stores request metadata in the context.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, meta)
}

// RequestMetaFromCtx extracts request metadata from the context.
// Returns a zero RequestMeta and false if absent.
func RequestMetaFromCtx(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey).(RequestMeta)
	return meta, ok
}
