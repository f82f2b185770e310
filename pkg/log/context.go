package log

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey int

const (
	requestIDKey contextKey = iota
	fieldsKey
)

// WithRequestID returns a context carrying a request ID. Every entry
// logged under the context includes it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID carried by ctx, or the
// empty string.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithFields returns a context carrying structured fields, merged
// over any fields already present. The crawl path uses this to stamp
// every log line under one archive with its path.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	existing := FieldsFromContext(ctx)
	fields := make(map[string]any, len(existing)+len(keysAndValues)/2)
	for k, v := range existing {
		fields[k] = v
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return context.WithValue(ctx, fieldsKey, fields)
}

// FieldsFromContext returns the fields carried by ctx, nil when there
// are none. Callers must not mutate the returned map.
func FieldsFromContext(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey).(map[string]any)
	return fields
}
