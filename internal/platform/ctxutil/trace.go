package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the identifiers attached to every inbound request.
type TraceData struct {
	TraceID   string
	RequestID string
	// Route is the matched gin route, e.g. "/cidade/:id".
	Route string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the non-empty trace_id, request_id and route pairs.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	fields := make([]interface{}, 0, 6)
	if td.TraceID != "" {
		fields = append(fields, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		fields = append(fields, "request_id", td.RequestID)
	}
	if td.Route != "" {
		fields = append(fields, "route", td.Route)
	}
	return fields
}
