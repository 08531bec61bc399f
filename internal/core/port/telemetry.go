package port

import (
	"context"
	"time"
)

type Span interface {
	End()
	SetAttributes(attrs map[string]interface{})
	SetStatus(code string, message string)
	RecordError(err error)
}

// Telemetry lets the core emit spans and events without knowing the backend.
type Telemetry interface {
	StartStoreSpan(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, Span)
	StartServiceSpan(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, Span)

	RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error)
	RecordServiceOperation(ctx context.Context, operation string, duration time.Duration, err error)

	RecordCollectionSize(ctx context.Context, n int)
	RecordBusinessEvent(ctx context.Context, event string, todoID int, metadata map[string]interface{})
	RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{})
}
