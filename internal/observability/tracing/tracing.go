package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TracingContextKey string

const TracingInfoKey = TracingContextKey("requestTracingInfo")
const TraceIdKey = TracingContextKey("requestTraceId")

type SpanDetail struct {
	Name     string
	Duration int64
}

type TracingInfo struct {
	SpanDetails []SpanDetail
}

func (t *TracingInfo) addSpanDetail(detail SpanDetail) {
	t.SpanDetails = append(t.SpanDetails, detail)
}

// AttachTracingIntoContext gives the request a trace id and an empty span list.
func AttachTracingIntoContext(ctx context.Context) context.Context {
	traceId := uuid.New().String()
	ctx = context.WithValue(ctx, TraceIdKey, traceId)
	return context.WithValue(ctx, TracingInfoKey, &TracingInfo{})
}

// WrapWithSpan times next and records it on the request's TracingInfo.
// Calls made outside a request, such as timer callbacks or queue handlers,
// are timed but not recorded.
func WrapWithSpan[Result any](ctx context.Context, name string, next func() (Result, error)) (Result, error) {
	tracingInfo, _ := ctx.Value(TracingInfoKey).(*TracingInfo)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Milliseconds()
		if tracingInfo != nil {
			tracingInfo.addSpanDetail(SpanDetail{Name: name, Duration: duration})
			return
		}
		log.Ctx(ctx).Trace().Str("span", name).Int64("duration", duration).Msg("span finished outside request")
	}()

	return next()
}

// WrapWithSpanNoResult is WrapWithSpan for calls that only return an error.
func WrapWithSpanNoResult(ctx context.Context, name string, next func() error) error {
	_, err := WrapWithSpan[struct{}](ctx, name, func() (struct{}, error) {
		return struct{}{}, next()
	})
	return err
}
