package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	scheduleSpanName  = "portal.schedule.fetch"
	scheduleEventName = "schedule_request"
	tracerName        = "resident-portal/api"
)

// scheduleRequestMetrics collects per-request timings for the schedule fetch
// path and emits them as one structured log line plus an otel span.
type scheduleRequestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time

	authDuration   time.Duration
	bucketDuration time.Duration
	view           string
	eventsReturned int
	errorStage     string
}

func newScheduleRequestMetrics(ctx context.Context, logger *log.Logger) (*scheduleRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, scheduleSpanName)
	m := &scheduleRequestMetrics{
		logger: logger,
		span:   span,
		start:  time.Now(),
	}
	return m, spanCtx
}

func (m *scheduleRequestMetrics) ObserveAuth(d time.Duration) {
	if d > 0 {
		m.authDuration = d
	}
}

func (m *scheduleRequestMetrics) ObserveBucketing(d time.Duration) {
	if d > 0 {
		m.bucketDuration = d
	}
}

func (m *scheduleRequestMetrics) SetView(view string) {
	m.view = view
}

func (m *scheduleRequestMetrics) SetEventsReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.eventsReturned = count
}

func (m *scheduleRequestMetrics) SetErrorStage(stage string) {
	if stage != "" {
		m.errorStage = stage
	}
}

// Log finishes the span and writes the metrics line. Call exactly once per
// request, after the response status is known.
func (m *scheduleRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	total := time.Since(m.start)
	fields := log.Fields{
		"route":           "/api/residents/:id/schedule",
		"status":          status,
		"view":            m.view,
		"total_ms":        durationToMillis(total),
		"events_returned": m.eventsReturned,
	}
	if m.authDuration > 0 {
		fields["auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.bucketDuration > 0 {
		fields["bucket_ms"] = durationToMillis(m.bucketDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("http.route", "/api/residents/:id/schedule"),
			attribute.Int("http.status_code", status),
			attribute.String("portal.schedule.view", m.view),
			attribute.Int("portal.schedule.events_returned", m.eventsReturned),
			attribute.Float64("portal.schedule.total_ms", durationToMillis(total)),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("portal.schedule.error_stage", m.errorStage))
		}
		if err != nil {
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
		m.span.End()
	}

	m.logger.WithFields(fields).Info(scheduleEventName)
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
