package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "github.com/Vinw199/Voice-note/internal/api"
	requestSpanName = "notes.request"
	errorStageKey   = "error_stage"
)

func setErrorStage(c echo.Context, stage string) {
	if stage == "" {
		return
	}
	c.Set(errorStageKey, stage)
}

// requestMetrics opens a span per request and emits one log entry with
// route, status and duration when it completes.
func requestMetrics(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx, span := otel.Tracer(tracerName).Start(req.Context(), requestSpanName,
				trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			stage, _ := c.Get(errorStageKey).(string)

			route := c.Path()
			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if stage != "" {
				span.SetAttributes(attribute.String("notes.error_stage", stage))
			}
			if status >= http.StatusInternalServerError {
				msg := http.StatusText(status)
				if err != nil {
					msg = err.Error()
				}
				span.SetStatus(codes.Error, msg)
			} else {
				span.SetStatus(codes.Ok, "")
			}

			fields := log.Fields{
				"route":    route,
				"method":   req.Method,
				"status":   status,
				"total_ms": durationToMillis(time.Since(start)),
			}
			if stage != "" {
				fields["error_stage"] = stage
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			if sc := span.SpanContext(); sc.HasTraceID() {
				fields["trace_id"] = sc.TraceID().String()
			}
			logger.WithFields(fields).Info(requestSpanName)
			return err
		}
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
