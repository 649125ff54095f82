package compiler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/specialistvlad/gridc/internal/ctxlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("gridc.compiler")
	meter  = otel.Meter("gridc.compiler")
)

var (
	metricsOnce   sync.Once
	compileTotal  metric.Int64Counter
	copiesTotal   metric.Int64Counter
	freesTotal    metric.Int64Counter
	buildDuration metric.Float64Histogram
)

// initMetrics lazily creates the instruments. Failures only degrade
// observability.
func initMetrics(ctx context.Context) {
	metricsOnce.Do(func() {
		var failed []string
		var err error

		compileTotal, err = meter.Int64Counter("gridc_compile_total",
			metric.WithDescription("Number of graph compilations"),
		)
		if err != nil {
			failed = append(failed, "compile_total: "+err.Error())
		}
		copiesTotal, err = meter.Int64Counter("gridc_copies_total",
			metric.WithDescription("Number of value copies emitted by forwarding"),
		)
		if err != nil {
			failed = append(failed, "copies_total: "+err.Error())
		}
		freesTotal, err = meter.Int64Counter("gridc_frees_total",
			metric.WithDescription("Number of value frees emitted by forwarding"),
		)
		if err != nil {
			failed = append(failed, "frees_total: "+err.Error())
		}
		buildDuration, err = meter.Float64Histogram("gridc_compile_duration_seconds",
			metric.WithDescription("Time spent compiling a graph"),
			metric.WithUnit("s"),
		)
		if err != nil {
			failed = append(failed, "compile_duration: "+err.Error())
		}

		if len(failed) > 0 {
			ctxlog.FromContext(ctx).Error("Failed to initialize some compiler metrics.",
				slog.Int("failed_count", len(failed)),
				slog.Any("errors", failed),
			)
		}
	})
}

func recordCompile(ctx context.Context, name, result string, copies, frees int, seconds float64) {
	initMetrics(ctx)
	attrs := metric.WithAttributes(attribute.String("function", name), attribute.String("result", result))
	if compileTotal != nil {
		compileTotal.Add(ctx, 1, attrs)
	}
	if buildDuration != nil {
		buildDuration.Record(ctx, seconds, attrs)
	}
	fn := metric.WithAttributes(attribute.String("function", name))
	if copiesTotal != nil && copies > 0 {
		copiesTotal.Add(ctx, int64(copies), fn)
	}
	if freesTotal != nil && frees > 0 {
		freesTotal.Add(ctx, int64(frees), fn)
	}
}
