package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestOTelTracer_Span(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "kiln")

	_, span := tracer.Start(context.Background(), "css", ports.WithKind("transform"))
	span.SetAttribute("inputs", 3)
	span.SetAttribute("outputs", []string{"dist/css/main.min.css"})
	span.SetAttribute("cached", false)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("other", time.Second)
	n, err := span.Write([]byte("dist/css/main.min.css\n"))
	require.NoError(t, err)
	assert.Equal(t, 22, n)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "css", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "transform", attrs["kiln.kind"].AsString())
	assert.Equal(t, int64(3), attrs["inputs"].AsInt64())
	assert.Equal(t, []string{"dist/css/main.min.css"}, attrs["outputs"].AsStringSlice())
	assert.False(t, attrs["cached"].AsBool())
	assert.InDelta(t, 0.5, attrs["ratio"].AsFloat64(), 0)
	assert.Equal(t, "1s", attrs["other"].AsString())

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
}

func TestOTelTracer_RecordError(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "kiln")

	_, span := tracer.Start(context.Background(), "svg")
	span.RecordError(nil)
	span.RecordError(errors.New("boom"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().OnPlanEmit([]string{"html", "css"}).Times(2)

	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "kiln").WithRenderer(renderer)

	// No span in context: only the renderer hears about the plan.
	tracer.EmitPlan(context.Background(), []string{"html", "css"})
	assert.Empty(t, sr.Ended())

	ctx, root := tp.Tracer("test").Start(context.Background(), "root")
	tracer.EmitPlan(ctx, []string{"html", "css"})
	root.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)
}

func TestOTelTracer_StreamsOutputToRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := telemetry.NewProvider(renderer)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := telemetry.NewOTelTracer(tp, "kiln").WithRenderer(renderer).WithFlushInterval(time.Hour)

	var spanID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "images", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { spanID = id }),
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("a.png\nb.png\n")).
			Do(func(id string, _ []byte) { assert.Equal(t, spanID, id) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	_, span := tracer.Start(context.Background(), "images")
	_, err := span.Write([]byte("a.png\n"))
	require.NoError(t, err)
	_, err = span.Write([]byte("b.png\n"))
	require.NoError(t, err)
	span.End()
}

func TestOTelTracer_GlobalProvider(t *testing.T) {
	tracer := telemetry.NewOTelTracer(nil, "kiln")
	_, span := tracer.Start(context.Background(), "noop")
	n, err := span.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	span.End()
}
