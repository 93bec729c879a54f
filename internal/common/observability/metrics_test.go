package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("assessment-engine-test", WithRegisterer(promclient.NewRegistry()), WithSpanProcessor(recorder))
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "aggregate", attribute.String("class_level", "10th"))
	EndSpan(span, nil)
	_, failed := obs.StartSpan(ctx, "record")
	EndSpan(failed, errors.New("timeout"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "aggregate", ended[0].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, ended[0].SpanContext().TraceID(), ended[1].SpanContext().TraceID())
}

func TestMetrics_ExportedToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New("assessment-engine-test", WithRegisterer(reg))
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordSubmission(ctx, "12th", "ok")
	obs.RecordJobProcessed(ctx, "completed")
	obs.RecordJobDuration(ctx, 12*time.Millisecond, "completed")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["assessments_submitted_total"], "got %v", names)
	assert.True(t, names["jobs_processed_total"], "got %v", names)
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	_, span := obs.StartSpan(context.Background(), "noop")
	EndSpan(span, nil)
	obs.RecordSubmission(context.Background(), "10th", "ok")
	obs.Shutdown()
}
