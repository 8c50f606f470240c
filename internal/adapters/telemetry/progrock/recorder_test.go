package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vprogrock "github.com/vito/progrock"
	"go.trai.ch/interpose/internal/adapters/telemetry/progrock"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
	assert.Empty(t, recorder.Calls())
}

func TestRecorder_CollectsCalls(t *testing.T) {
	recorder := progrock.New()
	ctx := context.Background()

	ctx1, added := recorder.Record(ctx, "sample.Calculator.Add")
	fromCtx, ok := ports.VertexFromContext(ctx1)
	require.True(t, ok)
	assert.Same(t, added, fromCtx)
	added.Log(domain.LogLevelDebug, "debug msg")
	added.Complete(nil)

	_, cached := recorder.Record(ctx, "sample.Calculator.Add")
	cached.Cached()
	cached.Complete(nil)

	_, failed := recorder.Record(ctx, "sample.Calculator.Div")
	failed.Complete(errors.New("divide by zero"))

	_, running := recorder.Record(ctx, "sample.Calculator.Sum")
	_ = running

	calls := recorder.Calls()
	require.Len(t, calls, 4)

	assert.Equal(t, "sample.Calculator.Add", calls[0].Name)
	assert.Equal(t, progrock.CallCompleted, calls[0].Status)

	assert.Equal(t, "sample.Calculator.Add", calls[1].Name)
	assert.NotEqual(t, calls[0].ID, calls[1].ID, "repeated calls get their own vertex")
	assert.Equal(t, progrock.CallShortCircuited, calls[1].Status)

	assert.Equal(t, progrock.CallFailed, calls[2].Status)
	assert.Equal(t, "divide by zero", calls[2].Error)

	assert.Equal(t, progrock.CallRunning, calls[3].Status)

	require.NoError(t, recorder.Close())
}

func TestRecorder_ForeignWriter(t *testing.T) {
	recorder := progrock.NewRecorder(vprogrock.NewTape())

	_, vertex := recorder.Record(context.Background(), "sample.Calculator.Add")
	assert.Equal(t, "sample.Calculator.Add", vertex.(*progrock.Vertex).Name())
	vertex.Log(domain.LogLevelInfo, "entering")
	vertex.Log(domain.LogLevelError, "failing")
	vertex.Complete(nil)

	assert.Nil(t, recorder.Calls())
	require.NoError(t, recorder.Close())
}

func TestCallStatus_String(t *testing.T) {
	tests := []struct {
		status progrock.CallStatus
		want   string
	}{
		{progrock.CallRunning, "running"},
		{progrock.CallCompleted, "ok"},
		{progrock.CallShortCircuited, "short-circuit"},
		{progrock.CallFailed, "failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}
