package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/waypoint/pkg/backstack"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsBackStackActivity(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	b, err := backstack.New("home", backstack.WithLifecycleHooks[string](metrics.Hooks()))
	require.NoError(t, err)

	require.NoError(t, b.Push(ctx, "settings"))
	_, err = b.Remove(ctx, domain.ElementKey{ID: 2})
	require.NoError(t, err)
	for _, el := range b.Snapshot() {
		b.OnTransitionFinished(ctx, el.Key.Key())
	}
	_, err = b.Remove(ctx, domain.ElementKey{ID: 1})
	require.Error(t, err)
	_, err = b.Pop(ctx)
	require.NoError(t, err)

	expected := `
# HELP waypoint_operations_total Operations submitted to a model, by outcome
# TYPE waypoint_operations_total counter
waypoint_operations_total{model="backstack",operation="pop",outcome="ignored"} 1
waypoint_operations_total{model="backstack",operation="push",outcome="applied"} 1
waypoint_operations_total{model="backstack",operation="remove",outcome="applied"} 1
waypoint_operations_total{model="backstack",operation="remove",outcome="rejected"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "waypoint_operations_total"))

	transitions := `
# HELP waypoint_transitions_finished_total Element transitions that finished, by whether the element was pruned
# TYPE waypoint_transitions_finished_total counter
waypoint_transitions_finished_total{model="backstack",pruned="false"} 1
waypoint_transitions_finished_total{model="backstack",pruned="true"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(transitions), "waypoint_transitions_finished_total"))

	metrics.SetElements("backstack", len(b.All()))
	n, err := testutil.GatherAndCount(reg, "waypoint_elements")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, err := backstack.New("home", backstack.WithLifecycleHooks[string](observability.LoggingHooks(logger)))
	require.NoError(t, err)
	require.NoError(t, b.Push(context.Background(), "next"))

	assert.Contains(t, buf.String(), "operation=push")
	assert.Contains(t, buf.String(), "applied=true")
}
