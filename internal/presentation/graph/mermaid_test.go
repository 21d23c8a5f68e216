package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	nav, err := waypoint.New("home")
	require.NoError(t, err)

	out := graph.GenerateMermaid(nav.Snapshot())
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, `e1(["home #1"])`)
	assert.Contains(t, out, "class e1 active;")

	require.NoError(t, nav.Push(ctx, `say "hi"`))
	out = graph.GenerateMermaid(nav.Snapshot())
	assert.Contains(t, out, `e1["home #1 <br/> ON_SCREEN → STASHED_IN_BACK_STACK"]`)
	assert.Contains(t, out, `e2(["say 'hi' #2 <br/> CREATED → ON_SCREEN"])`)
	assert.Contains(t, out, "e1 -. push .-> e2")
	assert.Contains(t, out, "class e2 active;")

	nav.Settle(ctx)
	out = graph.GenerateMermaid(nav.Snapshot())
	assert.Contains(t, out, `e1["home #1"]`)
	assert.Contains(t, out, "e1 --> e2")
}
