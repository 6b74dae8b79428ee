package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/graph"
	"github.com/vk/supertrace/internal/inmemorystore"
	"github.com/vk/supertrace/internal/logparser"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/tracemodel"
)

// Canned logs used across packages.
const (
	// LogSingleStep has nodes 1,2 initially active; one message 1->3 at step 0.
	LogSingleStep = "Initial nodes,1,2\n" +
		"Message Passed,1,3,0\n"

	// LogTwoSteps has messages 1->2 at step 0 and 2->3 at step 1.
	LogTwoSteps = "Initial nodes,1\n" +
		"Message Passed,1,2,0\n" +
		"Message Passed,2,3,1\n"

	// LogThreeSteps spans supersteps 0..2, with two messages in step 1.
	LogThreeSteps = "Initial nodes,1\n" +
		"Message Passed,1,2,0\n" +
		"Message Passed,2,3,1\n" +
		"Message Passed,2,4,1\n" +
		"Message Passed,4,1,2\n"

	// LogNoMessages has initial nodes but nothing to play.
	LogNoMessages = "Initial nodes,5,6\n"
)

// LoadGraph parses text with the default markers and assembles a graph
// facade over a fresh in-memory store.
func LoadGraph(t *testing.T, traceID, text string) *graph.Manager {
	t.Helper()
	ctx := context.Background()

	res, err := logparser.ParseString(ctx, text, logparser.DefaultMarkers())
	require.NoError(t, err)

	model, err := tracemodel.New(ctx, res.InitiallyActive, res.Messages)
	require.NoError(t, err)

	store := inmemorystore.New(model.EdgeCount(), model.NodeIDs())
	return graph.New(traceID, model, store, render.DefaultPalette())
}
