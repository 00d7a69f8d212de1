package progression

import (
	"testing"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWithProvided(provided map[string][]string) *models.WorkflowState {
	state := models.NewWorkflowState()

	for nodeID, fields := range provided {
		node := state.NodeByID(nodeID)
		node.ProvidedFields = fields
		node.Recompute()
	}

	state.Recompute()

	return state
}

func TestNext_FreshStateAsksFirstSourceField(t *testing.T) {
	next := Next(models.NewWorkflowState())

	require.NotNil(t, next)
	assert.Equal(t, models.SourceNodeID, next.NodeID)
	assert.Equal(t, "store_url", next.FieldName)
}

func TestNext_AdvancesWithinNode(t *testing.T) {
	state := stateWithProvided(map[string][]string{
		models.SourceNodeID: {"store_url"},
	})

	next := Next(state)
	require.NotNil(t, next)
	assert.Equal(t, models.SourceNodeID, next.NodeID)
	assert.Equal(t, "api_key", next.FieldName)
}

func TestNext_NeverSkipsAnIncompleteEarlierNode(t *testing.T) {
	// Even with transform fields provided, the incomplete source node wins.
	state := stateWithProvided(map[string][]string{
		models.SourceNodeID:    {"store_url"},
		models.TransformNodeID: {"transform_type", "field_mapping"},
	})

	next := Next(state)
	require.NotNil(t, next)
	assert.Equal(t, models.SourceNodeID, next.NodeID)
}

func TestNext_MovesToNextNodeWhenComplete(t *testing.T) {
	state := stateWithProvided(map[string][]string{
		models.SourceNodeID: {"store_url", "api_key", "api_secret"},
	})

	next := Next(state)
	require.NotNil(t, next)
	assert.Equal(t, models.TransformNodeID, next.NodeID)
	assert.Equal(t, "transform_type", next.FieldName)
}

func TestNext_NilOnCompletion(t *testing.T) {
	state := stateWithProvided(map[string][]string{
		models.SourceNodeID:      {"store_url", "api_key", "api_secret"},
		models.TransformNodeID:   {"transform_type", "field_mapping"},
		models.DestinationNodeID: {"destination_url", "destination_token"},
	})

	assert.Nil(t, Next(state))
	assert.True(t, state.Complete)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		provided map[string][]string
		expected Transition
	}{
		{
			name:     "start of workflow on turn one",
			provided: map[string][]string{},
			expected: TransitionStartOfWorkflow,
		},
		{
			name: "mid node while filling fields",
			provided: map[string][]string{
				models.SourceNodeID: {"store_url"},
			},
			expected: TransitionMidNode,
		},
		{
			name: "completing node on last missing field",
			provided: map[string][]string{
				models.SourceNodeID: {"store_url", "api_key"},
			},
			expected: TransitionCompletingNode,
		},
		{
			name: "start of node when moving to an untouched node",
			provided: map[string][]string{
				models.SourceNodeID: {"store_url", "api_key", "api_secret"},
			},
			expected: TransitionStartOfNode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := stateWithProvided(tc.provided)
			assert.Equal(t, tc.expected, Classify(state, Next(state)))
		})
	}
}
