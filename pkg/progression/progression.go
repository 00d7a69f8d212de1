// Package progression decides which configuration field the conversation
// asks for next and how the turn relates to the node being configured.
package progression

import "github.com/pipewise/pipewise/pkg/models"

// NextField identifies the single field to request next.
type NextField struct {
	NodeID    string
	FieldName string
}

// Transition classifies the position of the next request within the
// workflow. It only selects conversational tone; the state machine does not
// depend on it.
type Transition string

const (
	TransitionStartOfWorkflow Transition = "start_of_workflow"
	TransitionStartOfNode     Transition = "start_of_node"
	TransitionCompletingNode  Transition = "completing_node"
	TransitionMidNode         Transition = "mid_node"
)

// Next scans nodes strictly in pipeline order and returns the first missing
// field of the first incomplete node. A nil result signals workflow
// completion. A later node is never reached while an earlier node has
// missing fields.
func Next(state *models.WorkflowState) *NextField {
	for _, nodeID := range models.NodeOrder {
		node := state.NodeByID(nodeID)
		if node == nil {
			continue
		}

		if len(node.MissingFields) > 0 {
			return &NextField{NodeID: node.ID, FieldName: node.MissingFields[0]}
		}
	}

	return nil
}

// Classify determines the transition for the upcoming request.
func Classify(state *models.WorkflowState, next *NextField) Transition {
	if next == nil {
		return TransitionMidNode
	}

	brandNew := true

	for _, node := range state.Nodes {
		if len(node.ProvidedFields) > 0 {
			brandNew = false

			break
		}
	}

	if brandNew {
		return TransitionStartOfWorkflow
	}

	target := state.NodeByID(next.NodeID)
	if target == nil {
		return TransitionMidNode
	}

	if len(target.ProvidedFields) == 0 {
		return TransitionStartOfNode
	}

	if len(target.MissingFields) == 1 {
		return TransitionCompletingNode
	}

	return TransitionMidNode
}
