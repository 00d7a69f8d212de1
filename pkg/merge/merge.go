// Package merge reconciles a model-produced state delta with the previous
// turn's workflow state. The model is an unreliable input source by design:
// whatever subset it returns, the merged result always satisfies the
// structural invariants (exactly three nodes, exactly two connections,
// derived statuses).
package merge

import "github.com/pipewise/pipewise/pkg/models"

// Merge applies an incoming payload to the existing state and returns the
// merged successor. The existing state is not mutated.
//
// Per fixed node id: provided fields are unioned, missing fields and status
// recomputed, and stored config/display data preserved unless the delta
// carries replacements. Nodes and connections absent from the payload are
// carried forward, or reconstructed from the default template if the
// existing state also lacks them. Connection statuses and workflow
// completion are always recomputed; completion claims in the payload are
// informational only.
func Merge(existing *models.WorkflowState, payload *models.AssistantPayload) *models.WorkflowState {
	if existing == nil {
		existing = models.NewWorkflowState()
	}

	incoming := make(map[string]*models.Node)

	if payload != nil {
		for _, node := range payload.Nodes {
			incoming[node.ID] = node
		}
	}

	merged := &models.WorkflowState{
		Nodes:       make([]*models.Node, 0, len(models.NodeOrder)),
		Connections: defaultConnections(),
	}

	for _, nodeID := range models.NodeOrder {
		previous := existing.NodeByID(nodeID)
		if previous == nil {
			previous = models.DefaultNode(nodeID)
		}

		merged.Nodes = append(merged.Nodes, mergeNode(previous, incoming[nodeID]))
	}

	merged.Recompute()

	return merged
}

func mergeNode(previous, delta *models.Node) *models.Node {
	node := previous.Clone()

	if len(node.RequiredFields) == 0 {
		node.RequiredFields = models.DefaultRequiredFields(node.ID)
	}

	if delta != nil {
		for _, field := range delta.ProvidedFields {
			if !node.HasProvided(field) && isRequired(node, field) {
				node.ProvidedFields = append(node.ProvidedFields, field)
			}
		}

		if delta.Name != "" {
			node.Name = delta.Name
		}

		for key, value := range delta.Config {
			if node.Config == nil {
				node.Config = make(map[string]any)
			}

			node.Config[key] = value
		}
	}

	// Status and missing fields are always derived here, never taken from
	// the delta.
	node.Recompute()

	return node
}

func isRequired(node *models.Node, field string) bool {
	for _, required := range node.RequiredFields {
		if required == field {
			return true
		}
	}

	return false
}

func defaultConnections() []*models.Connection {
	return []*models.Connection{
		{ID: models.SourceTransformConnectionID, Source: models.SourceNodeID, Target: models.TransformNodeID},
		{ID: models.TransformDestinationConnectionID, Source: models.TransformNodeID, Target: models.DestinationNodeID},
	}
}
