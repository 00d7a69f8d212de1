// Package models defines the core domain models for conversation-driven pipeline configuration.
package models

// NodeType represents the role of a node in the fixed three-stage pipeline.
type NodeType string

const (
	NodeTypeSource      NodeType = "source"
	NodeTypeTransform   NodeType = "transform"
	NodeTypeDestination NodeType = "destination"
)

// Fixed node identifiers. The pipeline always holds exactly these three
// nodes, in this order.
const (
	SourceNodeID      = "source-node"
	TransformNodeID   = "transform-node"
	DestinationNodeID = "destination-node"
)

// NodeOrder lists the fixed node identifiers in pipeline order.
var NodeOrder = []string{SourceNodeID, TransformNodeID, DestinationNodeID}

// NodeStatus defines the configuration state of a pipeline node.
type NodeStatus string

const (
	NodeStatusPending  NodeStatus = "pending"
	NodeStatusPartial  NodeStatus = "partial"
	NodeStatusComplete NodeStatus = "complete"
	NodeStatusError    NodeStatus = "error"
)

// Node represents one stage of the pipeline and its configuration progress.
// Only field names cross this boundary; field values never do.
type Node struct {
	ID             string         `json:"id"              validate:"required"`
	Type           NodeType       `json:"type"            validate:"required,oneof=source transform destination"`
	Name           string         `json:"name"`
	Status         NodeStatus     `json:"status"`
	RequiredFields []string       `json:"required_fields"`
	ProvidedFields []string       `json:"provided_fields"`
	MissingFields  []string       `json:"missing_fields"`
	Config         map[string]any `json:"config,omitempty"`
}

// HasProvided reports whether the named field has already been provided.
func (n *Node) HasProvided(field string) bool {
	for _, f := range n.ProvidedFields {
		if f == field {
			return true
		}
	}

	return false
}

// Recompute derives MissingFields and Status from RequiredFields and
// ProvidedFields. Status values supplied by external sources are never
// trusted; this derivation is the single source of truth.
func (n *Node) Recompute() {
	missing := make([]string, 0, len(n.RequiredFields))

	for _, field := range n.RequiredFields {
		if !n.HasProvided(field) {
			missing = append(missing, field)
		}
	}

	n.MissingFields = missing

	provided := len(n.RequiredFields) - len(missing)

	switch {
	case len(n.RequiredFields) > 0 && len(missing) == 0:
		n.Status = NodeStatusComplete
	case provided > 0:
		n.Status = NodeStatusPartial
	default:
		n.Status = NodeStatusPending
	}
}

// IsComplete reports whether every required field has been provided.
func (n *Node) IsComplete() bool {
	return len(n.RequiredFields) > 0 && len(n.MissingFields) == 0
}

// defaultFieldTemplates fixes the required-field set per node id at first
// creation. The templates never change after a node exists.
var defaultFieldTemplates = map[string][]string{
	SourceNodeID:      {"store_url", "api_key", "api_secret"},
	TransformNodeID:   {"transform_type", "field_mapping"},
	DestinationNodeID: {"destination_url", "destination_token"},
}

var defaultNodeNames = map[string]string{
	SourceNodeID:      "Data Source",
	TransformNodeID:   "Transform",
	DestinationNodeID: "Destination",
}

var nodeTypeByID = map[string]NodeType{
	SourceNodeID:      NodeTypeSource,
	TransformNodeID:   NodeTypeTransform,
	DestinationNodeID: NodeTypeDestination,
}

// DefaultRequiredFields returns a copy of the field template for a node id.
func DefaultRequiredFields(nodeID string) []string {
	template := defaultFieldTemplates[nodeID]
	fields := make([]string, len(template))
	copy(fields, template)

	return fields
}

// DefaultNode builds a fresh node for one of the three fixed ids, with all
// fields missing.
func DefaultNode(nodeID string) *Node {
	node := &Node{
		ID:             nodeID,
		Type:           nodeTypeByID[nodeID],
		Name:           defaultNodeNames[nodeID],
		RequiredFields: DefaultRequiredFields(nodeID),
		ProvidedFields: []string{},
	}
	node.Recompute()

	return node
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:             n.ID,
		Type:           n.Type,
		Name:           n.Name,
		Status:         n.Status,
		RequiredFields: append([]string{}, n.RequiredFields...),
		ProvidedFields: append([]string{}, n.ProvidedFields...),
		MissingFields:  append([]string{}, n.MissingFields...),
	}

	if n.Config != nil {
		clone.Config = make(map[string]any, len(n.Config))
		for k, v := range n.Config {
			clone.Config[k] = v
		}
	}

	return clone
}
