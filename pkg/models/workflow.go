package models

// ConnectionStatus defines the state of a connection between two nodes.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusComplete ConnectionStatus = "complete"
)

// Fixed connection identifiers for the two pipeline edges.
const (
	SourceTransformConnectionID      = "conn-source-transform"
	TransformDestinationConnectionID = "conn-transform-destination"
)

// Connection links two nodes in pipeline order. Its status is derived from
// the completeness of the source endpoint, never taken from external input.
type Connection struct {
	ID     string           `json:"id"     validate:"required"`
	Source string           `json:"source" validate:"required"`
	Target string           `json:"target" validate:"required"`
	Status ConnectionStatus `json:"status"`
}

// WorkflowState is the canonical pipeline structure carried across
// conversation turns: exactly three nodes and exactly two connections.
// The node and connection sets are never resized.
type WorkflowState struct {
	Nodes       []*Node       `json:"nodes"       validate:"required,len=3"`
	Connections []*Connection `json:"connections" validate:"required,len=2"`
	Complete    bool          `json:"complete"`
}

// NewWorkflowState creates the initial state: default field templates per
// node, all fields missing.
func NewWorkflowState() *WorkflowState {
	nodes := make([]*Node, 0, len(NodeOrder))
	for _, id := range NodeOrder {
		nodes = append(nodes, DefaultNode(id))
	}

	state := &WorkflowState{
		Nodes: nodes,
		Connections: []*Connection{
			{ID: SourceTransformConnectionID, Source: SourceNodeID, Target: TransformNodeID},
			{ID: TransformDestinationConnectionID, Source: TransformNodeID, Target: DestinationNodeID},
		},
	}
	state.Recompute()

	return state
}

// NodeByID returns the node with the given id, or nil.
func (s *WorkflowState) NodeByID(id string) *Node {
	for _, node := range s.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// Recompute derives connection statuses and workflow completion from node
// completeness. Node-level derivation is assumed to have run already.
func (s *WorkflowState) Recompute() {
	for _, conn := range s.Connections {
		source := s.NodeByID(conn.Source)
		if source != nil && source.IsComplete() {
			conn.Status = ConnectionStatusComplete
		} else {
			conn.Status = ConnectionStatusPending
		}
	}

	complete := len(s.Nodes) > 0

	for _, node := range s.Nodes {
		if !node.IsComplete() {
			complete = false

			break
		}
	}

	s.Complete = complete
}

// Clone returns a deep copy of the state.
func (s *WorkflowState) Clone() *WorkflowState {
	nodes := make([]*Node, 0, len(s.Nodes))
	for _, node := range s.Nodes {
		nodes = append(nodes, node.Clone())
	}

	connections := make([]*Connection, 0, len(s.Connections))
	for _, conn := range s.Connections {
		cloned := *conn
		connections = append(connections, &cloned)
	}

	return &WorkflowState{
		Nodes:       nodes,
		Connections: connections,
		Complete:    s.Complete,
	}
}
