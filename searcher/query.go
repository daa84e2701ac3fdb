package searcher

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ALCarroll24/MeasurementLQG/world"
)

// NodeRecord is one edge of the flattened tree snapshot handed to external
// rendering: a lossy projection, not a full statistics dump.
type NodeRecord struct {
	Position       [2]float64 `json:"position"`
	ParentPosition [2]float64 `json:"parent_position"`
	TimeStep       int        `json:"time_step"`
	Visits         int        `json:"visits"`
}

// GetNode returns the first decision node whose state key matches, searching
// depth-first from the root.
func (m *MCTS) GetNode(key world.StateKey) (*DecisionNode, error) {
	if node := findNode(m.root, key); node != nil {
		return node, nil
	}
	return nil, fmt.Errorf("%w: state key %d", ErrNodeNotFound, key)
}

func findNode(node *DecisionNode, key world.StateKey) *DecisionNode {
	if node.Key == key {
		return node
	}
	for _, randomNode := range node.Children {
		for _, child := range randomNode.Children {
			if found := findNode(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}

// Export flattens the tree into edge records for external rendering, using
// the projector to reduce opaque states to renderable positions. Traversal
// stops below terminal nodes.
func (m *MCTS) Export(project world.Projector) []NodeRecord {
	records := []NodeRecord{}
	collectRecords(m.root, project, &records)
	return records
}

func collectRecords(node *DecisionNode, project world.Projector, records *[]NodeRecord) {
	if node.Final {
		return
	}
	px, py, _ := project(node.State)
	for _, randomNode := range node.Children {
		for _, child := range randomNode.Children {
			cx, cy, step := project(child.State)
			*records = append(*records, NodeRecord{
				Position:       [2]float64{cx, cy},
				ParentPosition: [2]float64{px, py},
				TimeStep:       step,
				Visits:         child.Visits,
			})
			collectRecords(child, project, records)
		}
	}
}

type treeDump struct {
	Exploration float64      `json:"k"`
	Nodes       []NodeRecord `json:"nodes"`
	Decision    world.Action `json:"decision,omitempty"`
}

// Save serializes the exploration constant, the flattened node records and
// the chosen action for offline inspection. The layout is not a
// compatibility contract.
func (m *MCTS) Save(w io.Writer, project world.Projector, decision world.Action) error {
	dump := treeDump{
		Exploration: m.exploration,
		Nodes:       m.Export(project),
		Decision:    decision,
	}
	if err := json.NewEncoder(w).Encode(dump); err != nil {
		return fmt.Errorf("failed to serialize tree: %w", err)
	}
	return nil
}
