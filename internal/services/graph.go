package services

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// CompiledTransition is a transition with its condition payload decoded.
type CompiledTransition struct {
	ID        uuid.UUID
	ToNodeID  uuid.UUID
	Priority  int
	Type      models.ConditionType
	Condition Condition
}

// Graph is the immutable, compiled form of one scenario version. All
// condition payloads are decoded and all adjacency lists are ordered by
// (priority asc, transition id asc) at build time, so navigation is a
// pure lookup.
type Graph struct {
	ScenarioID  uuid.UUID
	StartNodeID uuid.UUID
	nodes       map[uuid.UUID]*models.ScenarioNode
	outgoing    map[uuid.UUID][]CompiledTransition
}

func (g *Graph) Node(id uuid.UUID) (*models.ScenarioNode, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// OutgoingTransitions returns the ordered outgoing transitions of a node.
// Terminal nodes have none.
func (g *Graph) OutgoingTransitions(nodeID uuid.UUID) []CompiledTransition {
	return g.outgoing[nodeID]
}

// NodeConfig decodes a node's config bag, applying defaults for absent
// fields (weight 1.0).
func (g *Graph) NodeConfig(nodeID uuid.UUID) models.NodeConfig {
	cfg := models.NodeConfig{Weight: 1.0}
	node, ok := g.nodes[nodeID]
	if !ok || len(node.NodeConfig) == 0 {
		return cfg
	}
	if err := json.Unmarshal(node.NodeConfig, &cfg); err != nil {
		return models.NodeConfig{Weight: 1.0}
	}
	if cfg.Weight == 0 {
		cfg.Weight = 1.0
	}
	return cfg
}

// ValidateScenario checks the structural invariants of a scenario graph
// and reports every violation, not just the first.
func ValidateScenario(sc *models.Scenario) []string {
	var violations []string

	nodes := make(map[uuid.UUID]*models.ScenarioNode, len(sc.Nodes))
	var startIDs []uuid.UUID
	endCount := 0
	for i := range sc.Nodes {
		node := &sc.Nodes[i]
		if _, exists := nodes[node.ID]; exists {
			violations = append(violations, fmt.Sprintf("duplicate node id %s", node.ID))
			continue
		}
		nodes[node.ID] = node
		switch node.NodeType {
		case models.NodeTypeStart:
			startIDs = append(startIDs, node.ID)
		case models.NodeTypeEnd:
			endCount++
		case models.NodeTypeQuestion, models.NodeTypeCondition, models.NodeTypeSkip:
		default:
			violations = append(violations, fmt.Sprintf("node %s has unknown type %q", node.ID, node.NodeType))
		}
	}

	if len(startIDs) == 0 {
		violations = append(violations, "scenario has no start node")
	} else if len(startIDs) > 1 {
		violations = append(violations, fmt.Sprintf("scenario has %d start nodes, expected exactly one", len(startIDs)))
	}
	if endCount == 0 {
		violations = append(violations, "scenario has no end node")
	}

	seenTransitions := make(map[uuid.UUID]bool, len(sc.Transitions))
	alwaysCount := make(map[uuid.UUID]int)
	adjacency := make(map[uuid.UUID][]uuid.UUID)
	for i := range sc.Transitions {
		tr := &sc.Transitions[i]
		if seenTransitions[tr.ID] {
			violations = append(violations, fmt.Sprintf("duplicate transition id %s", tr.ID))
			continue
		}
		seenTransitions[tr.ID] = true

		from, fromOK := nodes[tr.FromNodeID]
		if !fromOK {
			violations = append(violations, fmt.Sprintf("transition %s references unknown from-node %s", tr.ID, tr.FromNodeID))
		}
		if _, ok := nodes[tr.ToNodeID]; !ok {
			violations = append(violations, fmt.Sprintf("transition %s references unknown to-node %s", tr.ID, tr.ToNodeID))
		}
		if fromOK && from.NodeType == models.NodeTypeEnd {
			violations = append(violations, fmt.Sprintf("end node %s must not have outgoing transitions", tr.FromNodeID))
		}
		if tr.ConditionType == models.ConditionAlways {
			alwaysCount[tr.FromNodeID]++
		}
		if _, err := decodeCondition(tr.ConditionType, tr.ConditionValue); err != nil {
			violations = append(violations, fmt.Sprintf("transition %s: %v", tr.ID, err))
		}
		adjacency[tr.FromNodeID] = append(adjacency[tr.FromNodeID], tr.ToNodeID)
	}

	for fromID, count := range alwaysCount {
		if count > 1 {
			violations = append(violations, fmt.Sprintf("node %s has %d always transitions, at most one is allowed", fromID, count))
		}
	}

	for id, node := range nodes {
		if node.NodeType == models.NodeTypeSkip {
			out := adjacency[id]
			if len(out) != 1 || alwaysCount[id] != 1 {
				violations = append(violations, fmt.Sprintf("skip node %s must have exactly one always transition", id))
			}
		}
	}

	// Reachability from the single start node.
	if len(startIDs) == 1 {
		reached := map[uuid.UUID]bool{startIDs[0]: true}
		queue := []uuid.UUID{startIDs[0]}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range adjacency[current] {
				if !reached[next] {
					reached[next] = true
					queue = append(queue, next)
				}
			}
		}
		for id := range nodes {
			if !reached[id] {
				violations = append(violations, fmt.Sprintf("node %s is unreachable from the start node", id))
			}
		}
	}

	sort.Strings(violations)
	return violations
}

// CompileGraph validates a scenario and builds its immutable compiled
// form. Returns a *StructuralError listing all violations when invalid.
func CompileGraph(sc *models.Scenario) (*Graph, error) {
	if violations := ValidateScenario(sc); len(violations) > 0 {
		return nil, &StructuralError{Violations: violations}
	}

	graph := &Graph{
		ScenarioID: sc.ID,
		nodes:      make(map[uuid.UUID]*models.ScenarioNode, len(sc.Nodes)),
		outgoing:   make(map[uuid.UUID][]CompiledTransition, len(sc.Nodes)),
	}
	for i := range sc.Nodes {
		node := &sc.Nodes[i]
		graph.nodes[node.ID] = node
		if node.NodeType == models.NodeTypeStart {
			graph.StartNodeID = node.ID
		}
	}

	for i := range sc.Transitions {
		tr := &sc.Transitions[i]
		cond, err := decodeCondition(tr.ConditionType, tr.ConditionValue)
		if err != nil {
			// Unreachable after validation, kept as a guard.
			return nil, fmt.Errorf("transition %s: %w", tr.ID, err)
		}
		graph.outgoing[tr.FromNodeID] = append(graph.outgoing[tr.FromNodeID], CompiledTransition{
			ID:        tr.ID,
			ToNodeID:  tr.ToNodeID,
			Priority:  tr.Priority,
			Type:      tr.ConditionType,
			Condition: cond,
		})
	}

	// Priority ascending, ties broken by transition id ascending so the
	// evaluation order is stable and deterministic.
	for nodeID := range graph.outgoing {
		transitions := graph.outgoing[nodeID]
		sort.Slice(transitions, func(i, j int) bool {
			if transitions[i].Priority != transitions[j].Priority {
				return transitions[i].Priority < transitions[j].Priority
			}
			return transitions[i].ID.String() < transitions[j].ID.String()
		})
	}

	return graph, nil
}
