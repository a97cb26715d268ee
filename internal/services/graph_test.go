package services

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/models"
)

func TestValidateScenario_LinearGraphIsValid(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	b.transition(q1, end, models.ConditionAlways, nil, 0)

	violations := ValidateScenario(b.build())
	assert.Empty(t, violations)
}

func TestValidateScenario_ReportsAllViolations(t *testing.T) {
	b := newScenarioBuilder()
	q1 := b.questionNode(uuid.Nil, nil)
	q2 := b.questionNode(uuid.Nil, nil)
	unknown := uuid.New()
	b.transition(q1, unknown, models.ConditionAlways, nil, 0)
	b.transition(q1, q2, models.ConditionAlways, nil, 1)
	b.transition(q1, q2, models.ConditionScoreThreshold, nil, 2)

	violations := ValidateScenario(b.build())
	joined := strings.Join(violations, "\n")

	assert.Contains(t, joined, "no start node")
	assert.Contains(t, joined, "no end node")
	assert.Contains(t, joined, "unknown to-node")
	assert.Contains(t, joined, "always transitions")
	assert.Contains(t, joined, "score_threshold requires min and/or max")
	// Every violation is reported in one pass, not just the first.
	assert.GreaterOrEqual(t, len(violations), 5)
}

func TestValidateScenario_EndNodeWithOutgoing(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, end, models.ConditionAlways, nil, 0)
	b.transition(end, start, models.ConditionAlways, nil, 0)

	violations := ValidateScenario(b.build())
	assert.Contains(t, strings.Join(violations, "\n"), "must not have outgoing transitions")
}

func TestValidateScenario_UnreachableNode(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	end := b.node(models.NodeTypeEnd)
	orphan := b.questionNode(uuid.Nil, nil)
	b.transition(start, end, models.ConditionAlways, nil, 0)
	b.transition(orphan, end, models.ConditionAlways, nil, 0)

	violations := ValidateScenario(b.build())
	assert.Contains(t, strings.Join(violations, "\n"), "unreachable from the start node")
}

func TestValidateScenario_SkipNodeNeedsSingleAlways(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	skip := b.node(models.NodeTypeSkip)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, skip, models.ConditionAlways, nil, 0)
	b.transition(skip, end, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.5}), 0)

	violations := ValidateScenario(b.build())
	assert.Contains(t, strings.Join(violations, "\n"), "must have exactly one always transition")
}

func TestValidateScenario_MultipleStartNodes(t *testing.T) {
	b := newScenarioBuilder()
	s1 := b.node(models.NodeTypeStart)
	b.node(models.NodeTypeStart)
	end := b.node(models.NodeTypeEnd)
	b.transition(s1, end, models.ConditionAlways, nil, 0)

	violations := ValidateScenario(b.build())
	assert.Contains(t, strings.Join(violations, "\n"), "expected exactly one")
}

func TestCompileGraph_InvalidScenarioReturnsStructuralError(t *testing.T) {
	b := newScenarioBuilder()
	b.questionNode(uuid.Nil, nil)

	graph, err := CompileGraph(b.build())
	require.Nil(t, graph)

	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.NotEmpty(t, structural.Violations)
}

func TestCompileGraph_OrdersTransitionsByPriority(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	a := b.questionNode(uuid.Nil, nil)
	c := b.questionNode(uuid.Nil, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	// Inserted out of order on purpose.
	b.transition(q1, end, models.ConditionAlways, nil, 3)
	b.transition(q1, a, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.7}), 1)
	b.transition(q1, c, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.4}), 2)
	b.transition(a, end, models.ConditionAlways, nil, 0)
	b.transition(c, end, models.ConditionAlways, nil, 0)

	graph, err := CompileGraph(b.build())
	require.NoError(t, err)

	outgoing := graph.OutgoingTransitions(q1)
	require.Len(t, outgoing, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{outgoing[0].Priority, outgoing[1].Priority, outgoing[2].Priority})
}

func TestCompileGraph_EqualPriorityTieBreaksByTransitionID(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	// Same priority; the one with the larger id is registered first.
	b.transitionWithID(ids[1], q1, end, models.ConditionAlways, nil, 5)
	b.transitionWithID(ids[0], q1, end, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.9}), 5)

	graph, err := CompileGraph(b.build())
	require.NoError(t, err)

	outgoing := graph.OutgoingTransitions(q1)
	require.Len(t, outgoing, 2)
	assert.Equal(t, ids[0], outgoing[0].ID)
	assert.Equal(t, ids[1], outgoing[1].ID)
}

func TestGraph_NodeConfigDefaults(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	bare := b.questionNode(uuid.Nil, nil)
	configured := b.questionNode(uuid.Nil, jsonPayload(t, map[string]interface{}{
		"weight":     0.4,
		"must_have":  true,
		"contextual": true,
	}))
	end := b.node(models.NodeTypeEnd)
	b.transition(start, bare, models.ConditionAlways, nil, 0)
	b.transition(bare, configured, models.ConditionAlways, nil, 0)
	b.transition(configured, end, models.ConditionAlways, nil, 0)

	graph, err := CompileGraph(b.build())
	require.NoError(t, err)

	cfg := graph.NodeConfig(bare)
	assert.Equal(t, 1.0, cfg.Weight)
	assert.False(t, cfg.MustHave)

	cfg = graph.NodeConfig(configured)
	assert.Equal(t, 0.4, cfg.Weight)
	assert.True(t, cfg.MustHave)
	assert.True(t, cfg.Contextual)
}

func TestGraph_TerminalNodeHasNoOutgoing(t *testing.T) {
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, end, models.ConditionAlways, nil, 0)

	graph, err := CompileGraph(b.build())
	require.NoError(t, err)
	assert.Empty(t, graph.OutgoingTransitions(end))
	assert.Equal(t, start, graph.StartNodeID)
}
