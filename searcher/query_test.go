package searcher

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ALCarroll24/MeasurementLQG/world"
)

func projectMockState(s world.State) (float64, float64, int) {
	ms := s.(mockState)
	return float64(ms.id), 0, ms.step
}

func TestGetNode(t *testing.T) {
	env := &mockEnv{samples: []mockAction{{id: 0}, {id: 1}}, rewards: map[int]float64{}}
	m := newTestMCTS(t, env)
	_, err := m.Learn(3)
	require.NoError(t, err)

	t.Run("finds the root by its own key", func(t *testing.T) {
		got, err := m.GetNode(m.Root().Key)
		require.NoError(t, err)
		require.Same(t, m.Root(), got)
	})

	t.Run("finds a nested node", func(t *testing.T) {
		// Root id 1, action 0: next = 2*1 + 0 + 1
		got, err := m.GetNode(world.StateKey(3))
		require.NoError(t, err)
		require.Equal(t, mockState{id: 3, step: 1}, got.State)
	})

	t.Run("reports a missing key", func(t *testing.T) {
		_, err := m.GetNode(world.StateKey(9999))
		require.ErrorIs(t, err, ErrNodeNotFound)
	})
}

func TestExport(t *testing.T) {
	env := &mockEnv{samples: []mockAction{{id: 0}, {id: 1}}, rewards: map[int]float64{}}
	m := newTestMCTS(t, env, WithBranchFactor(2))
	_, err := m.Learn(1)
	require.NoError(t, err)

	records := m.Export(projectMockState)
	require.Len(t, records, 2, "One record per materialized child edge")

	for _, record := range records {
		require.Equal(t, [2]float64{1, 0}, record.ParentPosition, "Both edges should hang off the root")
		require.Equal(t, 1, record.TimeStep)
		require.Equal(t, 0, record.Visits, "Fresh outcomes are unvisited after a single pass")
	}
	positions := []float64{records[0].Position[0], records[1].Position[0]}
	require.ElementsMatch(t, []float64{3, 4}, positions)
}

func TestExportStopsBelowTerminalNodes(t *testing.T) {
	env := &mockEnv{
		samples: []mockAction{{id: 0}, {id: 1}},
		rewards: map[int]float64{},
		final:   func(s mockState) bool { return s.step >= 1 },
	}
	m := newTestMCTS(t, env)
	_, err := m.Learn(4)
	require.NoError(t, err)

	records := m.Export(projectMockState)
	require.Len(t, records, 2, "Terminal children are recorded but not descended into")
}

func TestSave(t *testing.T) {
	env := &mockEnv{samples: []mockAction{{id: 0}, {id: 1}}, rewards: map[int]float64{0: 0, 1: 1}}
	m := newTestMCTS(t, env, WithExploration(0.7))
	_, err := m.Learn(5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf, projectMockState, mockAction{id: 1}))

	var dump struct {
		K     float64           `json:"k"`
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dump))
	require.InDelta(t, 0.7, dump.K, 1e-12)
	require.Equal(t, len(m.Export(projectMockState)), len(dump.Nodes))
}
