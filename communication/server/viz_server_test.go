package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ALCarroll24/MeasurementLQG/engine"
	"github.com/ALCarroll24/MeasurementLQG/searcher"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandleTree(t *testing.T) {
	hub := engine.NewHub()
	router := NewVizServer(hub, nil).Router()

	t.Run("404 before any planning cycle", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, get(router, "/api/tree").Code)
	})

	t.Run("serves the latest snapshot", func(t *testing.T) {
		hub.Publish(engine.Snapshot{
			ID:    "abc",
			Cycle: 7,
			Nodes: []searcher.NodeRecord{{Position: [2]float64{1, 2}, TimeStep: 1, Visits: 3}},
		})

		w := get(router, "/api/tree")
		require.Equal(t, http.StatusOK, w.Code)

		var snapshot engine.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
		require.Equal(t, "abc", snapshot.ID)
		require.Equal(t, 7, snapshot.Cycle)
		require.Len(t, snapshot.Nodes, 1)
	})
}

func TestHandleNode(t *testing.T) {
	hub := engine.NewHub()
	resolve := func(key world.StateKey) (engine.NodeView, error) {
		if key == 42 {
			return engine.NodeView{Position: [2]float64{5, 6}, Visits: 9}, nil
		}
		return engine.NodeView{}, searcher.ErrNodeNotFound
	}
	router := NewVizServer(hub, resolve).Router()

	t.Run("rejects malformed keys", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, get(router, "/api/node/notakey").Code)
	})

	t.Run("404 for unknown nodes", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, get(router, "/api/node/7").Code)
	})

	t.Run("returns the inspection view", func(t *testing.T) {
		w := get(router, "/api/node/42")
		require.Equal(t, http.StatusOK, w.Code)

		var view engine.NodeView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, [2]float64{5, 6}, view.Position)
		require.Equal(t, 9, view.Visits)
	})
}

func TestHealthz(t *testing.T) {
	router := NewVizServer(engine.NewHub(), nil).Router()
	require.Equal(t, http.StatusOK, get(router, "/healthz").Code)
}
