package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ALCarroll24/MeasurementLQG/engine"
	"github.com/ALCarroll24/MeasurementLQG/searcher"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// Resolver maps an externally selected state key back to an inspection copy
// of the matching tree node.
type Resolver func(world.StateKey) (engine.NodeView, error)

// VizServer serves the planner's tree snapshots to the web visualization:
// the latest flattened tree over REST, per-node inspection by hash, and a
// websocket stream pushing each completed cycle.
type VizServer struct {
	hub      *engine.Hub
	resolve  Resolver
	upgrader websocket.Upgrader
}

func NewVizServer(hub *engine.Hub, resolve Resolver) *VizServer {
	return &VizServer{
		hub:     hub,
		resolve: resolve,
		upgrader: websocket.Upgrader{
			// Snapshots are read-only; any origin may subscribe
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the HTTP surface.
func (s *VizServer) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/tree", s.handleTree)
	api.GET("/node/:key", s.handleNode)

	router.GET("/ws", s.handleSubscribe)

	return router
}

// Run blocks serving on addr.
func (s *VizServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *VizServer) handleTree(c *gin.Context) {
	snapshot, ok := s.hub.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no planning cycle has completed"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *VizServer) handleNode(c *gin.Context) {
	key, err := strconv.ParseUint(c.Param("key"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node key must be an unsigned integer"})
		return
	}

	view, err := s.resolve(world.StateKey(key))
	if err != nil {
		if errors.Is(err, searcher.ErrNodeNotFound) {
			// Stale tree or a random node was clicked
			log.Warn().Msgf("node %d not found in current tree", key)
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *VizServer) handleSubscribe(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Msgf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	// Discard client frames so closes are noticed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for snapshot := range ch {
		if err := conn.WriteJSON(snapshot); err != nil {
			return
		}
	}
}
