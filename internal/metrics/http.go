package metrics

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"p2pbank/internal/events"
)

// Router builds the node's small observability-only HTTP surface, separate
// from the line protocol: Prometheus scraping and the dashboard's SSE feed.
// This is the one place the node speaks HTTP — everything client-facing
// stays on the TCP protocol per spec.md.
func Router(broker *events.Broker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/prometheus", gin.WrapH(promhttp.Handler()))
	r.GET("/events", sseHandler(broker))

	return r
}

func sseHandler(broker *events.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			evt, ok := <-ch
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		})
	}
}
