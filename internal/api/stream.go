package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privacypulse/pulse-server/internal/feed"
)

// handleFeedStream serves the live feed over server-sent events. One
// projector is mounted per connection; each distributor signal re-derives
// the view and pushes a fresh snapshot to the client.
func (s *Server) handleFeedStream(c *gin.Context) {
	ctx := c.Request.Context()
	subjectID := accountID(c)

	projector, err := feed.Mount(ctx, s.dist, s.view, subjectID, s.log)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer projector.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	// the mount refresh is already buffered in Updates, so the client gets
	// its initial view immediately
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case entries, ok := <-projector.Updates():
			if !ok {
				return false
			}
			c.SSEvent("feed", toFeedResponse(entries))
			return true
		}
	})
}
