package daemon

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/battnotify/battnotify/pkg/version"
)

type server struct {
	// ctx ends long-lived streams when the server shuts down.
	ctx context.Context
	d   *Daemon
}

func (s *server) getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.d.Status())
}

func (s *server) getLimit(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.d.conf.UpperLimit())
}

func (s *server) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func (s *server) getEvents(c *gin.Context) {
	ch := s.d.Events().Subscribe()
	defer s.d.Events().Unsubscribe(ch)

	logrus.Debug("events subscriber connected")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Content-Type", "text/event-stream")
	// Send headers now so subscribers do not wait for the first event.
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		case <-s.ctx.Done():
			return false
		}
	})

	logrus.Debug("events subscriber disconnected")
}
