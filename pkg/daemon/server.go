package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyRunning is returned when another monitor is listening on the socket.
var ErrAlreadyRunning = errors.New("another battnotify instance is already running")

func setupRoutes(ctx context.Context, d *Daemon) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	s := &server{ctx: ctx, d: d}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", s.getStatus)
	router.GET("/limit", s.getLimit)
	router.GET("/version", s.getVersion)
	router.GET("/events", s.getEvents)

	return router
}

// Serve exposes the status of d on a unix socket until ctx is done.
func Serve(ctx context.Context, d *Daemon, unixSocketPath string) error {
	if err := removeStaleSocket(unixSocketPath); err != nil {
		return err
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}
	// Only the current user may talk to the monitor.
	if err := os.Chmod(unixSocketPath, 0o600); err != nil {
		_ = l.Close()
		return pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
	}

	srv := &http.Server{
		Handler:           setupRoutes(ctx, d),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("status server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return pkgerrors.Wrap(err, "status server failed")
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down status server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown status server: %v", err)
	}
	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("failed to remove socket %s: %v", unixSocketPath, err)
	}

	return nil
}

// removeStaleSocket removes a socket file left behind by a crashed instance.
func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		_ = conn.Close()
		return pkgerrors.Wrapf(ErrAlreadyRunning, "socket %s is in use", path)
	}

	logrus.Debugf("removing stale socket %s", path)
	if err := os.Remove(path); err != nil {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", path)
	}
	return nil
}
