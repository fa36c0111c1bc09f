package common

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownHook runs after a termination signal, before the HTTP server shuts
// down. Hook errors are logged; shutdown continues regardless.
type ShutdownHook func(ctx context.Context) error

// RunServerWithShutdown starts the server, blocks until SIGINT/SIGTERM, runs
// the hooks in order and then shuts the server down gracefully within the
// timeout.
func RunServerWithShutdown(server *http.Server, name string, shutdownTimeout time.Duration, hooks ...ShutdownHook) {
	go func() {
		logrus.WithField("addr", server.Addr).Infof("starting %s", name)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatalf("%s listen error", name)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logrus.Infof("shutting down %s", name)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx); err != nil {
			logrus.WithError(err).Warn("shutdown hook failed")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown failed")
	}
}
