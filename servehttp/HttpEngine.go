package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"portal/bizerror"
	"portal/infra/tracing"
	"portal/metrics"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const DefaultAddr = ":8080"

// ListenAddr HTTP_ADDR, defaults to :8080
func ListenAddr() string {
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		return addr
	}
	return DefaultAddr
}

// NewEngine builds an engine with the ingress chain. Tracing and metrics wrap the error handler
// so they see the status it writes for a panicking handler.
func NewEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), tracing.TracingIngress(), metrics.HTTPMetrics(), bizerror.ErrorHandling())
	return engine
}

// StartHTTPServer serves engine until SIGINT or SIGTERM, then shuts down gracefully.
func StartHTTPServer(engine *gin.Engine, addr string) {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		logrus.Infof("http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// will call os.Exit(1)
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 send syscall.SIGINT
	// kill -9 send syscall.SIGKILL, can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("[QUIT] shutdown signal has been received, the service will exit in 3 seconds.")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("[QUIT] http server shutdown failed: %v", err)
	}
	logrus.Info("[QUIT] http server is shutdown gracefully, new request will be rejected.")
}
