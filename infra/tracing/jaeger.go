package tracing

import (
	"io"
	"os"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// jaegerLogger forwards reporter logs to logrus.
type jaegerLogger struct{}

func (jaegerLogger) Error(msg string) {
	logrus.Error(msg)
}

func (jaegerLogger) Infof(msg string, args ...interface{}) {
	logrus.Debugf(msg, args...)
}

// JaegerConfigured reports whether any reporter destination is set in the environment.
func JaegerConfigured() bool {
	return os.Getenv("JAEGER_AGENT_HOST") != "" || os.Getenv("JAEGER_ENDPOINT") != ""
}

// InitGlobalTracerFromEnv installs a jaeger tracer configured by the JAEGER_* variables as the
// global tracer. Without a reporter destination the noop tracer is kept.
func InitGlobalTracerFromEnv(serviceName string) (io.Closer, error) {
	if !JaegerConfigured() {
		logrus.Info("jaeger is not configured, tracing is disabled")
		return nopCloser{}, nil
	}
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaegerLogger{}))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("jaeger tracer initialized for service %s", cfg.ServiceName)
	return closer, nil
}
