package main

import (
	"context"
	"net/http"
	"os"
	"portal/account"
	"portal/client/es"
	"portal/common"
	"portal/domain/approval"
	"portal/domain/deliverable"
	"portal/domain/message"
	"portal/domain/project"
	"portal/event"
	"portal/indices"
	"portal/indices/search"
	"portal/infra/tracing"
	"portal/metrics"
	"portal/notify"
	"portal/persistence"
	"portal/phaselock"
	"portal/servehttp"
	"portal/session"
	"portal/sessions"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const eventQueueSize = 1024

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}
	common.ConfigureLogger(logrus.StandardLogger(), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
	logrus.Info("service start")

	closer, err := tracing.InitGlobalTracerFromEnv(common.GetServiceName())
	if err != nil {
		logrus.Fatalf("tracer initialization failed %v", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	if err := persistence.MigrateFunc(ds.GormDB(context.Background())); err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}
	if err := account.EnsureAdmin(context.Background(), os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		logrus.Fatalf("failed to create bootstrap administrator %v", err)
	}

	locker, err := phaselock.NewFromEnv()
	if err != nil {
		logrus.Fatalf("phase lock initialization failed %v", err)
	}
	phaselock.Active = locker

	esClient, err := es.CreateClientFromEnv()
	if err != nil {
		logrus.Fatalf("elasticsearch client creation failed %v", err)
	}
	if esClient != nil {
		event.RegisterProjectHandlers(indices.IndexProjectHandle)
		crontab, err := indices.StartCron("0 0 23 * * ?")
		if err != nil {
			logrus.Fatalf("failed to schedule indices sync %v", err)
		}
		defer crontab.Stop()
	}

	publisher, err := notify.NewPublisherFromEnv()
	if err != nil {
		logrus.Fatalf("message broker connection failed %v", err)
	}
	if publisher != nil {
		defer publisher.Close()
		event.RegisterHandlers(notify.EventHandler(publisher))
	}
	event.ActiveDispatcher = event.StartDispatcher(eventQueueSize)
	defer event.ActiveDispatcher.Stop()

	engine := servehttp.NewEngine()
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})
	metrics.RegisterMetricsHandler(engine)

	loginLimiter := rate.NewLimiter(rate.Every(time.Second), 10)
	sessions.RegisterSessionsHandler(engine, servehttp.RateLimit(loginLimiter))
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())

	authFilter := session.SimpleAuthFilter()
	account.RegisterUsersHandler(engine, authFilter)
	project.RegisterProjectsRestAPI(engine, authFilter)
	approval.RegisterApprovalRestAPI(engine, authFilter)
	deliverable.RegisterDeliverablesRestAPI(engine, authFilter)
	message.RegisterMessagesRestAPI(engine, authFilter)
	search.RegisterSearchRestAPI(engine, authFilter)
	if esClient != nil {
		indices.RegisterIndicesRestAPI(engine, authFilter, session.AdminOnly())
	}

	servehttp.StartHTTPServer(engine, servehttp.ListenAddr())
}
