package testinfra

import (
	"context"
	"os"
	"portal/persistence"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// MysqlTestServiceConfigured TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)
func MysqlTestServiceConfigured() bool {
	return os.Getenv("TEST_MYSQL_SERVICE") != ""
}

// StartMysqlTestDatabase creates an isolated database named after baseName and
// installs it as the active data source.
func StartMysqlTestDatabase(baseName string) *TestDatabase {
	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	if mysqlSvc == "" {
		mysqlSvc = "root:root@(127.0.0.1:3306)"
	}
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	dbConfig := &persistence.DatabaseConfig{
		DriverType: "mysql", DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		logrus.Fatalf("failed to prepare database %v", err)
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		logrus.Fatalf("database connection failed %v", err)
	}
	persistence.ActiveDataSourceManager = ds

	if err := persistence.MigrateFunc(ds.GormDB(context.Background())); err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}

	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopMysqlTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if db := testDatabase.DS.GormDB(context.Background()); db != nil {
		if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
			logrus.Warnf("failed to drop test database %s: %v", testDatabase.TestDatabaseName, err)
		} else {
			logrus.Infof("test database %s dropped", testDatabase.TestDatabaseName)
		}
	}
	testDatabase.DS.Stop()
}
