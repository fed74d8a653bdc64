package persistence

import (
	"sync"

	"github.com/jinzhu/gorm"
)

var (
	MigrateFunc = Migrate

	entitiesMu sync.Mutex
	entities   []interface{}
)

// RegisterEntities records models to be auto migrated; packages call it from init.
func RegisterEntities(models ...interface{}) {
	entitiesMu.Lock()
	defer entitiesMu.Unlock()
	entities = append(entities, models...)
}

func RegisteredEntities() []interface{} {
	entitiesMu.Lock()
	defer entitiesMu.Unlock()
	return append([]interface{}{}, entities...)
}

// Migrate creates or alters the tables of every registered entity.
func Migrate(db *gorm.DB) error {
	models := RegisteredEntities()
	if len(models) == 0 {
		return nil
	}
	return db.AutoMigrate(models...).Error
}
