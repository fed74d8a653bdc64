package event

import (
	"portal/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	EventPersistCreateFunc = eventPersistCreate
	QueryProjectEventsFunc = QueryProjectEvents
	eventIdWorker          = sonyflake.NewSonyflake(sonyflake.Settings{})
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	if record.ID == 0 {
		record.ID = idgen.NextID(eventIdWorker)
	}
	return db.Create(record).Error
}

// QueryProjectEvents returns the activity of a project, newest first.
func QueryProjectEvents(projectId types.ID, db *gorm.DB) ([]EventRecord, error) {
	records := []EventRecord{}
	if err := db.Where("project_id = ?", projectId).Order("timestamp DESC").Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
