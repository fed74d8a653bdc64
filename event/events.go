package event

import (
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// CreateEvent persists an event inside tx; the caller dispatches it after commit.
func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, projectId types.ID, category EventCategory,
	updatedProperties UpdatedProperties, identity *session.Identity, timestamp types.Timestamp, tx *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,
			ProjectId:  projectId,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,
		},
		Timestamp: timestamp,
	}
	if err := EventPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// DispatchAll hands committed events to the registered handlers, in order. Project handlers
// run once per project touched by the batch.
func DispatchAll(records []*EventRecord) {
	if d := ActiveDispatcher; d != nil {
		d.Enqueue(records)
		return
	}
	dispatchBatch(records)
}

func touchedProjects(records []*EventRecord) []types.ID {
	var ids []types.ID
	seen := map[types.ID]bool{}
	for _, record := range records {
		if record == nil || record.ProjectId == 0 || seen[record.ProjectId] {
			continue
		}
		seen[record.ProjectId] = true
		ids = append(ids, record.ProjectId)
	}
	return ids
}
