package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"portal/persistence"

	"github.com/fundwit/go-commons/types"
)

func init() {
	persistence.RegisterEntities(&EventRecord{})
}

type EventCategory string

const (
	EventCategoryCreated           = EventCategory("CREATED")
	EventCategoryPropertyUpdated   = EventCategory("PROPERTY_UPDATED")
	EventCategoryApprovalRequested = EventCategory("APPROVAL_REQUESTED")
	EventCategoryApproved          = EventCategory("APPROVED")
	EventCategoryChangesRequested  = EventCategory("CHANGES_REQUESTED")
	EventCategoryProgressUpdated   = EventCategory("PROGRESS_UPDATED")
)

const (
	SourceTypeProject     = "PROJECT"
	SourceTypePhase       = "PHASE"
	SourceTypeDeliverable = "DELIVERABLE"
)

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`
	ProjectId  types.ID `json:"projectId" gorm:"index:idx_event_project"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
}

type EventRecord struct {
	ID types.ID `json:"id"`
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	PropertyDesc string `json:"propertyDesc"`

	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

// StatusChange is the property change recorded for a status transition.
func StatusChange(from, to string) UpdatedProperties {
	return UpdatedProperties{{PropertyName: "Status", PropertyDesc: "Status", OldValue: from, NewValue: to}}
}

func (t UpdatedProperties) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *UpdatedProperties) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), t)
}
