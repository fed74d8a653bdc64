package notify

import (
	"portal/event"
	"portal/metrics"
	"strings"
)

const handlerIdentifier = "notify"

// RoutingKey is "<source type>.<category>" in lower case, e.g. "phase.approval_requested".
func RoutingKey(record *event.EventRecord) string {
	return strings.ToLower(record.SourceType) + "." + strings.ToLower(string(record.EventCategory))
}

// EventHandler publishes every committed event, consumers bind by routing key pattern.
func EventHandler(p Publisher) event.EventHandler {
	return func(record *event.EventRecord) *event.EventHandleResult {
		err := p.Publish(RoutingKey(record), record)
		metrics.RecordEventPublish(err == nil)
		if err != nil {
			return &event.EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: handlerIdentifier}
		}
		return &event.EventHandleResult{Success: true, Message: RoutingKey(record), HandlerIdentifier: handlerIdentifier}
	}
}
