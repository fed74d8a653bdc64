package event

import (
	"sync"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

/*
return nil if not support
*/
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

// ProjectHandler reacts to a project that changed, once per dispatched batch.
type ProjectHandler func(projectId types.ID) *EventHandleResult

var (
	handlersMu      sync.RWMutex
	EventHandlers   []EventHandler
	ProjectHandlers []ProjectHandler
)

var InvokeHandlersFunc = invokeHandlers

func RegisterHandlers(handlers ...EventHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	EventHandlers = append(EventHandlers, handlers...)
}

func RegisterProjectHandlers(handlers ...ProjectHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	ProjectHandlers = append(ProjectHandlers, handlers...)
}

func invokeProjectHandlers(projectId types.ID) {
	handlersMu.RLock()
	handlers := append([]ProjectHandler{}, ProjectHandlers...)
	handlersMu.RUnlock()

	for _, handler := range handlers {
		r := handler(projectId)
		if r == nil || r.Success {
			continue
		}
		logrus.WithFields(logrus.Fields{"handler": r.HandlerIdentifier, "project": projectId}).
			Error("post handler error. ", r.Message)
	}
}

func invokeHandlers(record *EventRecord) []EventHandleResult {
	handlersMu.RLock()
	handlers := append([]EventHandler{}, EventHandlers...)
	handlersMu.RUnlock()

	results := []EventHandleResult{}
	for _, handler := range handlers {
		logrus.Debug("pre handle event ", record.Event)
		r := handler(record)

		if r == nil {
			continue
		}

		results = append(results, *r)

		if r.Success {
			logrus.WithField("handler", r.HandlerIdentifier).Debug("post handle event. ", r.Message)
		} else {
			logrus.WithFields(logrus.Fields{"handler": r.HandlerIdentifier, "eventId": record.ID,
				"category": record.EventCategory}).Error("post handler error. ", r.Message)
		}
	}
	return results
}
