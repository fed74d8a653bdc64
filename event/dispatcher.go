package event

import (
	"github.com/sirupsen/logrus"
)

// ActiveDispatcher queues committed events for a background worker. When nil, DispatchAll
// runs the handlers on the caller's goroutine.
var ActiveDispatcher *Dispatcher

// Dispatcher hands batches of committed events to the registered handlers on one worker goroutine.
type Dispatcher struct {
	queue chan []*EventRecord
	done  chan struct{}
}

func StartDispatcher(buffer int) *Dispatcher {
	d := &Dispatcher{queue: make(chan []*EventRecord, buffer), done: make(chan struct{})}
	go d.run()
	logrus.WithField("buffer", buffer).Info("event dispatcher started")
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for batch := range d.queue {
		dispatchBatch(batch)
	}
}

// Enqueue never blocks; the batch is dropped when the queue is full.
func (d *Dispatcher) Enqueue(batch []*EventRecord) bool {
	select {
	case d.queue <- batch:
		return true
	default:
		logrus.WithField("events", len(batch)).Error("event queue is full, batch dropped")
		return false
	}
}

// Stop handles what is already queued and waits for the worker to exit.
func (d *Dispatcher) Stop() {
	close(d.queue)
	<-d.done
	logrus.Info("event dispatcher stopped")
}

func dispatchBatch(records []*EventRecord) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("events", len(records)).Errorf("event handler panic: %v", r)
		}
	}()

	for _, record := range records {
		if record != nil {
			InvokeHandlersFunc(record)
		}
	}
	for _, projectId := range touchedProjects(records) {
		invokeProjectHandlers(projectId)
	}
}
