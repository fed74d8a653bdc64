package notify_test

import (
	"errors"
	"portal/event"
	"portal/metrics"
	"portal/notify"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type recordingPublisher struct {
	keys     []string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(routingKey string, payload interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestEventHandler(t *testing.T) {
	RegisterTestingT(t)

	record := &event.EventRecord{ID: 7, Event: event.Event{SourceType: event.SourceTypePhase, SourceId: 20, ProjectId: 9,
		EventCategory: event.EventCategoryApprovalRequested}}

	t.Run("should build routing key from source type and category", func(t *testing.T) {
		Expect(notify.RoutingKey(record)).To(Equal("phase.approval_requested"))
	})

	t.Run("should publish the event record", func(t *testing.T) {
		p := &recordingPublisher{}
		before := testutil.ToFloat64(metrics.EventPublish.WithLabelValues("success"))

		r := notify.EventHandler(p)(record)
		Expect(r.Success).To(BeTrue())
		Expect(r.HandlerIdentifier).To(Equal("notify"))
		Expect(p.keys).To(Equal([]string{"phase.approval_requested"}))
		Expect(p.payloads[0]).To(Equal(record))
		Expect(testutil.ToFloat64(metrics.EventPublish.WithLabelValues("success")) - before).To(Equal(float64(1)))
	})

	t.Run("should report publish failure", func(t *testing.T) {
		p := &recordingPublisher{err: errors.New("channel closed")}
		before := testutil.ToFloat64(metrics.EventPublish.WithLabelValues("failed"))

		r := notify.EventHandler(p)(record)
		Expect(r.Success).To(BeFalse())
		Expect(r.Message).To(Equal("channel closed"))
		Expect(testutil.ToFloat64(metrics.EventPublish.WithLabelValues("failed")) - before).To(Equal(float64(1)))
	})
}

func TestNewPublisherFromEnv(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return nil when RABBITMQ_URL is not set", func(t *testing.T) {
		t.Setenv("RABBITMQ_URL", "")
		p, err := notify.NewPublisherFromEnv()
		Expect(err).To(BeNil())
		Expect(p).To(BeNil())
	})
}
