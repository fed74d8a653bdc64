package message_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"portal/bizerror"
	"portal/domain"
	"portal/domain/message"
	"portal/session"
	"portal/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestMessagesRestAPI(t *testing.T) {
	RegisterTestingT(t)

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(bizerror.ErrorHandling())
		message.RegisterMessagesRestAPI(router, session.SimpleAuthFilter())
		return router
	}
	defer func() {
		message.QueryMessagesFunc = message.QueryMessages
		message.PostMessageFunc = message.PostMessage
	}()

	t.Run("should list messages of a phase", func(t *testing.T) {
		var gotPhase types.ID
		message.QueryMessagesFunc = func(phaseID types.ID, s *session.Session) ([]domain.Message, error) {
			gotPhase = phaseID
			return []domain.Message{{ID: 1, PhaseID: phaseID, ProjectID: 9, MessageType: domain.MessageTypeSystem, AuthorID: 1,
				Content: message.ContentApprovalRequested, CreateTime: types.TimestampOfDate(2021, 1, 1, 0, 0, 0, 0, time.UTC)}}, nil
		}
		req := testinfra.Authenticate(httptest.NewRequest(http.MethodGet, "/v1/phases/20/messages", nil), testinfra.AdminSession())
		status, body, _ := testinfra.ExecuteRequest(req, newRouter())
		Expect(status).To(Equal(http.StatusOK))
		Expect(gotPhase).To(Equal(types.ID(20)))
		Expect(body).To(MatchJSON(`[{"id":"1","phaseId":"20","projectId":"9","messageType":"system","authorId":"1",
			"content":"Approval requested for this phase","createTime":"2021-01-01T00:00:00Z"}]`))
	})

	t.Run("should return 400 when phase id is invalid", func(t *testing.T) {
		req := testinfra.Authenticate(httptest.NewRequest(http.MethodGet, "/v1/phases/abc/messages", nil), testinfra.AdminSession())
		status, _, _ := testinfra.ExecuteRequest(req, newRouter())
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should post message", func(t *testing.T) {
		var got *domain.MessageCreating
		message.PostMessageFunc = func(phaseID types.ID, c *domain.MessageCreating, s *session.Session) (*domain.Message, error) {
			got = c
			return &domain.Message{ID: 2, PhaseID: phaseID, MessageType: domain.MessageTypeUser, AuthorID: s.Identity.ID, Content: c.Content}, nil
		}
		req := testinfra.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/phases/20/messages",
			bytes.NewReader([]byte(`{"content":"hello"}`))), testinfra.ClientSession("ann@client.test"))
		status, body, _ := testinfra.ExecuteRequest(req, newRouter())
		Expect(status).To(Equal(http.StatusCreated))
		Expect(*got).To(Equal(domain.MessageCreating{Content: "hello"}))
		Expect(body).To(MatchJSON(`{"id":"2","phaseId":"20","projectId":"0","messageType":"user","authorId":"2","content":"hello","createTime":null}`))
	})

	t.Run("should return 400 when content is missing", func(t *testing.T) {
		req := testinfra.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/phases/20/messages",
			bytes.NewReader([]byte(`{}`))), testinfra.AdminSession())
		status, _, _ := testinfra.ExecuteRequest(req, newRouter())
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should return 403 when service refuses", func(t *testing.T) {
		message.PostMessageFunc = func(phaseID types.ID, c *domain.MessageCreating, s *session.Session) (*domain.Message, error) {
			return nil, bizerror.ErrForbidden
		}
		req := testinfra.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/phases/20/messages",
			bytes.NewReader([]byte(`{"content":"hello"}`))), testinfra.ClientSession("bob@client.test"))
		status, _, _ := testinfra.ExecuteRequest(req, newRouter())
		Expect(status).To(Equal(http.StatusForbidden))
	})

	t.Run("should return 500 on unexpected error", func(t *testing.T) {
		message.QueryMessagesFunc = func(phaseID types.ID, s *session.Session) ([]domain.Message, error) {
			return nil, errors.New("some error")
		}
		req := testinfra.Authenticate(httptest.NewRequest(http.MethodGet, "/v1/phases/20/messages", nil), testinfra.AdminSession())
		status, body, _ := testinfra.ExecuteRequest(req, newRouter())
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"some error","data":null}`))
	})
}
