package account_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"portal/account"
	"portal/bizerror"
	"portal/session"
	"portal/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UserRestApi", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.New()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersHandler(router, session.SimpleAuthFilter())
	})
	AfterEach(func() {
		account.QueryUsersFunc = account.QueryUsers
		account.CreateUserFunc = account.CreateUser
	})

	Describe("HandleQueryUsers", func() {
		It("should return users", func() {
			account.QueryUsersFunc = func(s *session.Session) ([]account.UserInfo, error) {
				return []account.UserInfo{{ID: 1, Email: "ops@agency.test", Name: "ops", Role: session.RoleAdmin}}, nil
			}
			req := testinfra.Authenticate(httptest.NewRequest(http.MethodGet, "/v1/users", nil), testinfra.AdminSession())
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"id":"1","email":"ops@agency.test","name":"ops","role":"admin"}]`))
		})

		It("should return 401 without session", func() {
			status, _, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/v1/users", nil), router)
			Expect(status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("HandleCreateUser", func() {
		It("should create user", func() {
			var payload *account.UserCreation
			account.CreateUserFunc = func(c *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				payload = c
				return &account.UserInfo{ID: 9, Email: c.Email, Name: c.Name, Role: c.Role}, nil
			}
			req := testinfra.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/users",
				bytes.NewReader([]byte(`{"email":"ann@client.test","name":"Ann","role":"client","secret":"abc123"}`))), testinfra.AdminSession())
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(MatchJSON(`{"id":"9","email":"ann@client.test","name":"Ann","role":"client"}`))
			Expect(*payload).To(Equal(account.UserCreation{Email: "ann@client.test", Name: "Ann", Role: "client", Secret: "abc123"}))
		})

		It("should return 400 when role is unknown", func() {
			req := testinfra.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/users",
				bytes.NewReader([]byte(`{"email":"ann@client.test","name":"Ann","role":"root","secret":"abc123"}`))), testinfra.AdminSession())
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring(`common.bad_param`))
		})

		It("should return 409 when email is occupied", func() {
			account.CreateUserFunc = func(c *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				return nil, account.ErrEmailOccupied
			}
			req := testinfra.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/users",
				bytes.NewReader([]byte(`{"email":"ann@client.test","name":"Ann","role":"client","secret":"abc123"}`))), testinfra.AdminSession())
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(MatchJSON(`{"code":"account.email_occupied","message":"email already registered","data":null}`))
		})
	})
})
