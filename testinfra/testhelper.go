package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	defer func() {
		_ = resp.Body.Close()
	}()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), resp.Header
}

// BuildSession build session with a fresh token
func BuildSession(uid types.ID, email, role string) *session.Session {
	return &session.Session{
		Context:  context.Background(),
		Token:    uuid.New().String(),
		Identity: session.Identity{ID: uid, Email: email, Name: email, Role: role},
	}
}

func AdminSession() *session.Session {
	return BuildSession(1, "admin@agency.test", session.RoleAdmin)
}

func ClientSession(email string) *session.Session {
	return BuildSession(2, email, session.RoleClient)
}

// Authenticate stores s in the token cache and attaches its cookie to req.
func Authenticate(req *http.Request, s *session.Session) *http.Request {
	session.TokenCache.Set(s.Token, s, cache.DefaultExpiration)
	req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: s.Token})
	return req
}
