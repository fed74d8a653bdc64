package sessions

import (
	"net/http"
	"portal/account"
	"portal/bizerror"
	"portal/session"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var FindUserByCredentialsFunc = account.FindUserByCredentials

func RegisterSessionsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/sessions", middleWares...)
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
}

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSessionHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.Status(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := account.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := FindUserByCredentialsFunc(c.Request.Context(), login.Email, login.Password)
	if err != nil {
		panic(err)
	}

	token := uuid.New().String()
	s := &session.Session{
		Token:       token,
		Identity:    session.Identity{ID: user.ID, Email: user.Email, Name: user.DisplayName(), Role: user.Role},
		SigningTime: time.Now(),
	}
	session.TokenCache.Set(token, s, cache.DefaultExpiration)
	logrus.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role}).Info("user signed in")

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, s)
}

// DetailSessionHandler returns the current session and slides its expiration.
func DetailSessionHandler(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(s.SigningTime)
	if ttl <= 0 {
		session.TokenCache.Delete(s.Token)
		panic(bizerror.ErrUnauthenticated)
	}
	renewed := s.Clone()
	renewed.Context = nil
	renewed.SigningTime = now
	session.TokenCache.Set(s.Token, &renewed, session.TokenExpiration)
	c.JSON(http.StatusOK, &renewed)
}
