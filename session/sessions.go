package session

import (
	"context"
	"portal/bizerror"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	reqCtx := context.Background()
	if ctx.Request != nil {
		reqCtx = ctx.Request.Context()
	}
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: reqCtx}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: reqCtx}
	}
	s := s0.Clone()
	s.Context = reqCtx // trace context
	return &s
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(KeySecToken)
		if err != nil {
			panic(bizerror.ErrUnauthenticated)
		}
		value, found := TokenCache.Get(token)
		if !found {
			panic(bizerror.ErrUnauthenticated)
		}
		s, ok := value.(*Session)
		if !ok {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}

// AdminOnly must be chained after SimpleAuthFilter.
func AdminOnly() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !ExtractSessionFromGinContext(ctx).IsAdmin() {
			panic(bizerror.ErrForbidden)
		}
		ctx.Next()
	}
}
