package session

import (
	"context"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type Session struct {
	Context context.Context `json:"-"`

	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID    types.ID `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  string   `json:"role"`
}

func (s *Session) Clone() Session {
	return Session{Context: s.Context, Token: s.Token, Identity: s.Identity, SigningTime: s.SigningTime}
}

func (s *Session) IsAdmin() bool {
	return s.Identity.Role == RoleAdmin
}

// IsClientOf reports whether the session belongs to the client a project was created for.
func (s *Session) IsClientOf(clientEmail string) bool {
	if s.Identity.Role != RoleClient || s.Identity.Email == "" {
		return false
	}
	return strings.EqualFold(s.Identity.Email, clientEmail)
}

// CanRespondFor admins and the project's own client may answer approval requests.
func (s *Session) CanRespondFor(clientEmail string) bool {
	return s.IsAdmin() || s.IsClientOf(clientEmail)
}

// CanView admins see every project, clients only their own.
func (s *Session) CanView(clientEmail string) bool {
	return s.IsAdmin() || s.IsClientOf(clientEmail)
}
