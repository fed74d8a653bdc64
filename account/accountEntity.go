package account

import (
	"portal/persistence"

	"github.com/fundwit/go-commons/types"
)

func init() {
	persistence.RegisterEntities(&User{})
}

type User struct {
	ID     types.ID `json:"id"`
	Email  string   `json:"email" gorm:"unique_index:uni_email;size:191"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Secret string   `json:"-"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type UserInfo struct {
	ID    types.ID `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  string   `json:"role"`
}

type UserCreation struct {
	Email  string `json:"email" binding:"required,email,lte=191"`
	Name   string `json:"name" binding:"required,lte=64"`
	Role   string `json:"role" binding:"required,oneof=admin client"`
	Secret string `json:"secret" binding:"required,gte=6,lte=32"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// DisplayName falls back to the email when no name is set.
func (u UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
