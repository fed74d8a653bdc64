package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"portal/bizerror"
	"portal/idgen"
	"portal/persistence"
	"portal/session"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker *sonyflake.Sonyflake

	ErrEmailOccupied = &bizerror.ErrWorkflow{Kind: bizerror.KindConflict, Code: "account.email_occupied", Message: "email already registered"}
)

func init() {
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindUserByCredentials returns ErrUnauthenticated for an unknown email or a wrong password.
func FindUserByCredentials(ctx context.Context, email, password string) (*UserInfo, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Where(&User{Email: normalizeEmail(email), Secret: HashSha256(password)}).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bizerror.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	var users []User
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.Info())
	}
	return infos, nil
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	return createUser(persistence.ActiveDataSourceManager.GormDB(s.Context), c)
}

func createUser(db *gorm.DB, c *UserCreation) (*UserInfo, error) {
	email := normalizeEmail(c.Email)
	var count int
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailOccupied
	}

	user := User{ID: idgen.NextID(userIdWorker), Email: email, Name: c.Name, Role: c.Role,
		Secret: HashSha256(c.Secret), CreateTime: types.CurrentTimestamp()}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

// EnsureAdmin seeds the bootstrap administrator when its email is not registered yet.
func EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := createUser(persistence.ActiveDataSourceManager.GormDB(ctx),
		&UserCreation{Email: email, Name: "admin", Role: session.RoleAdmin, Secret: password})
	if errors.Is(err, ErrEmailOccupied) {
		return nil
	}
	if err == nil {
		logrus.WithField("email", normalizeEmail(email)).Info("bootstrap administrator created")
	}
	return err
}
