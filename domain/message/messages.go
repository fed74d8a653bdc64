package message

import (
	"portal/bizerror"
	"portal/domain"
	"portal/domain/phase"
	"portal/idgen"
	"portal/persistence"
	"portal/session"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	ContentApprovalRequested = "Approval requested for this phase"
	ContentApproved          = "Phase approved"
	ContentPhaseStarted      = "Phase started"
	ContentReworkStarted     = "Rework started on this phase"
)

var (
	messageIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryMessagesFunc = QueryMessages
	PostMessageFunc   = PostMessage
)

// AppendMessage writes a message to the phase thread inside tx.
func AppendMessage(p *domain.Phase, messageType domain.MessageType, authorID types.ID, content string,
	timestamp types.Timestamp, tx *gorm.DB) (*domain.Message, error) {
	m := domain.Message{
		ID:          idgen.NextID(messageIdWorker),
		PhaseID:     p.ID,
		ProjectID:   p.ProjectID,
		MessageType: messageType,
		AuthorID:    authorID,
		Content:     content,
		CreateTime:  timestamp,
	}
	if err := tx.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func AppendSystemMessage(p *domain.Phase, authorID types.ID, content string, timestamp types.Timestamp, tx *gorm.DB) (*domain.Message, error) {
	return AppendMessage(p, domain.MessageTypeSystem, authorID, content, timestamp, tx)
}

// QueryMessages returns the thread of a phase, oldest first.
func QueryMessages(phaseID types.ID, s *session.Session) ([]domain.Message, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	c, err := phase.LoadPhaseContextFunc(phaseID, db)
	if err != nil {
		return nil, err
	}
	if !s.CanView(c.Project.ClientEmail) {
		return nil, bizerror.ErrForbidden
	}

	messages := []domain.Message{}
	if err := db.Where("phase_id = ?", phaseID).Order("create_time ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// PostMessage appends a user message written by the session owner.
func PostMessage(phaseID types.ID, c *domain.MessageCreating, s *session.Session) (*domain.Message, error) {
	content := strings.TrimSpace(c.Content)
	if content == "" {
		return nil, &bizerror.ErrBadParam{Cause: errEmptyContent}
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	pc, err := phase.LoadPhaseContextFunc(phaseID, db)
	if err != nil {
		return nil, err
	}
	if !s.CanView(pc.Project.ClientEmail) {
		return nil, bizerror.ErrForbidden
	}
	return AppendMessage(&pc.Phase, domain.MessageTypeUser, s.Identity.ID, content, types.CurrentTimestamp(), db)
}
