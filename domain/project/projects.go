package project

import (
	"portal/bizerror"
	"portal/domain"
	"portal/domain/deliverable"
	"portal/domain/phase"
	"portal/domain/progress"
	"portal/event"
	"portal/idgen"
	"portal/persistence"
	"portal/session"
	"strconv"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateProjectFunc            = CreateProject
	QueryProjectsFunc            = QueryProjects
	DetailProjectFunc            = DetailProject
	UpdateProjectStatusFunc      = UpdateProjectStatus
	AddPhaseFunc                 = AddPhase
	RecomputeProjectProgressFunc = RecomputeProjectProgress
	QueryProjectEventsFunc       = QueryProjectEvents
)

// CreateProject creates the project and its phases; the first phase starts in progress.
func CreateProject(c *domain.ProjectCreating, s *session.Session) (*domain.ProjectDetail, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	specs, err := ResolvePhases(c)
	if err != nil {
		return nil, &bizerror.ErrBadParam{Cause: err}
	}

	now := types.CurrentTimestamp()
	p := domain.Project{
		ID:          idgen.NextID(idWorker),
		Name:        strings.TrimSpace(c.Name),
		ClientEmail: strings.ToLower(strings.TrimSpace(c.ClientEmail)),
		Status:      domain.ProjectStatusActive,
		CreatorID:   s.Identity.ID,
		CreateTime:  now,
	}
	phases := make([]domain.Phase, 0, len(specs))
	for i, spec := range specs {
		status := domain.PhaseStatusNotStarted
		if i == 0 {
			status = domain.PhaseStatusInProgress
		}
		phases = append(phases, domain.Phase{ID: idgen.NextID(idWorker), ProjectID: p.ID, Name: spec.Name,
			Order: i + 1, Status: status, DueDate: spec.DueDate, CreateTime: now})
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		for i := range phases {
			if err := tx.Create(&phases[i]).Error; err != nil {
				return err
			}
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeProject, p.ID, p.Name, p.ID, event.EventCategoryCreated, nil, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"project": p.ID, "phases": len(phases), "actor": s.Identity.ID}).Info("project created")
	event.DispatchAll([]*event.EventRecord{ev})
	return &domain.ProjectDetail{Project: p, Phases: BuildPhaseViews(phases, nil)}, nil
}

// QueryProjects lists every project for admins and the own projects for clients.
func QueryProjects(s *session.Session) ([]domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if !s.IsAdmin() {
		if s.Identity.Email == "" {
			return nil, bizerror.ErrForbidden
		}
		db = db.Where("client_email = ?", strings.ToLower(s.Identity.Email))
	}
	projects := []domain.Project{}
	if err := db.Order("create_time DESC").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func loadVisibleProject(id types.ID, s *session.Session, db *gorm.DB) (*domain.Project, error) {
	p := domain.Project{}
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	if !s.CanView(p.ClientEmail) {
		return nil, bizerror.ErrForbidden
	}
	return &p, nil
}

func DetailProject(id types.ID, s *session.Session) (*domain.ProjectDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	p, err := loadVisibleProject(id, s, db)
	if err != nil {
		return nil, err
	}
	ordered, err := phase.QueryProjectPhasesFunc(id, db)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(ordered))
	for _, ph := range ordered {
		ids = append(ids, ph.ID)
	}
	counts, err := deliverable.CountByPhase(ids, db)
	if err != nil {
		return nil, err
	}
	return &domain.ProjectDetail{Project: *p, Phases: BuildPhaseViews(ordered, counts)}, nil
}

// BuildPhaseViews annotates phases, sorted by order, with accessibility and deliverable counts.
func BuildPhaseViews(phases []domain.Phase, counts map[types.ID][2]int) []domain.PhaseView {
	ordered := phase.SortPhases(phases)
	views := make([]domain.PhaseView, 0, len(ordered))
	for _, ph := range ordered {
		c := counts[ph.ID]
		views = append(views, domain.PhaseView{Phase: ph, Accessible: phase.IsAccessible(ph, ordered),
			DeliverableCount: c[0], ReadyDeliverableCount: c[1]})
	}
	return views
}

// UpdateProjectStatus sets a manual status; completed is owned by the progress aggregator.
func UpdateProjectStatus(id types.ID, u *domain.ProjectStatusUpdating, s *session.Session) (*domain.Project, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if !u.Status.Valid() || u.Status == domain.ProjectStatusCompleted {
		return nil, bizerror.ErrUnknownStatus
	}

	p := domain.Project{}
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if p.Status == u.Status {
			return nil
		}
		from := p.Status
		r := tx.Model(&domain.Project{}).Where("id = ? AND status = ?", id, from).Update("status", u.Status)
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		p.Status = u.Status
		var err error
		ev, err = event.CreateEvent(event.SourceTypeProject, p.ID, p.Name, p.ID, event.EventCategoryPropertyUpdated,
			event.StatusChange(string(from), string(u.Status)), &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ev != nil {
		event.DispatchAll([]*event.EventRecord{ev})
	}
	return &p, nil
}

// AddPhase inserts a phase after every approved phase of the project; a new phase is not approved,
// so progress is recomputed.
func AddPhase(projectID types.ID, c *domain.PhaseCreating, s *session.Session) (*domain.Phase, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	var ph domain.Phase
	var events []*event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where("id = ?", projectID).First(&p).Error; err != nil {
			return err
		}
		var count int
		if err := tx.Model(&domain.Phase{}).Where("project_id = ? AND phase_order = ?", projectID, c.Order).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.ErrPhaseOrderConflict
		}
		// a not_started phase ahead of an approved one would break gating
		var approvedAfter int
		if err := tx.Model(&domain.Phase{}).Where("project_id = ? AND phase_order > ? AND status = ?",
			projectID, c.Order, domain.PhaseStatusApproved).Count(&approvedAfter).Error; err != nil {
			return err
		}
		if approvedAfter > 0 {
			return bizerror.ErrPhaseOrderBeforeApproved
		}

		now := types.CurrentTimestamp()
		ph = domain.Phase{ID: idgen.NextID(idWorker), ProjectID: projectID, Name: c.Name, Order: c.Order,
			Status: domain.PhaseStatusNotStarted, DueDate: c.DueDate, AssigneeID: c.AssigneeID, CreateTime: now}
		if err := tx.Create(&ph).Error; err != nil {
			return err
		}
		ev, err := event.CreateEvent(event.SourceTypePhase, ph.ID, ph.Name, projectID, event.EventCategoryCreated, nil, &s.Identity, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)

		_, progressEv, err := RecomputeProgressInTx(projectID, s, tx)
		if err != nil {
			return err
		}
		events = append(events, progressEv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.DispatchAll(events)
	return &ph, nil
}

// RecomputeProjectProgress rebuilds the cached progress of a project from its phases.
func RecomputeProjectProgress(projectID types.ID, s *session.Session) (*domain.Project, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	var result *domain.Project
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, ev, err = RecomputeProgressInTx(projectID, s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.DispatchAll([]*event.EventRecord{ev})
	return result, nil
}

// RecomputeProgressInTx persists fresh progress of the project and records an event when it changed.
// The returned event is nil when nothing changed.
func RecomputeProgressInTx(projectID types.ID, s *session.Session, tx *gorm.DB) (*domain.Project, *event.EventRecord, error) {
	before := domain.Project{}
	if err := tx.Where("id = ?", projectID).First(&before).Error; err != nil {
		return nil, nil, err
	}
	after, err := progress.RecomputeProjectProgress(projectID, tx)
	if err != nil {
		return nil, nil, err
	}
	if before.ProgressPercentage == after.ProgressPercentage && before.Status == after.Status {
		return after, nil, nil
	}
	ev, err := event.CreateEvent(event.SourceTypeProject, after.ID, after.Name, after.ID, event.EventCategoryProgressUpdated,
		ProgressChange(&before, after), &s.Identity, types.CurrentTimestamp(), tx)
	if err != nil {
		return nil, nil, err
	}
	return after, ev, nil
}

// ProgressChange lists the progress fields that differ between two project snapshots.
func ProgressChange(before, after *domain.Project) event.UpdatedProperties {
	props := event.UpdatedProperties{}
	if before.ProgressPercentage != after.ProgressPercentage {
		props = append(props, event.UpdatedProperty{PropertyName: "ProgressPercentage", PropertyDesc: "Progress",
			OldValue: strconv.Itoa(before.ProgressPercentage), NewValue: strconv.Itoa(after.ProgressPercentage)})
	}
	if before.Status != after.Status {
		props = append(props, event.StatusChange(string(before.Status), string(after.Status))...)
	}
	return props
}

// QueryProjectEvents returns the activity feed of a visible project.
func QueryProjectEvents(projectID types.ID, s *session.Session) ([]event.EventRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if _, err := loadVisibleProject(projectID, s, db); err != nil {
		return nil, err
	}
	return event.QueryProjectEventsFunc(projectID, db)
}
