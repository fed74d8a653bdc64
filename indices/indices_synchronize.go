package indices

import (
	"context"
	"fmt"
	"portal/bizerror"
	"portal/domain"
	"portal/domain/project"
	"portal/event"
	"portal/persistence"
	"portal/session"
	"sync"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ProjectIndexEventHandlerName = "projectIndexer"
	indexRobot                   = &session.Session{
		Context:  context.Background(),
		Identity: session.Identity{ID: 10, Name: "index-robot", Role: session.RoleAdmin},
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	LoadProjectsFunc       = LoadProjects
	ReindexProjectFunc     = ReindexProject
)

var (
	SyncBatchSize = 500
)

// ScheduleNewSyncRun starts a full sync in background, false when one is already running.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.IsAdmin() {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(); err != nil {
			logrus.Errorf("indices fully sync: %v", err)
		}
	}()
	waitRunning.Wait()
	return true, nil
}

func LoadProjects(page, size int) ([]domain.Project, error) {
	projects := []domain.Project{}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	for page := 1; ; page++ {
		projects, err := LoadProjectsFunc(page, SyncBatchSize)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			logrus.Info("indices fully sync: there are no more projects to index")
			return nil
		}

		details := make([]domain.ProjectDetail, 0, len(projects))
		for _, p := range projects {
			detail, err := project.DetailProjectFunc(p.ID, indexRobot)
			if err != nil {
				logrus.Warnf("indices fully sync: detail project %d: %v", p.ID, err)
				continue
			}
			details = append(details, *detail)
		}
		if err := IndexProjects(details, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: page = %d, pageSize = %d: %v", page, SyncBatchSize, err)
		}
	}
}

// ReindexProject writes the current document of one project.
func ReindexProject(projectId types.ID, s *session.Session) error {
	if !s.IsAdmin() {
		return bizerror.ErrForbidden
	}
	detail, err := project.DetailProjectFunc(projectId, indexRobot)
	if err != nil {
		return fmt.Errorf("detail project when index project %d, %w", projectId, err)
	}
	if err := IndexProjects([]domain.ProjectDetail{*detail}, indexRobot); err != nil {
		return fmt.Errorf("index project %d, %w", projectId, err)
	}
	return nil
}

// IndexProjectHandle re-indexes a project changed by committed events.
func IndexProjectHandle(projectId types.ID) *event.EventHandleResult {
	if projectId == 0 {
		return nil
	}
	if err := ReindexProjectFunc(projectId, indexRobot); err != nil {
		return &event.EventHandleResult{Message: err.Error(), HandlerIdentifier: ProjectIndexEventHandlerName}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ProjectIndexEventHandlerName}
}
