package indices

import (
	"fmt"
	"portal/client/es"
	"portal/domain"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ProjectIndexName = "projects"
)

// ProjectDocument is the searchable view of a project together with its phases.
type ProjectDocument struct {
	domain.ProjectDetail
	PhaseNames   []string `json:"phaseNames"`
	CurrentPhase string   `json:"currentPhase"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func NewProjectDocument(detail domain.ProjectDetail) ProjectDocument {
	doc := ProjectDocument{ProjectDetail: detail, PhaseNames: make([]string, 0, len(detail.Phases))}
	for _, p := range detail.Phases {
		doc.PhaseNames = append(doc.PhaseNames, p.Name)
		if doc.CurrentPhase == "" && p.Status != domain.PhaseStatusApproved {
			doc.CurrentPhase = p.Name
		}
	}
	return doc
}

func IndexProjects(details []domain.ProjectDetail, s *session.Session) error {
	errs := BatchActionError{}
	for _, detail := range details {
		doc := NewProjectDocument(detail)
		if err := es.IndexFunc(ProjectIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index project %d %s: %v", doc.ID, doc.Name, err)
		} else {
			logrus.Debugf("index project %d %s successfully", doc.ID, doc.Name)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
