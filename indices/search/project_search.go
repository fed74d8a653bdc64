package search

import (
	"encoding/json"
	"net/http"
	"portal/bizerror"
	"portal/client/es"
	"portal/domain"
	"portal/domain/project"
	"portal/indices"
	"portal/session"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	SearchProjectsFunc = SearchProjects
)

type ProjectQuery struct {
	Name   string               `json:"name" form:"name"`
	Status domain.ProjectStatus `json:"status" form:"status"`
}

// SearchProjects queries the project index, or the database when no index is configured.
// Clients only ever see their own projects.
func SearchProjects(q ProjectQuery, s *session.Session) ([]domain.Project, error) {
	if !s.IsAdmin() && s.Identity.Email == "" {
		return nil, bizerror.ErrForbidden
	}
	if !es.Enabled() {
		return searchDatabase(q, s)
	}

	filters := make([]es.H, 0, 3)
	if !s.IsAdmin() {
		filters = append(filters, es.H{"term": es.H{"clientEmail.keyword": strings.ToLower(s.Identity.Email)}})
	}
	if q.Name != "" {
		filters = append(filters, es.H{"match": es.H{"name": es.H{"query": q.Name, "operator": "AND"}}})
	}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status.keyword": q.Status}})
	}
	query := es.H{
		"size":  1000,
		"query": es.H{"bool": es.H{"filter": filters}},
		"sort":  []es.H{{"id.keyword": es.H{"order": "desc"}}},
	}

	r, err := es.SearchFunc(indices.ProjectIndexName, query, s)
	if err != nil {
		return nil, err
	}
	projects := make([]domain.Project, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.ProjectDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		projects = append(projects, doc.Project)
	}
	return projects, nil
}

func searchDatabase(q ProjectQuery, s *session.Session) ([]domain.Project, error) {
	all, err := project.QueryProjectsFunc(s)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(strings.TrimSpace(q.Name))
	projects := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/project-search", middleWares...)
	g.GET("", handleSearchProjects)
}

func handleSearchProjects(c *gin.Context) {
	q := ProjectQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	projects, err := SearchProjectsFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, projects)
}
