package project

import (
	"net/http"
	"portal/bizerror"
	"portal/domain"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathProjects = "/v1/projects"

func RegisterProjectsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathProjects, middleWares...)
	g.GET("", handleQueryProjects)
	g.POST("", handleCreateProject)
	g.GET("/:id", handleDetailProject)
	g.PUT("/:id/status", handleUpdateProjectStatus)
	g.POST("/:id/phases", handleAddPhase)
	g.POST("/:id/progress", handleRecomputeProgress)
	g.GET("/:id/events", handleQueryProjectEvents)
}

func bindProjectID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleQueryProjects(c *gin.Context) {
	projects, err := QueryProjectsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, projects)
}

func handleCreateProject(c *gin.Context) {
	creating := domain.ProjectCreating{}
	if err := c.ShouldBindBodyWith(&creating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := CreateProjectFunc(&creating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleDetailProject(c *gin.Context) {
	detail, err := DetailProjectFunc(bindProjectID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateProjectStatus(c *gin.Context) {
	id := bindProjectID(c)
	updating := domain.ProjectStatusUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	p, err := UpdateProjectStatusFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, p)
}

func handleAddPhase(c *gin.Context) {
	id := bindProjectID(c)
	creating := domain.PhaseCreating{}
	if err := c.ShouldBindBodyWith(&creating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	ph, err := AddPhaseFunc(id, &creating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, ph)
}

func handleRecomputeProgress(c *gin.Context) {
	p, err := RecomputeProjectProgressFunc(bindProjectID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, p)
}

func handleQueryProjectEvents(c *gin.Context) {
	records, err := QueryProjectEventsFunc(bindProjectID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
