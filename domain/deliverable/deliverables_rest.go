package deliverable

import (
	"net/http"
	"portal/bizerror"
	"portal/domain"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathDeliverables = "/v1/deliverables"

func RegisterDeliverablesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDeliverables, middleWares...)
	g.GET("", handleQueryDeliverables)
	g.POST("", handleCreateDeliverable)
	g.PUT("/:id/status", handleUpdateDeliverableStatus)
}

func handleQueryDeliverables(c *gin.Context) {
	q := domain.DeliverableQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	deliverables, err := QueryDeliverablesFunc(&q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, deliverables)
}

func handleCreateDeliverable(c *gin.Context) {
	creating := domain.DeliverableCreating{}
	if err := c.ShouldBindBodyWith(&creating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	d, err := CreateDeliverableFunc(&creating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, d)
}

func handleUpdateDeliverableStatus(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updating := domain.DeliverableStatusUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	d, err := UpdateDeliverableStatusFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, d)
}
