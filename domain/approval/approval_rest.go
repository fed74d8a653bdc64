package approval

import (
	"net/http"
	"portal/bizerror"
	"portal/domain"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterApprovalRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/phases", middleWares...)
	g.GET("/:id/approvals", handleQueryApprovals)
	g.POST("/:id/approval-requests", phaseAction(func(id types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
		return RequestApprovalFunc(id, s)
	}))
	g.POST("/:id/approval", phaseAction(func(id types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
		return ApproveFunc(id, s)
	}))
	g.POST("/:id/change-requests", handleRequestChanges)
	g.POST("/:id/start", phaseAction(func(id types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
		return StartPhaseFunc(id, s)
	}))
	g.POST("/:id/rework", phaseAction(func(id types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
		return ReworkPhaseFunc(id, s)
	}))
}

func parsePhaseID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

// phaseAction adapts a body-less workflow operation to a handler.
func phaseAction(op func(types.ID, *session.Session) (*domain.PhaseOutcome, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := parsePhaseID(c)
		outcome, err := op(id, session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, outcome)
	}
}

func handleRequestChanges(c *gin.Context) {
	id := parsePhaseID(c)
	body := domain.ChangesRequesting{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	outcome, err := RequestChangesFunc(id, body.Feedback, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, outcome)
}

func handleQueryApprovals(c *gin.Context) {
	id := parsePhaseID(c)
	approvals, err := QueryApprovalsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, approvals)
}
