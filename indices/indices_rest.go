package indices

import (
	"errors"
	"io"
	"net/http"
	"portal/bizerror"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-requests"
)

// IndexRequest re-indexes one project when ProjectID is set, every project otherwise.
type IndexRequest struct {
	ProjectID types.ID `json:"projectId"`
}

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)
}

func handleIndexRequest(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	req := IndexRequest{}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if req.ProjectID != 0 {
		if err := ReindexProjectFunc(req.ProjectID, s); err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, gin.H{"result": "indexed", "projectId": req.ProjectID})
		return
	}

	started, err := ScheduleNewSyncRunFunc(s)
	if err != nil {
		panic(err)
	}
	if !started {
		c.JSON(http.StatusOK, gin.H{"result": "already running"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"result": "started"})
}
