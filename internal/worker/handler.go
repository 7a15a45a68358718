package worker

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type executeRequest struct {
	Task string `json:"task"`
}

type Handler struct {
	exec *Executor
}

func NewHandler(e *Executor) *Handler {
	return &Handler{exec: e}
}

// Register mounts the worker API on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/api/execute", h.Execute)
	r.GET("/api/stats", h.Stats)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (h *Handler) Execute(c *gin.Context) {
	var req executeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := h.exec.Execute(c.Request.Context(), req.Task)
	if err == ErrUnknownTask {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).WithField("task", req.Task).Error("task execution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	task := req.Task
	if task == "" {
		task = "light"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "completed",
		"task":   task,
		"result": res,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.exec.Stats())
}

// NewRouter returns a gin engine serving the worker API.
func NewRouter(e *Executor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	NewHandler(e).Register(r)
	return r
}
