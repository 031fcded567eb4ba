package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/export"
	"github.com/nguyentantai21042004/vidscribe/internal/jobs"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/validate"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type api struct {
	store   *config.Store
	manager *jobs.Manager
	board   *jobs.StatusBoard
	logger  logger.Logger
}

func newAPI(store *config.Store, mgr *jobs.Manager, board *jobs.StatusBoard, log logger.Logger) *api {
	return &api{store: store, manager: mgr, board: board, logger: log}
}

func registerRoutes(r *gin.Engine, a *api) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", a.handleHealth)
		apiGroup.GET("/status", a.handleStatus)

		apiGroup.POST("/jobs", a.handleSubmit)
		apiGroup.GET("/jobs/:id", a.handleGetJob)
		apiGroup.GET("/jobs/:id/status", a.handleJobStatus)
		apiGroup.POST("/jobs/:id/cancel", a.handleCancel)
		apiGroup.GET("/jobs/:id/export", a.handleExport)
		apiGroup.GET("/jobs/:id/events", a.handleEvents)
	}
}

func (a *api) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *api) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": a.manager.List()})
}

func (a *api) handleSubmit(c *gin.Context) {
	var payload struct {
		URL         string         `json:"url" binding:"required"`
		SummaryType string         `json:"summary_type"`
		Options     domain.Options `json:"options"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	typ := domain.SummaryComprehensive
	if payload.SummaryType != "" {
		parsed, err := domain.ParseSummaryType(payload.SummaryType)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, err.Error())
			return
		}
		typ = parsed
	}

	// Reject bad URLs before a job exists. The pipeline validates again
	// as its first stage.
	if _, err := validate.VideoID(payload.URL); err != nil {
		a.respondJobError(c, "", 0, err)
		return
	}

	id := a.manager.Submit(payload.URL, typ, payload.Options)

	if wait := c.Query("wait"); wait == "1" || wait == "true" {
		result, err := a.manager.Wait(c.Request.Context(), id)
		if err != nil {
			pct := 0
			if st, ok := a.manager.Status(id); ok {
				pct = st.Event.Percent
			}
			a.respondJobError(c, id, pct, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"job_id": id, "status": string(domain.StageComplete), "result": result})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": id, "status": string(domain.StageValidating)})
}

func (a *api) handleGetJob(c *gin.Context) {
	id := c.Param("id")

	st, ok := a.manager.Status(id)
	if !ok {
		respondMessage(c, http.StatusNotFound, "job not found")
		return
	}

	if !st.Terminal {
		c.JSON(http.StatusOK, gin.H{
			"job_id":     id,
			"stage":      st.Event.Stage,
			"percentage": st.Event.Percent,
			"message":    st.Event.Message,
		})
		return
	}

	// First retrieval of a terminal job consumes it.
	result, err := a.manager.Result(id)
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "job not found")
		return
	case errors.Is(err, jobs.ErrNotFinished):
		// The terminal event can land on the board an instant before the
		// manager records the outcome. Report the job as still running.
		c.JSON(http.StatusOK, gin.H{
			"job_id":     id,
			"stage":      st.Event.Stage,
			"percentage": st.Event.Percent,
			"message":    st.Event.Message,
		})
		return
	case err != nil:
		a.respondJobError(c, id, st.Event.Percent, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": id, "status": string(domain.StageComplete), "result": result})
}

// handleJobStatus reports the latest progress without consuming a
// terminal result.
func (a *api) handleJobStatus(c *gin.Context) {
	id := c.Param("id")

	st, ok := a.manager.Status(id)
	if !ok {
		respondMessage(c, http.StatusNotFound, "job not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":     id,
		"stage":      st.Event.Stage,
		"percentage": st.Event.Percent,
		"message":    st.Event.Message,
		"terminal":   st.Terminal,
	})
}

func (a *api) handleCancel(c *gin.Context) {
	id := c.Param("id")

	switch err := a.manager.Cancel(id); {
	case errors.Is(err, jobs.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "job not found")
	case errors.Is(err, jobs.ErrFinished):
		respondMessage(c, http.StatusConflict, "job already finished")
	default:
		c.JSON(http.StatusAccepted, gin.H{"job_id": id, "status": "cancelling"})
	}
}

func (a *api) handleExport(c *gin.Context) {
	id := c.Param("id")

	result, err := a.manager.Peek(id)
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "job not found")
		return
	case errors.Is(err, jobs.ErrNotFinished):
		respondMessage(c, http.StatusConflict, "job not finished")
		return
	case err != nil:
		pct := 0
		if st, ok := a.manager.Status(id); ok {
			pct = st.Event.Percent
		}
		a.respondJobError(c, id, pct, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "md"))
	switch format {
	case "md", "markdown":
		md := export.Markdown(result.Type, result)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "summary-"+id+".md"))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	case "docx":
		data, err := export.Docx(result.Type, result)
		if err != nil {
			a.logger.Error(c.Request.Context(), "Docx export for job %s failed: %v", id, err)
			respondMessage(c, http.StatusInternalServerError, "export failed")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "summary-"+id+".docx"))
		c.Data(http.StatusOK, docxContentType, data)
	default:
		respondMessage(c, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
	}
}

// respondJobError renders a typed pipeline failure. The payload carries
// the error kind and the job's last known percentage so clients can show
// where the pipeline stopped.
func (a *api) respondJobError(c *gin.Context, jobID string, pct int, err error) {
	kind := domain.KindOf(err)
	body := gin.H{
		"error": gin.H{
			"kind":    string(kind),
			"message": err.Error(),
		},
		"percentage": pct,
	}
	if jobID != "" {
		body["job_id"] = jobID
	}
	c.JSON(domain.HTTPStatus(kind), body)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
