package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vectora/internal/middleware"
	"vectora/internal/models"
	"vectora/internal/pdf"
	"vectora/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	pdf     pdf.Generator
	log     *zap.Logger
	now     func() time.Time
}

func NewTaskHandler(service services.TaskService, gen pdf.Generator, log *zap.Logger) *TaskHandler {
	return &TaskHandler{service: service, pdf: gen, log: log, now: time.Now}
}

// Create godoc
// @Summary      Create task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      models.TaskCreate  true  "Task"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/tasks/ [post]
func (h *TaskHandler) Create(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	var in models.TaskCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Create(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, h.log, "create task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetAll godoc
// @Summary      List tasks
// @Description  Lists the caller's tasks ordered by position, newest first
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     bool    false  "Completion flag"
// @Param        priority   query     string  false  "low, normal or high"
// @Param        category   query     string  false  "Category"
// @Param        parent_id  query     int     false  "Only subtasks of this task"
// @Param        top_level  query     bool    false  "Only tasks without a parent"
// @Success      200        {array}   models.Task
// @Failure      400        {object}  map[string]string
// @Failure      401        {object}  map[string]string
// @Router       /api/tasks/ [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	filter, err := parseTaskFilter(c, uid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func parseTaskFilter(c *gin.Context, uid int64) (models.TaskFilter, error) {
	f := models.TaskFilter{UserID: uid}
	if v := c.Query("status"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("invalid status")
		}
		f.Status = &b
	}
	if v := c.Query("priority"); v != "" {
		p := models.TaskPriority(v)
		if !p.Valid() {
			return f, errors.New("invalid priority")
		}
		f.Priority = &p
	}
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	if v := c.Query("parent_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.New("invalid parent_id")
		}
		f.ParentID = &id
	}
	if v := c.Query("top_level"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("invalid top_level")
		}
		f.TopLevel = b
	}
	return f, nil
}

// GetByID godoc
// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, h.log, "get task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary      Update task
// @Description  Partial update; only the fields present are changed
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task ID"
// @Param        task  body      models.TaskUpdate  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var upd models.TaskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Update(c.Request.Context(), uid, id, upd)
	if err != nil {
		respondError(c, h.log, "update task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, h.log, "delete task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPDF godoc
// @Summary      Export tasks as PDF
// @Tags         Tasks
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        status    query     bool    false  "Completion flag"
// @Param        priority  query     string  false  "low, normal or high"
// @Param        category  query     string  false  "Category"
// @Success      200       {file}    file
// @Failure      401       {object}  map[string]string
// @Router       /api/tasks/export.pdf [get]
func (h *TaskHandler) ExportPDF(c *gin.Context) {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	filter, err := parseTaskFilter(c, ident.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, "export tasks", err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := h.pdf.TaskList(&buf, pdf.TaskListData{Owner: ident.Username, Tasks: tasks, CreatedAt: now}); err != nil {
		h.log.Error("render task pdf", zap.Error(err), zap.Int64("user_id", ident.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render pdf"})
		return
	}
	name := fmt.Sprintf("tasks_%s.pdf", now.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
