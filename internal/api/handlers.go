package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"worklog/internal/domain"
	"worklog/internal/errors"
	"worklog/internal/services"
	"worklog/internal/validation"
	"worklog/internal/weekly"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Account handlers

func (s *Server) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid request body", err))
		return
	}

	user, err := s.services.UserService.Register(c.Request.Context(), services.RegisterInput{
		Username:        req.Username,
		DisplayName:     req.DisplayName,
		Password:        req.Password,
		ManagerUsername: req.Manager,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(*user))
}

func (s *Server) handleProfile(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(*currentUser(c)))
}

func (s *Server) handlePasswordChange(c *gin.Context) {
	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid request body", err))
		return
	}

	user := currentUser(c)
	if err := s.services.UserService.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Task handlers

func (s *Server) bindTask(c *gin.Context) (string, int, bool) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("invalid request body", err))
		return "", 0, false
	}

	minutes, err := validation.ParseMinutes(req.TimeSpent.String())
	if err != nil {
		abortWithError(c, err)
		return "", 0, false
	}
	return req.Description, minutes, true
}

func (s *Server) taskResponses(actorID int64, tasks []domain.Task) []TaskResponse {
	result := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, newTaskResponse(s.services.TaskService.View(actorID, task)))
	}
	return result
}

func (s *Server) handleCreateTask(c *gin.Context) {
	description, minutes, ok := s.bindTask(c)
	if !ok {
		return
	}

	user := currentUser(c)
	task, err := s.services.TaskService.CreateTask(c.Request.Context(), user.ID, description, minutes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(s.services.TaskService.View(user.ID, *task)))
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, err := validation.ParseTaskID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	user := currentUser(c)
	task, err := s.services.TaskService.GetTask(c.Request.Context(), user.ID, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(s.services.TaskService.View(user.ID, *task)))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := validation.ParseTaskID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	description, minutes, ok := s.bindTask(c)
	if !ok {
		return
	}

	user := currentUser(c)
	task, err := s.services.TaskService.UpdateTask(c.Request.Context(), user.ID, id, description, minutes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(s.services.TaskService.View(user.ID, *task)))
}

func (s *Server) handleListTasks(c *gin.Context) {
	week, err := s.services.TaskService.ParseWeek(c.Query("week"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	user := currentUser(c)
	tasks, err := s.services.TaskService.ListWeek(c.Request.Context(), user.ID, week)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TaskListResponse{Week: week.String(), Tasks: s.taskResponses(user.ID, tasks)})
}

// Hierarchy handlers

func (s *Server) handleListSubordinates(c *gin.Context) {
	user := currentUser(c)
	list := s.services.UserService.ListSubordinates
	if c.Query("direct") == "true" {
		list = s.services.UserService.ListDirectReports
	}
	subordinates, err := list(c.Request.Context(), user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(subordinates))
}

func (s *Server) handleSubordinateTasks(c *gin.Context) {
	week, err := s.services.TaskService.ParseWeek(c.Query("week"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	user := currentUser(c)
	tasks, err := s.services.TaskService.ListSubordinatesWeek(c.Request.Context(), user.ID, week)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TaskListResponse{Week: week.String(), Tasks: s.taskResponses(user.ID, tasks)})
}

// Export and reporting handlers

func (s *Server) handleExport(c *gin.Context) {
	var week *weekly.Week
	if raw, ok := c.GetQuery("week"); ok {
		parsed, err := s.services.TaskService.ParseWeek(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}
		week = &parsed
	}

	user := currentUser(c)
	var buf bytes.Buffer
	format, err := s.services.ExportService.Export(c.Request.Context(), user.ID, c.Param("format"), week, &buf)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename))
	c.Data(http.StatusOK, format.ContentType, buf.Bytes())
}

func (s *Server) handleWeekReport(c *gin.Context) {
	week, err := s.services.TaskService.ParseWeek(c.Query("week"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	user := currentUser(c)
	summary, err := s.services.ReportingService.WeekSummary(c.Request.Context(), user.ID, week)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
