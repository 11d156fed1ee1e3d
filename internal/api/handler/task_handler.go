package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yao-todolist/todo-api/internal/api/middleware"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

// ownerID resolves the task owner. Without a verified token the body's
// user_id is used as is. With one, an absent user_id takes the token's id
// and a different one is refused.
func ownerID(c echo.Context, body userID) (int64, bool) {
	tokenID, ok := c.Get(middleware.ContextUserID).(int64)
	if !ok {
		return int64(body), true
	}
	if body != 0 && int64(body) != tokenID {
		return 0, false
	}
	return tokenID, true
}

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
	log     zerolog.Logger
}

func NewTaskHandler(service ports.TaskService, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{service: service, log: log}
}

// Create handles POST /api/create.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Replays the first createid for a repeated key"
// @Param        body             body      createTaskRequest  true   "Task"
// @Success      200              {object}  createTaskResponse
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /api/create [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	owner, ok := ownerID(c, req.UserID)
	if !ok {
		return fail(c, http.StatusForbidden, "user id does not match token")
	}

	id, err := h.service.CreateTask(c.Request().Context(), ports.CreateTaskInput{
		Text:           req.Text,
		UserID:         owner,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return failWith(c, h.log, err, "failed to add task")
	}

	return c.JSON(http.StatusOK, createTaskResponse{
		Success:  true,
		Message:  "task added",
		CreateID: id,
	})
}

// List handles POST /api/tasks.
//
// @Summary      List a user's tasks
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      listTasksRequest  true  "Owner"
// @Success      200   {object}  listTasksResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) List(c echo.Context) error {
	var req listTasksRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	owner, ok := ownerID(c, req.UserID)
	if !ok {
		return fail(c, http.StatusForbidden, "user id does not match token")
	}

	tasks, err := h.service.ListTasks(c.Request().Context(), owner)
	if err != nil {
		return failWith(c, h.log, err, "failed to list tasks")
	}

	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = taskResponse{CreateID: t.ID, Text: t.Text, Status: t.Status}
	}
	return c.JSON(http.StatusOK, listTasksResponse{Success: true, Tasks: out})
}
