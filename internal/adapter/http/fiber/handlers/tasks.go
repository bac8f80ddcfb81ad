package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/i18n"
	"github.com/seu-repo/imob-crm/internal/ports"
)

const defaultUpcomingLimit = 5

type TaskHandler struct {
	notifier
	service ports.TaskService
	loc     *time.Location
	log     *zap.Logger
}

// NewTaskHandler parses ?date= values in loc.
func NewTaskHandler(service ports.TaskService, loc *time.Location, tr *i18n.Translator, log *zap.Logger) *TaskHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TaskHandler{
		notifier: notifier{tr: tr},
		service:  service,
		loc:      loc,
		log:      log,
	}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.service.ListTasks(c.UserContext(), domain.TaskFilter{
		Status:   domain.TaskStatus(c.Query("status")),
		Type:     domain.TaskType(c.Query("type")),
		LinkedTo: c.Query("linkedTo"),
	})
	if err != nil {
		return err
	}
	return list(c, tasks, len(tasks))
}

func (h *TaskHandler) Upcoming(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultUpcomingLimit)
	tasks, err := h.service.GetUpcomingTasks(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return list(c, tasks, len(tasks))
}

func (h *TaskHandler) ByDate(c *fiber.Ctx) error {
	raw := c.Query("date")
	day, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		return fmt.Errorf("date %q must be YYYY-MM-DD: %w", raw, domain.ErrValidation)
	}

	tasks, err := h.service.GetTasksForDate(c.UserContext(), day)
	if err != nil {
		return err
	}
	return list(c, tasks, len(tasks))
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in ports.TaskInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	task, err := h.service.AddTask(c.UserContext(), in)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusCreated, task, domain.EventTaskCreated, map[string]string{"title": task.Title})
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return one(c, task)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var patch ports.TaskPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	task, err := h.service.UpdateTask(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, task, domain.EventTaskUpdated, map[string]string{"title": task.Title})
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	task, err := h.service.GetTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTask(c.UserContext(), id); err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, nil, domain.EventTaskDeleted, map[string]string{"title": task.Title})
}

type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

func (h *TaskHandler) SetStatus(c *fiber.Ctx) error {
	var req TaskStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	id := c.Params("id")
	var (
		task *domain.Task
		err  error
	)
	switch req.Status {
	case domain.TaskStatusCompleted:
		task, err = h.service.CompleteTask(ctx, id)
	case domain.TaskStatusCanceled:
		task, err = h.service.CancelTask(ctx, id)
	case domain.TaskStatusOnHold:
		task, err = h.service.HoldTask(ctx, id)
	case domain.TaskStatusPending:
		task, err = h.service.ReopenTask(ctx, id)
	default:
		return fmt.Errorf("task status %q: %w", req.Status, domain.ErrInvalidStatus)
	}
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, task, domain.EventTaskStatusChanged, map[string]string{
		"title":  task.Title,
		"status": string(task.Status),
	})
}

func (h *TaskHandler) Calendar(c *fiber.Ctx) error {
	provider := ports.CalendarProvider(c.Query("provider", string(ports.CalendarGoogle)))
	link, err := h.service.CalendarLink(c.UserContext(), c.Params("id"), provider)
	if err != nil {
		return err
	}
	return one(c, fiber.Map{"provider": provider, "url": link})
}
