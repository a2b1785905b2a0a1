package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/application/service"
	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	service *service.TaskService
	logger  logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *service.TaskService, log logger.Logger) *TaskHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TaskHandler{
		service: service,
		logger:  log,
	}
}

// CreateTask handles the creation of a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	if req.Title == "" {
		sendErrorResponse(w, h.logger, "Missing title",
			"The 'title' field is required", http.StatusBadRequest, requestID)
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.Title, req.Description)
	if err != nil {
		h.logger.Error("Unexpected error in create task", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while creating the task",
			http.StatusInternalServerError, requestID)
		return
	}

	h.logger.Info("Task created", map[string]interface{}{
		"request_id": requestID,
		"task_id":    task.ID,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newTaskResponse(task))
}

// GetTask handles retrieving a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(w, h.logger, "Task not found",
				"The requested task could not be found", http.StatusNotFound, requestID)
		} else {
			h.logger.Error("Unexpected error in get task", map[string]interface{}{
				"request_id": requestID,
				"task_id":    id,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred while retrieving the task",
				http.StatusInternalServerError, requestID)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newTaskResponse(task))
}

// ListTasks handles retrieving all tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	tasks, err := h.service.ListTasks(r.Context())
	if err != nil {
		h.logger.Error("Unexpected error in list tasks", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing tasks",
			http.StatusInternalServerError, requestID)
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// UpdateTask handles updating the title and description of a task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	if req.Title == "" {
		sendErrorResponse(w, h.logger, "Missing title",
			"The 'title' field is required", http.StatusBadRequest, requestID)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), id, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(w, h.logger, "Task not found",
				"The requested task could not be found", http.StatusNotFound, requestID)
		} else {
			h.logger.Error("Unexpected error in update task", map[string]interface{}{
				"request_id": requestID,
				"task_id":    id,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred while updating the task",
				http.StatusInternalServerError, requestID)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newTaskResponse(task))
}

// RegisterRoutes registers the task handler routes
func (h *TaskHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	router.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	router.HandleFunc("/tasks/{id}", h.GetTask).Methods("GET")
	router.HandleFunc("/tasks/{id}", h.UpdateTask).Methods("PUT")

	h.logger.Info("Task routes registered", map[string]interface{}{
		"routes": []string{
			"POST /tasks",
			"GET /tasks",
			"GET /tasks/{id}",
			"PUT /tasks/{id}",
		},
	})
}

func newTaskResponse(task *entity.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339Nano),
	}
}
