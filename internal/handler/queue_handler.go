package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"karaoke/internal/errors"
	"karaoke/internal/model"
	"karaoke/internal/mw"
	"karaoke/internal/repository"
	"karaoke/internal/service"
)

// QueueHandler handles song request queue endpoints.
type QueueHandler struct {
	queueService service.QueueService
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(queueService service.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// EnqueueRequest represents a song request. Tables may omit TableID; it
// defaults to their own table.
type EnqueueRequest struct {
	SongID  uint `json:"song_id" validate:"required"`
	TableID uint `json:"table_id"`
}

// UpdateQueueRequest represents an operator status change.
type UpdateQueueRequest struct {
	ID     uint              `json:"id" validate:"required"`
	Status model.QueueStatus `json:"status" validate:"required"`
}

// QueueResponse lists queue entries.
type QueueResponse struct {
	Queue []model.QueueEntry `json:"queue"`
}

// QueueItemResponse carries one queue item after a write.
type QueueItemResponse struct {
	Success bool             `json:"success"`
	Item    *model.QueueItem `json:"item"`
}

// ListQueue godoc
// @Summary List queued song requests, oldest first
// @Description Without a status filter only pending items are listed; status=all lists every item. Tables only see their own requests.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, playing, done, cancelled or all"
// @Param table_id query int false "Restrict to one table (operator only)"
// @Success 200 {object} QueueResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /queue [get]
func (h *QueueHandler) ListQueue(c echo.Context) error {
	desc := mw.Session(c)
	var filter repository.QueueFilter

	switch raw := c.QueryParam("status"); raw {
	case "":
		status := model.QueueStatusPending
		filter.Status = &status
	case "all":
	default:
		status := model.QueueStatus(raw)
		if !status.Valid() {
			return fail(c, fmt.Errorf("%w: unknown status %q", errors.ErrValidation, raw))
		}
		filter.Status = &status
	}

	if raw := c.QueryParam("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fail(c, fmt.Errorf("%w: invalid table_id", errors.ErrValidation))
		}
		tableID := uint(id)
		filter.TableID = &tableID
	}
	if desc != nil && desc.Role == model.RoleTable {
		own := desc.Table.ID
		filter.TableID = &own
	}

	entries, err := h.queueService.List(c.Request().Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, QueueResponse{Queue: entries})
}

// Enqueue godoc
// @Summary Request a song
// @Tags queue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EnqueueRequest true "Song request"
// @Success 201 {object} QueueItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /queue [post]
func (h *QueueHandler) Enqueue(c echo.Context) error {
	var req EnqueueRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	desc := mw.Session(c)
	tableID := req.TableID
	if desc.Role == model.RoleTable {
		if tableID != 0 && tableID != desc.Table.ID {
			return fail(c, fmt.Errorf("%w: tables may only request songs for themselves", errors.ErrForbidden))
		}
		tableID = desc.Table.ID
	} else if tableID == 0 {
		return fail(c, fmt.Errorf("%w: song_id and table_id required", errors.ErrValidation))
	}

	ctx := service.WithActor(c.Request().Context(), desc.Role)
	item, err := h.queueService.Enqueue(ctx, req.SongID, tableID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, QueueItemResponse{Success: true, Item: item})
}

// UpdateQueue godoc
// @Summary Change the status of a queued request
// @Description playing promotes a pending item, done completes a playing one, cancelled withdraws either. Statuses never move backwards.
// @Tags queue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateQueueRequest true "Status change"
// @Success 200 {object} QueueItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /queue [put]
func (h *QueueHandler) UpdateQueue(c echo.Context) error {
	var req UpdateQueueRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	ctx := service.WithActor(c.Request().Context(), model.RoleAdmin)
	item, err := h.queueService.SetStatus(ctx, req.ID, req.Status)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, QueueItemResponse{Success: true, Item: item})
}

// CancelQueueItem godoc
// @Summary Cancel a queued request
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param id query int true "Queue item ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /queue [delete]
func (h *QueueHandler) CancelQueueItem(c echo.Context) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}

	desc := mw.Session(c)
	ctx := service.WithActor(c.Request().Context(), desc.Role)
	if desc.Role == model.RoleTable {
		entry, err := h.queueService.Get(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		if entry.TableID != desc.Table.ID {
			return fail(c, fmt.Errorf("%w: queue item %d belongs to another table", errors.ErrForbidden, id))
		}
	}

	if _, err := h.queueService.Cancel(ctx, id); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// QueueEventsResponse lists the audit trail of one queue item.
type QueueEventsResponse struct {
	Events []model.QueueEvent `json:"events"`
}

// ListQueueEvents godoc
// @Summary List the recorded status changes of a queued request
// @Description Events are flushed in batches and may trail the latest change by about a second.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param id query int true "Queue item ID"
// @Success 200 {object} QueueEventsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /queue/events [get]
func (h *QueueHandler) ListQueueEvents(c echo.Context) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}

	history, err := h.queueService.History(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if history == nil {
		history = []model.QueueEvent{}
	}
	return c.JSON(http.StatusOK, QueueEventsResponse{Events: history})
}
