package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"karaoke/internal/model"
	"karaoke/internal/mw"
	"karaoke/internal/service"
)

// TableHandler handles table session management endpoints.
type TableHandler struct {
	tableService service.TableService
}

// NewTableHandler creates a new table handler.
func NewTableHandler(tableService service.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

// CreateTableRequest represents a table session creation request.
// Hours defaults to 2.
type CreateTableRequest struct {
	TableNumber int    `json:"table_number" validate:"required,gt=0"`
	Login       string `json:"login" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Hours       *int   `json:"hours" validate:"omitempty,oneof=1 2 3 4 6 12 24"`
}

// UpdateTableRequest represents a partial edit. Omitted fields stay unchanged.
type UpdateTableRequest struct {
	ID          uint    `json:"id" validate:"required"`
	TableNumber *int    `json:"table_number"`
	Login       *string `json:"login"`
	Password    *string `json:"password"`
	Hours       *int    `json:"hours"`
}

// TablesResponse lists table sessions.
type TablesResponse struct {
	Tables []model.TableSession `json:"tables"`
}

// TableResponse carries one table session after a write.
type TableResponse struct {
	Success bool                `json:"success"`
	Table   *model.TableSession `json:"table"`
}

// ListTables godoc
// @Summary List table sessions
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TablesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /tables [get]
func (h *TableHandler) ListTables(c echo.Context) error {
	tables, err := h.tableService.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if tables == nil {
		tables = []model.TableSession{}
	}
	return c.JSON(http.StatusOK, TablesResponse{Tables: tables})
}

// CreateTable godoc
// @Summary Issue a table session
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTableRequest true "Table data"
// @Success 201 {object} TableResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tables [post]
func (h *TableHandler) CreateTable(c echo.Context) error {
	var req CreateTableRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	var createdBy uint
	if desc := mw.Session(c); desc != nil && desc.IsAdmin() {
		createdBy = desc.AccountID
	}

	table, err := h.tableService.Create(c.Request().Context(), service.CreateTableInput{
		TableNumber: req.TableNumber,
		Login:       req.Login,
		Password:    req.Password,
		Hours:       req.Hours,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, TableResponse{Success: true, Table: table})
}

// UpdateTable godoc
// @Summary Edit a table session
// @Description Supplying hours renews the lease from the later of the current expiry and now, and reactivates the table.
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateTableRequest true "Fields to change"
// @Success 200 {object} TableResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tables [put]
func (h *TableHandler) UpdateTable(c echo.Context) error {
	var req UpdateTableRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	table, err := h.tableService.Edit(c.Request().Context(), req.ID, service.TablePatch{
		TableNumber: req.TableNumber,
		Login:       req.Login,
		Password:    req.Password,
		Hours:       req.Hours,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, TableResponse{Success: true, Table: table})
}

// DeleteTable godoc
// @Summary Deactivate a table session
// @Description The record is kept so queue history still points at it.
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param id query int true "Table session ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tables [delete]
func (h *TableHandler) DeleteTable(c echo.Context) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}

	if err := h.tableService.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
