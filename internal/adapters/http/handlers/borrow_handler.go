package handlers

import (
	"errors"
	"strconv"

	"assetdesk/internal/adapters/http/middleware"
	"assetdesk/internal/core/services"
	"assetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowHandler handles borrow request lifecycle endpoints
type BorrowHandler struct {
	borrowService *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// CreateRequest handles borrow request submission
// @Summary Create borrow request
// @Description Submit a borrow request for an available item. Admins are auto-approved.
// @Tags Borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Borrow request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/requests [post]
func (h *BorrowHandler) CreateRequest(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	request, err := h.borrowService.CreateRequest(c.Context(), &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReasonRequired):
			return response.BadRequest(c, "Item and reason are required")
		case errors.Is(err, services.ErrInvalidRole):
			return response.Forbidden(c, "Unauthorized user role")
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemBorrowed):
			return response.Conflict(c, "Item is currently borrowed")
		case errors.Is(err, services.ErrDuplicateRequest):
			return response.Conflict(c, "You already have an active request for this item")
		default:
			return response.InternalServerError(c, "Failed to create borrow request")
		}
	}

	return response.Created(c, "Borrow request created", request)
}

// DecideRequest handles admin approve/reject decisions
// @Summary Approve or reject a borrow request
// @Description Admin decision on a pending borrow request
// @Tags Borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.DecideRequestInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/requests/{id}/action [patch]
func (h *BorrowHandler) DecideRequest(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var input services.DecideRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.borrowService.DecideRequest(c.Context(), requestID, &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAction):
			return response.BadRequest(c, "Action must be approve or reject")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Admin access required")
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrRequestClosed):
			return response.Conflict(c, "Request already finalized")
		case errors.Is(err, services.ErrAlreadyApproved):
			return response.Conflict(c, "Request already approved")
		case errors.Is(err, services.ErrItemBorrowed):
			return response.Conflict(c, "Item was borrowed by another request")
		default:
			return response.InternalServerError(c, "Failed to update borrow request")
		}
	}

	return response.Success(c, "Borrow request updated", result)
}

// RequestReturn handles return initiation by the borrower (or admin shortcut)
// @Summary Request item return
// @Description Borrower requests to return a borrowed item; admins auto-confirm
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/requests/{id}/request-return [patch]
func (h *BorrowHandler) RequestReturn(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.borrowService.RequestReturn(c.Context(), requestID, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrRequestNotApproved):
			return response.BadRequest(c, "Borrow request is not approved")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Not authorized for this request")
		case errors.Is(err, services.ErrReturnAlreadyRequested):
			return response.Conflict(c, "Return already requested or approved")
		case errors.Is(err, services.ErrRequestClosed):
			return response.Conflict(c, "Request already finalized")
		default:
			return response.InternalServerError(c, "Failed to request return")
		}
	}

	return response.Success(c, "Return requested", request)
}

// ConfirmReturn handles admin confirmation of a requested return
// @Summary Confirm item return
// @Description Admin confirms a requested return; item becomes available
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/requests/{id}/return [patch]
func (h *BorrowHandler) ConfirmReturn(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.borrowService.ConfirmReturn(c.Context(), requestID, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Admin access required")
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrNoReturnRequested):
			return response.BadRequest(c, "No return requested for this request")
		case errors.Is(err, services.ErrRequestClosed):
			return response.Conflict(c, "Request already finalized")
		default:
			return response.InternalServerError(c, "Failed to confirm return")
		}
	}

	return response.Success(c, "Return confirmed", request)
}

// RejectReturn handles admin rejection of a requested return
// @Summary Reject item return
// @Description Admin rejects a requested return; item stays borrowed
// @Tags Borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.RejectReturnInput false "Rejection remarks"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/requests/{id}/return/reject [patch]
func (h *BorrowHandler) RejectReturn(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var input services.RejectReturnInput
	// Body is optional; ignore parse errors for empty bodies
	_ = c.BodyParser(&input)

	request, err := h.borrowService.RejectReturn(c.Context(), requestID, &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Admin access required")
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrNoReturnRequested):
			return response.BadRequest(c, "No return requested for this request")
		case errors.Is(err, services.ErrRequestClosed):
			return response.Conflict(c, "Request already finalized")
		default:
			return response.InternalServerError(c, "Failed to reject return")
		}
	}

	return response.Success(c, "Return rejected", request)
}

// CancelRequest handles cancellation of a pending request
// @Summary Cancel borrow request
// @Description Delete a pending borrow request (owner or admin)
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/requests/{id} [delete]
func (h *BorrowHandler) CancelRequest(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.borrowService.CancelRequest(c.Context(), requestID, actor); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotPending):
			return response.Conflict(c, "Only pending requests can be cancelled")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Not authorized for this request")
		default:
			return response.InternalServerError(c, "Failed to cancel borrow request")
		}
	}

	return response.Success(c, "Borrow request cancelled", nil)
}

// ListAvailableItems returns the item catalog with borrower info attached
// @Summary List items with availability
// @Description List all items; borrowed items include current holder identity
// @Tags Borrow
// @Produce json
// @Success 200 {object} response.Response
// @Router /borrow/items [get]
func (h *BorrowHandler) ListAvailableItems(c *fiber.Ctx) error {
	items, err := h.borrowService.ListAvailableItems(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list items")
	}

	return response.Success(c, "Items retrieved", items)
}

// ListMyRequests returns the caller's requests
// @Summary List my borrow requests
// @Description List the authenticated user's borrow requests, newest first
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /borrow/my-requests [get]
func (h *BorrowHandler) ListMyRequests(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.borrowService.ListMyRequests(c.Context(), actor.UserID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list borrow requests")
	}

	return response.Success(c, "Borrow requests retrieved", requests)
}

// ListAllRequests returns every request. Admin only.
// @Summary List all borrow requests
// @Description List every borrow request across users, newest first
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /borrow/requests [get]
func (h *BorrowHandler) ListAllRequests(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.borrowService.ListAllRequests(c.Context(), actor)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthorized) {
			return response.Forbidden(c, "Admin access required")
		}
		return response.InternalServerError(c, "Failed to list borrow requests")
	}

	return response.Success(c, "Borrow requests retrieved", requests)
}

// parseID extracts the :id path parameter
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
