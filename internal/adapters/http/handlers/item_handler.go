package handlers

import (
	"errors"

	"assetdesk/internal/core/services"
	"assetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles item catalog endpoints
type ItemHandler struct {
	itemService *services.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Create handles item creation
// @Summary Create item
// @Description Add a new item to the catalog
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateItemInput true "Item data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.itemService.Create(c.Context(), &input, userID)
	if err != nil {
		if errors.Is(err, services.ErrItemFieldsMissing) {
			return response.BadRequest(c, "Item name, serial number and model are required")
		}
		return response.InternalServerError(c, "Failed to create item")
	}

	return response.Created(c, "Item created", item)
}

// Get handles single item retrieval
// @Summary Get item
// @Description Get a single item by ID
// @Tags Items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /items/{id} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid item ID")
	}

	item, err := h.itemService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return response.NotFound(c, "Item not found")
		}
		return response.InternalServerError(c, "Failed to get item")
	}

	return response.Success(c, "Item retrieved", item)
}

// List handles item listing
// @Summary List items
// @Description List all catalog items
// @Tags Items
// @Produce json
// @Success 200 {object} response.Response
// @Router /items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, err := h.itemService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list items")
	}

	return response.Success(c, "Items retrieved", items)
}

// Update handles item catalog updates
// @Summary Update item
// @Description Update catalog fields of an item. Availability status is not editable here.
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body services.UpdateItemInput true "Item fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid item ID")
	}

	var input services.UpdateItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.itemService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return response.NotFound(c, "Item not found")
		}
		return response.InternalServerError(c, "Failed to update item")
	}

	return response.Success(c, "Item updated", item)
}

// Delete handles item removal
// @Summary Delete item
// @Description Delete an item unless it has an active borrow request
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid item ID")
	}

	if err := h.itemService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemHasActiveLoan):
			return response.Conflict(c, "Item has an active borrow request")
		default:
			return response.InternalServerError(c, "Failed to delete item")
		}
	}

	return response.Success(c, "Item deleted", nil)
}
