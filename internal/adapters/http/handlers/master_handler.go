package handlers

import (
	"errors"
	"strings"

	"assetdesk/internal/adapters/persistence/models"
	"assetdesk/internal/adapters/persistence/repositories"
	"assetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MasterHandler handles manufacturer and location master data endpoints.
// Masters are simple enough that the handler talks to the repositories
// directly.
type MasterHandler struct {
	manufacturers *repositories.ManufacturerRepository
	locations     *repositories.LocationRepository
}

// NewMasterHandler creates a new master data handler
func NewMasterHandler(
	manufacturers *repositories.ManufacturerRepository,
	locations *repositories.LocationRepository,
) *MasterHandler {
	return &MasterHandler{
		manufacturers: manufacturers,
		locations:     locations,
	}
}

// MasterRequest is the shared create/update body for master rows
type MasterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListManufacturers lists all manufacturers
// @Summary List manufacturers
// @Tags Masters
// @Produce json
// @Success 200 {object} response.Response
// @Router /manufacturers [get]
func (h *MasterHandler) ListManufacturers(c *fiber.Ctx) error {
	manufacturers, err := h.manufacturers.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list manufacturers")
	}
	return response.Success(c, "Manufacturers retrieved", manufacturers)
}

// CreateManufacturer creates a manufacturer
// @Summary Create manufacturer
// @Tags Masters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MasterRequest true "Manufacturer data"
// @Success 201 {object} response.Response
// @Router /manufacturers [post]
func (h *MasterHandler) CreateManufacturer(c *fiber.Ctx) error {
	var req MasterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}

	m := &models.Manufacturer{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := h.manufacturers.Create(c.Context(), m); err != nil {
		return response.InternalServerError(c, "Failed to create manufacturer")
	}
	return response.Created(c, "Manufacturer created", m)
}

// UpdateManufacturer updates a manufacturer
// @Summary Update manufacturer
// @Tags Masters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Manufacturer ID"
// @Param body body MasterRequest true "Manufacturer data"
// @Success 200 {object} response.Response
// @Router /manufacturers/{id} [put]
func (h *MasterHandler) UpdateManufacturer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid manufacturer ID")
	}

	var req MasterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	m, err := h.manufacturers.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Manufacturer not found")
		}
		return response.InternalServerError(c, "Failed to get manufacturer")
	}

	if strings.TrimSpace(req.Name) != "" {
		m.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		m.Description = req.Description
	}
	if err := h.manufacturers.Update(c.Context(), m); err != nil {
		return response.InternalServerError(c, "Failed to update manufacturer")
	}
	return response.Success(c, "Manufacturer updated", m)
}

// DeleteManufacturer deletes a manufacturer
// @Summary Delete manufacturer
// @Tags Masters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Manufacturer ID"
// @Success 200 {object} response.Response
// @Router /manufacturers/{id} [delete]
func (h *MasterHandler) DeleteManufacturer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid manufacturer ID")
	}
	if err := h.manufacturers.Delete(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete manufacturer")
	}
	return response.Success(c, "Manufacturer deleted", nil)
}

// ListLocations lists all locations
// @Summary List locations
// @Tags Masters
// @Produce json
// @Success 200 {object} response.Response
// @Router /locations [get]
func (h *MasterHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.locations.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list locations")
	}
	return response.Success(c, "Locations retrieved", locations)
}

// CreateLocation creates a location
// @Summary Create location
// @Tags Masters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MasterRequest true "Location data"
// @Success 201 {object} response.Response
// @Router /locations [post]
func (h *MasterHandler) CreateLocation(c *fiber.Ctx) error {
	var req MasterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}

	l := &models.Location{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := h.locations.Create(c.Context(), l); err != nil {
		return response.InternalServerError(c, "Failed to create location")
	}
	return response.Created(c, "Location created", l)
}

// UpdateLocation updates a location
// @Summary Update location
// @Tags Masters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param body body MasterRequest true "Location data"
// @Success 200 {object} response.Response
// @Router /locations/{id} [put]
func (h *MasterHandler) UpdateLocation(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid location ID")
	}

	var req MasterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	l, err := h.locations.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Location not found")
		}
		return response.InternalServerError(c, "Failed to get location")
	}

	if strings.TrimSpace(req.Name) != "" {
		l.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		l.Description = req.Description
	}
	if err := h.locations.Update(c.Context(), l); err != nil {
		return response.InternalServerError(c, "Failed to update location")
	}
	return response.Success(c, "Location updated", l)
}

// DeleteLocation deletes a location
// @Summary Delete location
// @Tags Masters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Success 200 {object} response.Response
// @Router /locations/{id} [delete]
func (h *MasterHandler) DeleteLocation(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid location ID")
	}
	if err := h.locations.Delete(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete location")
	}
	return response.Success(c, "Location deleted", nil)
}
