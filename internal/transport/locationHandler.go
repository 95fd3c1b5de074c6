package transport

import (
	"net/http"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	inventoryService service.InventoryService
}

func NewLocationHandler(inventoryService service.InventoryService) *LocationHandler {
	return &LocationHandler{inventoryService: inventoryService}
}

// GetAllLocations возвращает все парковки со счетчиками свободных мест
func (h *LocationHandler) GetAllLocations(c *gin.Context) {
	locations, err := h.inventoryService.GetAllLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Locations retrieved successfully", locations)
}

// GetLocation возвращает одну парковку
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid location ID"})
		return
	}

	location, err := h.inventoryService.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Location retrieved successfully", location)
}

// CreateLocation создает новую парковку (админ)
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid request body: " + err.Error()})
		return
	}

	location, err := h.inventoryService.CreateLocation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Location created successfully", location)
}

// UpdateLocation обновляет парковку, сохраняя занятые места (админ)
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid location ID"})
		return
	}

	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid request body: " + err.Error()})
		return
	}

	location, err := h.inventoryService.UpdateLocation(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Location updated successfully", location)
}

// DeleteLocation удаляет парковку без активных бронирований (админ)
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid location ID"})
		return
	}

	if err := h.inventoryService.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Location deleted successfully", nil)
}
