package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/server/http/dto"
)

// ItemHandler serves the read-only item catalog.
type ItemHandler struct {
	facade ItemFacade
}

// NewItemHandler constructs ItemHandler.
func NewItemHandler(facade ItemFacade) *ItemHandler {
	return &ItemHandler{facade: facade}
}

// List handles GET /api/v1/items.
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.facade.Items(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		response = append(response, dto.ItemResponse{
			ID:    items[i].ID,
			Name:  items[i].Name,
			Price: items[i].Price,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, domainErrors.Validation("id", "item id must be a positive integer"))
		return
	}

	item, err := h.facade.Item(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ItemResponse{ID: item.ID, Name: item.Name, Price: item.Price})
}
