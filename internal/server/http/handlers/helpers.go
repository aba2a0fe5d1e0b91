package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/pkg/token"
	"github.com/omnicart/fulfillment/internal/server/http/dto"
)

// writeError maps domain errors onto HTTP statuses. Unknown errors become a
// generic 500 so internals never leak to the client.
func writeError(c *gin.Context, err error) {
	var ve *domainErrors.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, domainErrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, token.ErrUnauthenticated),
		errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenMalformed),
		errors.Is(err, token.ErrSignatureInvalid),
		errors.Is(err, token.ErrAlgorithmUnsupported):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
	case errors.Is(err, domainErrors.ErrAuthorizationDenied):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "access denied"})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "already exists"})
	case errors.Is(err, domainErrors.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "dependency unavailable"})
	case errors.Is(err, domainErrors.ErrExternalAPI):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "dependency call failed"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ItemID:   item.ItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	var owner *dto.UserResponse
	if order.Owner != nil {
		owner = &dto.UserResponse{
			ID:      order.Owner.ID,
			Name:    order.Owner.Name,
			Surname: order.Owner.Surname,
			Email:   order.Owner.Email,
		}
	}
	return dto.OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		User:        owner,
		Status:      string(order.Status),
		Items:       items,
		TotalAmount: order.TotalAmount(),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
