package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/warranty"
	apperrors "github.com/spec-kit/service-desk/pkg/util/errorutil"
)

// WarrantyHandler exposes the warranty probe, useful for support staff
// checking a product before opening a ticket.
type WarrantyHandler struct{}

// NewWarrantyHandler constructs handler.
func NewWarrantyHandler() *WarrantyHandler {
	return &WarrantyHandler{}
}

// Check GET /warranty/check?product_name=...&purchase_date=2024-01-15.
func (h *WarrantyHandler) Check(c *fiber.Ctx) error {
	productName := c.Query("product_name")

	var purchaseDate *time.Time
	if raw := c.Query("purchase_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return apperrors.NewValidationError("purchase_date must be YYYY-MM-DD or RFC3339", nil)
			}
		}
		purchaseDate = &parsed
	}

	verdict := warranty.CheckStatus(purchaseDate, productName, time.Now().UTC())
	return c.JSON(fiber.Map{"data": dto.WarrantyResponse{
		IsWarranty:    verdict.IsWarranty,
		EndDate:       verdict.EndDate,
		DaysRemaining: verdict.DaysRemaining,
		Status:        string(verdict.Status),
	}})
}
