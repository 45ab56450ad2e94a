package handlers

import (
	"errors"
	"fmt"

	"inventoritoko/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// parseAndValidate reads the JSON body into req and validates it. On failure
// it writes a 400 response and returns false.
func parseAndValidate(c *fiber.Ctx, validate *validator.Validate, logger *zap.Logger, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		logger.Debug("error parsing request body", zap.String("path", c.Path()), zap.Error(err))
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Message: "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Message: "Validation failed",
				Detail:  []string{err.Error()},
			})
		}
		details := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Message: "Validation failed",
			Detail:  details,
		})
	}
	return true, nil
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
