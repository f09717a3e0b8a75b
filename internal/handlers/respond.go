package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"backend/internal/models"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondDomainError maps the sentinel error taxonomy to HTTP statuses. The
// two 409 flavors keep their distinct user-facing messages so the UI can
// tell "order gone" from "already rated".
func respondDomainError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
	case errors.Is(err, models.ErrForbidden):
		respondWithError(c, http.StatusForbidden, route, err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, "not found")
	case errors.Is(err, models.ErrAlreadyRated):
		respondWithError(c, http.StatusConflict, route, "you already rated this order")
	case errors.Is(err, models.ErrConflict):
		respondWithError(c, http.StatusConflict, route, "someone else already took this order")
	case errors.Is(err, models.ErrInvalidState):
		respondWithError(c, http.StatusConflict, route, err.Error())
	default:
		log.Printf("[%s] unexpected error: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "internal server error")
	}
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min", "gt":
				details = append(details, fmt.Sprintf("%s is too small", field))
			case "max", "lt", "lte":
				details = append(details, fmt.Sprintf("%s is too large", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
