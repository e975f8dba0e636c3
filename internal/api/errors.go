package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report binding failures by JSON field name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// errInvalidBody marks a request body that is not valid JSON for the endpoint
var errInvalidBody = errors.New("invalid request body")

// fieldMessage renders a validator failure the same way models.ValidationError does
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// fieldKey strips the input struct name from the namespace, so
// "orderInput.items[0].price" becomes "items[0].price"
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// validationFields extracts per-field reasons from a binding or store
// validation error
func validationFields(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldKey(fe)] = fieldMessage(fe)
		}
		return fields, true
	}

	var merr *models.ValidationError
	if errors.As(err, &merr) {
		return merr.Fields, true
	}
	return nil, false
}

// bindError answers a failed ShouldBindJSON
func bindError(c *gin.Context, err error) {
	if fields, ok := validationFields(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
}

// respondError maps a store error onto the HTTP error taxonomy. resource
// names the missing record for 404s; action describes the failed operation
// for 500s.
func respondError(c *gin.Context, err error, resource, action string) {
	if fields, ok := validationFields(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
		return
	}
	if errors.Is(err, errInvalidBody) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
		return
	}

	// Malformed identifiers are rejected by the store and surface as server errors
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": action, "details": err.Error()})
}
