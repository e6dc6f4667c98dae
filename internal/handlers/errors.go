package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"customer-api/internal/models"
	"customer-api/internal/repositories"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Not found"`
	Message string `json:"message" example:"customer with id '9999' was not found"`
}

// respondError translates a service error into a status code and JSON body
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := http.StatusInternalServerError
	title := "Internal server error"

	switch {
	case repositories.IsValidation(err):
		status, title = http.StatusBadRequest, "Validation failed"
	case repositories.IsNotFound(err):
		status, title = http.StatusNotFound, "Not found"
	case repositories.IsConnection(err):
		title = "Database unavailable"
	}

	message := err.Error()
	var repoErr *repositories.RepositoryError
	if errors.As(err, &repoErr) {
		message = repoErr.Error()
	}

	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": status,
	}
	if status >= http.StatusInternalServerError {
		logger.WithFields(fields).WithError(err).Error("Request failed")
		if !repositories.IsConnection(err) {
			message = "An internal error occurred"
		}
	} else {
		logger.WithFields(fields).Info(message)
	}

	c.JSON(status, ErrorResponse{
		Error:   title,
		Message: message,
	})
}

// bindJSON decodes and validates the body into req, answering the request
// itself when that fails. entity names the payload in messages.
func bindJSON(c *gin.Context, logger *logrus.Logger, req interface{}, entity string) bool {
	err := decodeJSON(c.Request, req)
	if err == nil {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return true
	}

	status, resp := bindingErrorResponse(err, entity)
	logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": status,
	}).Info(resp.Message)

	c.JSON(status, resp)
	return false
}

var errTrailingData = errors.New("request body must contain a single JSON value")

// decodeJSON reads exactly one JSON value from the body
func decodeJSON(r *http.Request, req interface{}) error {
	if r.Body == nil {
		return io.EOF
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(req); err != nil {
		return err
	}

	_, err := dec.Token()
	switch {
	case errors.Is(err, errTrailingData):
		return errTrailingData
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
	}
	return errTrailingData
}

func bindingErrorResponse(err error, entity string) (int, ErrorResponse) {
	var maxBytesErr *http.MaxBytesError
	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "Request too large",
			Message: fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit),
		}
	case errors.As(err, &fieldErrs):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Message: fmt.Sprintf("Invalid %s: %v", entity, models.TranslateValidationErrors(fieldErrs)),
		}
	case errors.As(err, &typeErr) && typeErr.Field == "":
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: "Request body must be a JSON object",
		}
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: fmt.Sprintf("Invalid %s: %s must be of type %s", entity, typeErr.Field, typeErr.Type.String()),
		}
	case errors.As(err, &syntaxErr):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset),
		}
	case errors.Is(err, errTrailingData):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: "Request body must contain a single JSON object",
		}
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: "Request body is empty",
		}
	default:
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		}
	}
}
