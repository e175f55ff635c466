package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"condomanager/internal/access"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/logger"
	"condomanager/internal/uuid"
)

const dateLayout = "2006-01-02"

// getPrincipal extracts the authenticated principal from the request context.
// Returns ErrUnauthorized if not present.
func getPrincipal(c *gin.Context) (*access.Principal, error) {
	p, ok := access.FromContext(c.Request.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return p, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// parseDateRange reads the optional from_date and to_date query parameters.
// A date-only to_date covers the whole day.
func parseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	if v := c.Query("from_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		from = &t
	}
	if v := c.Query("to_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		if len(v) == len(dateLayout) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not be before from_date")
	}
	return from, to, nil
}

// expectedVersion returns the version from the body if set, otherwise from
// an If-Match header. Nil means the caller did not ask for a version check.
func expectedVersion(c *gin.Context, body *int) (*int, error) {
	if body != nil {
		return body, nil
	}
	header := strings.TrimSpace(c.GetHeader("If-Match"))
	if header == "" {
		return nil, nil
	}
	header = strings.Trim(strings.TrimPrefix(header, "W/"), `"`)
	v, err := strconv.Atoi(header)
	if err != nil || v < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "If-Match must carry the expense version")
	}
	return &v, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
