package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/middleware"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)
	registerOnce    sync.Once
)

// registerValidators adds the custom binding rules once per process.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
				return usernamePattern.MatchString(fl.Field().String())
			})
		}
	})
}

type errorResponse struct {
	Message          string   `json:"message"`
	Errors           []string `json:"errors,omitempty"`
	RemainingMinutes int      `json:"remainingMinutes,omitempty"`
}

// writeError renders err with the status of its Kind. Internal detail is
// logged, never returned.
func (h HandlerSet) writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("route", c.FullPath()).
			Msg("request failed")
	}

	resp := errorResponse{Message: apperr.Message(err)}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		resp.Errors = appErr.Details
	}
	var ban *apperr.BanError
	if errors.As(err, &ban) {
		resp.RemainingMinutes = ban.Minutes()
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON binds the request body and writes a 400 on failure.
func (h HandlerSet) bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		h.writeError(c, apperr.Invalid("Invalid request body", bindingDetails(err)...))
		return false
	}
	return true
}

func bindingDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"body must be valid JSON"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			details = append(details, field+" is required")
		case "email":
			details = append(details, field+" must be a valid email")
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			details = append(details, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "username":
			details = append(details, field+" must be 3-30 letters, digits, dots or underscores")
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			details = append(details, field+" is invalid")
		}
	}
	return details
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
