package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/validation"
)

var errMissingContext = errors.New("request context not populated")

// bindJSON decodes the body into req. On failure it writes a 400 with
// per-field details when the validator produced them.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if details := validation.Details(err); details != nil {
			apierrors.BadRequestWithDetails(c, "Invalid request body", details)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// respondError answers a service error. Errors without a kind are logged and
// reported as 500 without their message.
func respondError(c *gin.Context, log logrus.FieldLogger, err error, msg string) {
	if apierrors.FromService(c, err) {
		return
	}
	log.WithError(err).WithField("path", c.FullPath()).Error(msg)
	_ = c.Error(err)
	apierrors.InternalError(c, "")
}

func parseDate(field, value string) (time.Time, error) {
	date, err := time.Parse(constants.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date formatted as %s", field, constants.DateLayout)
	}
	return date, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	date, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
