package handler

import (
	"net/http"
	"strconv"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

type outcomeBody struct {
	Level   workflow.Level `json:"level"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
}

func (h *Handler) lang(c *gin.Context) string {
	return h.Localizer.Language(c.GetHeader("Accept-Language"))
}

// fail writes err as a localized JSON error. Internal errors are logged and
// never shown verbatim.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	code := apperr.CodeOf(err)
	if kind == apperr.KindInternal {
		code = apperr.CodeInternal
		h.Log.Error().Err(err).
			Str("request_id", logging.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	_ = c.Error(err)
	c.JSON(kind.HTTPStatus(), gin.H{"error": errorBody{
		Code:    code,
		Message: h.Localizer.GetString(h.lang(c), code),
		Fields:  validation.Fields(err),
	}})
}

// respond writes data with the localized outcome of the operation.
func (h *Handler) respond(c *gin.Context, status int, data interface{}, out workflow.Outcome) {
	c.JSON(status, gin.H{
		"data": data,
		"outcome": outcomeBody{
			Level:   out.Level,
			Code:    out.Code,
			Message: h.Localizer.GetString(h.lang(c), out.Code),
		},
	})
}

func (h *Handler) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// pathID parses the uint path parameter name, answering 400 when it is malformed.
func (h *Handler) pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, apperr.Validation("request.invalid_id", "invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// bind decodes the JSON body into in. Field rules are checked by the services.
func (h *Handler) bind(c *gin.Context, in interface{}) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		h.fail(c, apperr.Validation("request.malformed_body", err.Error()))
		return false
	}
	return true
}
