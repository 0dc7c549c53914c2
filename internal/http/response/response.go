package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorBody{Error: msg, Code: code})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondAppError writes err using its aggregate code. Internal failures never echo the cause.
func RespondAppError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	status := StatusFor(code)
	msg := domainagg.MessageOf(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorBody{Error: msg, Code: string(code)})
}

// RespondBindError reports a malformed or invalid request body as a validation failure.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field: jsonFieldName(fe),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		c.JSON(http.StatusBadRequest, ErrorBody{
			Error:   "invalid request body",
			Code:    string(domainagg.CodeValidation),
			Details: details,
		})
		return
	}
	RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), err)
}

func jsonFieldName(fe validator.FieldError) string {
	if name := strings.TrimSpace(fe.Field()); name != "" {
		return name
	}
	return fe.StructField()
}

var tagNameOnce sync.Once

// UseJSONFieldNames makes gin's validator report json tag names, so details match the request body.
func UseJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
