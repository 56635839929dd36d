package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/dgi"
	"github.com/AngeYobo/oxalio/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// DGI taxpayer account number: 7 digits plus a check letter, with an
// optional CI country prefix.
var nccPattern = regexp.MustCompile(`^(CI)?[0-9]{7}[A-Z]$`)

func init() {
	// Report failing fields by their json tag so the validationErrors map in
	// the error envelope matches the request payload, not the Go struct.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("ncc", func(fl validator.FieldLevel) bool {
		return nccPattern.MatchString(fl.Field().String())
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		env := middleware.NewEnvelope(c, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		c.JSON(http.StatusBadRequest, env)
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		env := middleware.NewEnvelope(c, http.StatusBadRequest, "request validation failed")
		env.ValidationErrors = fields
		c.JSON(http.StatusBadRequest, env)
		return false
	}
	return true
}

// respondError maps a service error to the canonical envelope. DGI failures
// surface as 502 with the upstream status in the message; everything the
// taxonomy does not recognize becomes an opaque 500 with a logged errorId.
func respondError(c *gin.Context, err error) {
	var netErr *dgi.NetworkError
	var srvErr *dgi.ServerError
	var cliErr *dgi.ClientError
	var invErr *dgi.InvalidResponseError
	switch {
	case errors.As(err, &netErr):
		writeEnvelope(c, http.StatusBadGateway, "tax authority unreachable")
		return
	case errors.As(err, &srvErr):
		writeEnvelope(c, http.StatusBadGateway, fmt.Sprintf("tax authority error (dgi:%d)", srvErr.Status))
		return
	case errors.As(err, &cliErr):
		writeEnvelope(c, http.StatusBadGateway, fmt.Sprintf("tax authority rejected the request (dgi:%d)", cliErr.Status))
		return
	case errors.As(err, &invErr):
		writeEnvelope(c, http.StatusBadGateway, "tax authority returned an unreadable response")
		return
	}

	ae := apierror.As(err)
	switch ae.Kind {
	case apierror.KindValidation:
		env := middleware.NewEnvelope(c, http.StatusBadRequest, ae.Message)
		env.ValidationErrors = ae.Fields
		c.JSON(http.StatusBadRequest, env)
	case apierror.KindNotFound:
		writeEnvelope(c, http.StatusNotFound, ae.Message)
	case apierror.KindConflict:
		writeEnvelope(c, http.StatusConflict, ae.Message)
	default:
		env := middleware.NewEnvelope(c, http.StatusInternalServerError, "internal server error")
		log.Error().
			Str("error_id", env.ErrorID).
			Str("path", c.Request.URL.Path).
			Err(err).
			Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, env)
	}
}

func writeEnvelope(c *gin.Context, status int, message string) {
	c.JSON(status, middleware.NewEnvelope(c, status, message))
}
