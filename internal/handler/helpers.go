package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"findautopart/internal/apierror"
	"findautopart/internal/middleware"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Report JSON field names in 422 responses.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
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
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[campo(fe.Namespace())] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// campo drops the struct prefix of a validator namespace:
// CrearOfertaRequest.items[0].cantidad → items[0].cantidad.
func campo(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// respondError maps a service error kind to its HTTP status. Unclassified
// errors are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindNoEncontrado:
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case service.KindNoAutorizado:
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case service.KindNoAutenticado:
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case service.KindConflicto:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case service.KindValidacion:
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("internal error")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// paramID parses the :id path parameter, answering 400 when malformed.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// actor builds the service actor from the JWT claims.
func actor(c *gin.Context) service.Actor {
	cl := middleware.GetClaims(c)
	return service.Actor{ID: cl.ID(), Rol: cl.Rol}
}
