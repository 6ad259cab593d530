package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/churchai-session/authmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

const (
	maxRequestBodyBytes = 1 << 20
	rootContext         = "(root)"
)

// schemaMessages replaces the validator's English descriptions for the common failures
var schemaMessages = map[string]string{
	"required":     "Campo requerido",
	"invalid_type": "Tipo de dato inválido",
	"enum":         "Valor no permitido",
	"number_gte":   "El valor es demasiado pequeño",
}

type requestSchemas struct {
	login          *gojsonschema.Schema
	register       *gojsonschema.Schema
	refresh        *gojsonschema.Schema
	changePassword *gojsonschema.Schema
	verifyEmail    *gojsonschema.Schema
}

func compileSchemas() (requestSchemas, error) {
	var schemas requestSchemas
	for _, s := range []struct {
		target **gojsonschema.Schema
		loader gojsonschema.JSONLoader
		name   string
	}{
		{&schemas.login, loginSchemaLoader, "login"},
		{&schemas.register, registerSchemaLoader, "register"},
		{&schemas.refresh, refreshSchemaLoader, "refresh"},
		{&schemas.changePassword, changePasswordSchemaLoader, "change-password"},
		{&schemas.verifyEmail, verifyEmailSchemaLoader, "verify-email"},
	} {
		compiled, err := gojsonschema.NewSchema(s.loader)
		if err != nil {
			return requestSchemas{}, errors.Wrapf(err, "[compileSchemas] %s", s.name)
		}
		*s.target = compiled
	}
	return schemas, nil
}

// apiRequest describes one JSON endpoint invocation. A failure the auth service did not
// classify is answered with FailureCode and FailureDetail.
type apiRequest struct {
	W             http.ResponseWriter
	R             *http.Request
	BodySchema    *gojsonschema.Schema
	BodyObj       any
	EndpointLogic func() (any, error)
	SuccessCode   int
	FailureCode   int
	FailureDetail string
}

func (s *Server) serveRequest(req apiRequest) {
	if req.BodySchema != nil || req.BodyObj != nil {
		if !s.readAndValidateRequestBody(req.W, req.R, req.BodySchema, req.BodyObj) {
			return
		}
	}

	respBodyObj, err := req.EndpointLogic()
	if err != nil {
		writeError(req.W, err, req.FailureCode, req.FailureDetail)
		return
	}
	writeJSON(req.W, req.SuccessCode, respBodyObj)
}

func (s *Server) readAndValidateRequestBody(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, bodyObj any) bool {
	defer r.Body.Close()
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("error reading request body")
		writeDetail(w, http.StatusBadRequest, detailInvalidBody)
		return false
	}

	if schema != nil {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(bodyBytes))
		if err != nil {
			// The schemas are compiled at start-up, so this is a body that is not JSON
			s.metrics.events.WithLabelValues(eventValidationFailure).Inc()
			writeValidationErrors(w, []authmodel.ValidationDetail{{
				Loc:  []string{"body"},
				Msg:  "JSON inválido",
				Type: "json_invalid",
			}})
			return false
		}
		if !result.Valid() {
			s.metrics.events.WithLabelValues(eventValidationFailure).Inc()
			writeValidationErrors(w, schemaErrorDetails(result))
			return false
		}
	}

	if bodyObj != nil {
		if err := json.Unmarshal(bodyBytes, bodyObj); err != nil {
			log.Err(errors.Wrap(err, "error unmarshaling request body")).Str("path", r.URL.Path).Msg("request body")
			writeInternalError(w)
			return false
		}
	}
	return true
}

func schemaErrorDetails(result *gojsonschema.Result) []authmodel.ValidationDetail {
	details := make([]authmodel.ValidationDetail, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		field := resultErr.Field()
		if field == rootContext {
			field = ""
		}
		if resultErr.Type() == "required" {
			if property, ok := resultErr.Details()["property"].(string); ok {
				if field == "" {
					field = property
				} else {
					field += "." + property
				}
			}
		}

		loc := []string{"body"}
		if field != "" {
			loc = append(loc, strings.Split(field, ".")...)
		}

		msg, ok := schemaMessages[resultErr.Type()]
		if !ok {
			msg = resultErr.Description()
		}
		details = append(details, authmodel.ValidationDetail{Loc: loc, Msg: msg, Type: resultErr.Type()})
	}
	return details
}
