package server

import "github.com/xeipuuv/gojsonschema"

// Request body schemas. They check shape and types only; field rules live in auth.Validator.
var (
	loginSchemaLoader = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string"},
			"password": {"type": "string"}
		}
	}`)

	registerSchemaLoader = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["email", "password", "first_name", "last_name", "registration_type"],
		"properties": {
			"email": {"type": "string"},
			"password": {"type": "string"},
			"first_name": {"type": "string"},
			"last_name": {"type": "string"},
			"phone": {"type": ["string", "null"]},
			"registration_type": {"enum": ["pastor_new_church", "staff_existing_church", "member"]},
			"church_invitation_code": {"type": ["string", "null"]},
			"requested_role": {"type": ["string", "null"]},
			"pastor_info": {
				"type": ["object", "null"],
				"properties": {
					"denomination": {"type": ["string", "null"]},
					"years_in_ministry": {"type": ["integer", "null"], "minimum": 0},
					"current_church_name": {"type": ["string", "null"]},
					"ordination_certificate_url": {"type": ["string", "null"]},
					"reference_letter_url": {"type": ["string", "null"]}
				}
			}
		}
	}`)

	refreshSchemaLoader = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["refresh_token"],
		"properties": {
			"refresh_token": {"type": "string"}
		}
	}`)

	verifyEmailSchemaLoader = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["token"],
		"properties": {
			"token": {"type": "string"}
		}
	}`)

	changePasswordSchemaLoader = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["current_password", "new_password"],
		"properties": {
			"current_password": {"type": "string"},
			"new_password": {"type": "string"}
		}
	}`)
)
