package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope.
// The field is named exactly "v" on the wire; clients parse it by that name.
const envelopeVersion = "1"

// Envelope is the uniform JSON wrapper around every API response body.
// Success responses carry the payload in Data. Error responses carry a
// plain string in Error, plus Code/Message/Details when the error is a
// structured domain error.
type Envelope struct {
	Version string `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps huma response bodies in the Envelope structure.
// Registered as a huma transformer so every handler output and every error
// passes through it.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		env := Envelope{
			Version: envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}
		if apiErr.Code != "" {
			env.Code = apiErr.Code
			env.Message = apiErr.Message
			env.Details = apiErr.Details
		}
		return env, nil
	}

	if err, ok := v.(error); ok {
		return Envelope{
			Version: envelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return Envelope{
		Version: envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
