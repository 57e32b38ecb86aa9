package gqlhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/graphql-go/graphql"
)

const allowedMethods = "GET, POST, OPTIONS"

type (
	errorBody struct {
		Errors []errorMessage `json:"errors"`
	}

	errorMessage struct {
		Message string `json:"message"`
	}
)

// resultResponse returns a proxy integration response for the execution
// result. Resolver errors are carried in the body with a 200 status code.
func (h *Handler) resultResponse(r *graphql.Result) events.APIGatewayProxyResponse {
	var (
		b   []byte
		err error
	)
	if h.pretty {
		b, err = json.MarshalIndent(r, "", "  ")
	} else {
		b, err = json.Marshal(r)
	}
	if err != nil {
		return h.errorResponse(NewHTTPError(http.StatusInternalServerError, "failed to encode result"))
	}
	return h.response(http.StatusOK, string(b))
}

// errorResponse returns a proxy integration response for the specified
// error, using the HTTPError status code if one is wrapped
func (h *Handler) errorResponse(err error) events.APIGatewayProxyResponse {
	code := http.StatusInternalServerError
	var herr *HTTPError
	if errors.As(err, &herr) {
		code = herr.Code
	}
	b, _ := json.Marshal(errorBody{
		Errors: []errorMessage{{Message: err.Error()}},
	})
	r := h.response(code, string(b))
	if code == http.StatusMethodNotAllowed {
		r.Headers["Allow"] = allowedMethods
	}
	return r
}

func (h *Handler) response(code int, body string) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  h.origin,
		"Access-Control-Allow-Methods": allowedMethods,
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
	if body != "" {
		headers["Content-Type"] = "application/json"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    headers,
		Body:       body,
	}
}
