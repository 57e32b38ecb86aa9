package gqlhandler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"
)

type (
	// HTTPError represents a transport level fault with an associated status code
	HTTPError struct {
		Code    int
		Message string
	}

	request struct {
		query         string
		operationName string
		variables     map[string]interface{}
	}
)

// NewHTTPError returns a new HTTPError with the specified status code and message
func NewHTTPError(code int, format string, args ...interface{}) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// parseEvent extracts the query, operation name and variables from the
// integration event depending on the HTTP verb
func parseEvent(e events.APIGatewayProxyRequest) (request, error) {
	switch strings.ToUpper(e.HTTPMethod) {
	case http.MethodGet:
		return parseQueryString(e.QueryStringParameters)
	case http.MethodPost:
		b, err := eventBody(e)
		if err != nil {
			return request{}, err
		}
		if strings.HasPrefix(header(e, "Content-Type"), "application/graphql") {
			return request{query: string(b)}, nil
		}
		return parseBody(b)
	default:
		return request{}, NewHTTPError(http.StatusMethodNotAllowed, "method %s is not allowed", e.HTTPMethod)
	}
}

func parseQueryString(params map[string]string) (request, error) {
	r := request{
		query:         params["query"],
		operationName: params["operationName"],
	}
	if r.query == "" {
		return request{}, NewHTTPError(http.StatusBadRequest, "must provide a query string")
	}
	if s := params["variables"]; s != "" {
		v, err := parseVariables(s)
		if err != nil {
			return request{}, err
		}
		r.variables = v
	}
	return r, nil
}

func parseBody(b []byte) (request, error) {
	if !gjson.ValidBytes(b) {
		return request{}, NewHTTPError(http.StatusBadRequest, "request body is not valid json")
	}
	r := request{
		query:         gjson.GetBytes(b, "query").String(),
		operationName: gjson.GetBytes(b, "operationName").String(),
	}
	if r.query == "" {
		return request{}, NewHTTPError(http.StatusBadRequest, "must provide a query string")
	}
	switch v := gjson.GetBytes(b, "variables"); v.Type {
	case gjson.Null:
	case gjson.String:
		// variables are commonly double encoded by clients
		p, err := parseVariables(v.String())
		if err != nil {
			return request{}, err
		}
		r.variables = p
	case gjson.JSON:
		if !v.IsObject() {
			return request{}, NewHTTPError(http.StatusBadRequest, "variables must be a json object")
		}
		if err := json.Unmarshal([]byte(v.Raw), &r.variables); err != nil {
			return request{}, NewHTTPError(http.StatusBadRequest, "variables are not valid json")
		}
	default:
		return request{}, NewHTTPError(http.StatusBadRequest, "variables must be a json object")
	}
	return r, nil
}

func parseVariables(s string) (map[string]interface{}, error) {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "variables are not valid json")
	}
	return v, nil
}

// eventBody returns the event body, decoding it if API Gateway applied
// base64 encoding
func eventBody(e events.APIGatewayProxyRequest) ([]byte, error) {
	if !e.IsBase64Encoded {
		return []byte(e.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(e.Body)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "request body is not valid base64")
	}
	return b, nil
}

// header returns the first event header matching the specified key,
// ignoring case
func header(e events.APIGatewayProxyRequest, key string) string {
	for k, v := range e.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
