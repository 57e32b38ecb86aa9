package gqlhandler

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name  string
		event events.APIGatewayProxyRequest
		exp   request
		code  int
	}{
		{
			name: "should extract query string parameters",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "GET",
				QueryStringParameters: map[string]string{
					"query":         "query Greet($name: String) { greet(name: $name) }",
					"operationName": "Greet",
					"variables":     `{"name":"gopher"}`,
				},
			},
			exp: request{
				query:         "query Greet($name: String) { greet(name: $name) }",
				operationName: "Greet",
				variables:     map[string]interface{}{"name": "gopher"},
			},
		},
		{
			name: "should reject invalid query string variables",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "GET",
				QueryStringParameters: map[string]string{
					"query":     "{ greet }",
					"variables": "{",
				},
			},
			code: http.StatusBadRequest,
		},
		{
			name: "should extract json body fields",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "POST",
				Body:       `{"query":"{ greet }","operationName":"","variables":null}`,
			},
			exp: request{
				query: "{ greet }",
			},
		},
		{
			name: "should reject a body without a query",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "POST",
				Body:       `{"variables":{}}`,
			},
			code: http.StatusBadRequest,
		},
		{
			name: "should reject scalar variables",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "POST",
				Body:       `{"query":"{ greet }","variables":1}`,
			},
			code: http.StatusBadRequest,
		},
		{
			name: "should reject an invalid base64 body",
			event: events.APIGatewayProxyRequest{
				HTTPMethod:      "POST",
				Body:            "not base64!",
				IsBase64Encoded: true,
			},
			code: http.StatusBadRequest,
		},
		{
			name: "should use the body as the query for graphql content",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "POST",
				Headers: map[string]string{
					"Content-Type": "application/graphql; charset=utf-8",
				},
				Body: "{ greet }",
			},
			exp: request{
				query: "{ greet }",
			},
		},
		{
			name: "should reject unsupported methods",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "PUT",
			},
			code: http.StatusMethodNotAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(st *testing.T) {
			act, err := parseEvent(tt.event)
			if tt.code != 0 {
				herr, ok := err.(*HTTPError)
				if !ok {
					st.Fatalf("got %v, expected an http error", err)
				}
				if herr.Code != tt.code {
					st.Errorf("got %d, expected %d", herr.Code, tt.code)
				}
				return
			}
			if err != nil {
				st.Fatalf("got %v, expected nil", err)
			}
			if !reflect.DeepEqual(act, tt.exp) {
				st.Errorf("got %v, expected %v", act, tt.exp)
			}
		})
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name  string
		event events.APIGatewayProxyRequest
		key   string
		exp   string
	}{
		{
			name: "should match keys ignoring case",
			event: events.APIGatewayProxyRequest{
				Headers: map[string]string{"content-type": "application/json"},
			},
			key: "Content-Type",
			exp: "application/json",
		},
		{
			name:  "should return an empty string for missing keys",
			event: events.APIGatewayProxyRequest{},
			key:   "Content-Type",
			exp:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(st *testing.T) {
			if act := header(tt.event, tt.key); act != tt.exp {
				st.Errorf("got %s, expected %s", act, tt.exp)
			}
		})
	}
}
