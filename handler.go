// Package gqlhandler adapts API Gateway proxy integration events into GraphQL
// query executions against a caller supplied schema.
package gqlhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

type (
	// Handler executes GraphQL queries carried by proxy integration events
	Handler struct {
		schema    graphql.Schema
		rootValue map[string]interface{}
		ctxFn     ContextFunc
		origin    string
		pretty    bool
		log       zerolog.Logger
	}

	// ContextFunc derives the execution context from the integration event.
	// Returning an HTTPError sets the response status code; any other error
	// results in an internal server error response.
	ContextFunc func(ctx context.Context, e events.APIGatewayProxyRequest) (context.Context, error)

	// Option configures a handler
	Option func(*Handler)

	contextKey string
)

var eventContextKey = contextKey("eventContextKey")

// Start starts a lambda handler executing queries against the specified schema
func Start(s graphql.Schema, opts ...Option) {
	lambda.Start(New(s, opts...).Handle)
}

// New returns a new handler for the specified schema
func New(s graphql.Schema, opts ...Option) *Handler {
	h := &Handler{
		schema: s,
		origin: "*",
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// WithContextFunc sets the context function invoked before each execution
func WithContextFunc(fn ContextFunc) Option {
	return func(h *Handler) {
		h.ctxFn = fn
	}
}

// WithRootValue sets the root value passed to the execution engine
func WithRootValue(v map[string]interface{}) Option {
	return func(h *Handler) {
		h.rootValue = v
	}
}

// WithOrigin sets the Access-Control-Allow-Origin header value
func WithOrigin(o string) Option {
	return func(h *Handler) {
		h.origin = o
	}
}

// WithPretty enables indented response bodies
func WithPretty() Option {
	return func(h *Handler) {
		h.pretty = true
	}
}

// WithLogger sets the handler logger
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// Handle executes the GraphQL query carried by the integration event and
// returns a proxy integration response. Request faults are encoded as
// responses rather than returned, so API Gateway does not convert them
// into gateway errors.
func (h *Handler) Handle(ctx context.Context, e events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.log.Debug().Str("method", e.HTTPMethod).Str("path", e.Path).Msg("handling event")
	if strings.ToUpper(e.HTTPMethod) == http.MethodOptions {
		return h.response(http.StatusOK, ""), nil
	}
	req, err := parseEvent(e)
	if err != nil {
		h.log.Error().Err(err).Msg("invalid event")
		return h.errorResponse(err), nil
	}
	ctx = context.WithValue(ctx, eventContextKey, e)
	if h.ctxFn != nil {
		if ctx, err = h.ctxFn(ctx, e); err != nil {
			h.log.Error().Err(err).Msg("context func failed")
			return h.errorResponse(err), nil
		}
	}
	res := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.query,
		VariableValues: req.variables,
		OperationName:  req.operationName,
		RootObject:     h.rootValue,
		Context:        ctx,
	})
	return h.resultResponse(res), nil
}

// EventFromContext returns a copy of the proxy integration event if it exists
func EventFromContext(ctx context.Context) (events.APIGatewayProxyRequest, bool) {
	e, ok := ctx.Value(eventContextKey).(events.APIGatewayProxyRequest)
	return e, ok
}

// LambdaContext returns a copy of the lambda context if it exists
func LambdaContext(ctx context.Context) (lambdacontext.LambdaContext, bool) {
	if c, ok := lambdacontext.FromContext(ctx); ok {
		return *c, true
	}
	return lambdacontext.LambdaContext{}, false
}
