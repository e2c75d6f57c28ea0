package envelope

import (
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/errors"
)

// Envelope is the uniform response shape every API handler emits. Body
// holds the already-serialized JSON payload: the raw result on success,
// an ErrorBody on failure.
type Envelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// ErrorBody is the failure payload carried inside an envelope body.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Builder stamps envelopes with the fixed header set. It holds no
// per-request state and is safe for concurrent use.
type Builder struct {
	headers map[string]string
}

// NewBuilder snapshots the header set from config once at startup. The
// allowed origin is required: a missing origin fails construction rather
// than degrading to a wildcard.
func NewBuilder(cfg config.CORSConfig) (*Builder, error) {
	if cfg.AllowedOrigin == "" {
		return nil, errors.New(errors.KindConfig, "envelope.build", "allowed origin must not be empty")
	}

	methods := cfg.AllowedMethods
	if methods == "" {
		methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	allowHeaders := cfg.AllowedHeaders
	if allowHeaders == "" {
		allowHeaders = "Content-Type, Authorization"
	}

	return &Builder{
		headers: map[string]string{
			"Access-Control-Allow-Origin":      cfg.AllowedOrigin,
			"Access-Control-Allow-Credentials": strconv.FormatBool(cfg.AllowCredentials),
			"Access-Control-Allow-Headers":     allowHeaders,
			"Access-Control-Allow-Methods":     methods,
			"Content-Type":                     "application/json",
		},
	}, nil
}

// Success wraps a payload in a 200 envelope.
func (b *Builder) Success(payload any) Envelope {
	return b.SuccessStatus(http.StatusOK, payload)
}

// SuccessStatus wraps a payload with an explicit status. A payload that
// cannot be serialized degrades to a 500 failure envelope, so no
// response path is ever dropped.
func (b *Builder) SuccessStatus(status int, payload any) Envelope {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return b.FailureStatus(http.StatusInternalServerError, "internal_error",
			"failed to serialize response payload")
	}
	return Envelope{
		StatusCode: status,
		Headers:    b.Headers(),
		Body:       string(body),
	}
}

// Failure wraps an error code/message pair in a 500 envelope.
func (b *Builder) Failure(code, message string) Envelope {
	return b.FailureStatus(http.StatusInternalServerError, code, message)
}

// FailureStatus wraps an error code/message pair with an explicit
// status. Code and message pass through untouched.
func (b *Builder) FailureStatus(status int, code, message string) Envelope {
	body, err := sonic.Marshal(ErrorBody{Error: code, Message: message})
	if err != nil {
		body = []byte(`{"error":"internal_error","message":"failed to serialize error payload"}`)
	}
	return Envelope{
		StatusCode: status,
		Headers:    b.Headers(),
		Body:       string(body),
	}
}

// Headers returns a copy of the fixed header set.
func (b *Builder) Headers() map[string]string {
	headers := make(map[string]string, len(b.headers))
	for key, value := range b.headers {
		headers[key] = value
	}
	return headers
}

// Write applies an envelope to the gin response writer. The single exit
// point for handlers.
func Write(c *gin.Context, env Envelope) {
	for key, value := range env.Headers {
		c.Header(key, value)
	}
	c.String(env.StatusCode, env.Body)
}
