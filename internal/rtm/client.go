// Package rtm is a client for the Remember The Milk REST API.
//
// Every remote method is described by a MethodSpec in Methods and invoked
// through Client.Call, which checks required parameters, signs the request,
// performs it and hands the decoded response to the method's parser from
// package model. Typed helpers such as GetLists and AddTask wrap Call for
// the methods the CLI uses.
package rtm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"mtask/internal/logging"
)

const (
	// DefaultEndpoint is the REST endpoint.
	DefaultEndpoint = "https://api.rememberthemilk.com/services/rest/"

	// DefaultAuthEndpoint is where users approve a frob.
	DefaultAuthEndpoint = "https://www.rememberthemilk.com/services/auth/"
)

// Client calls the API on behalf of one application key and one user.
// It is safe for concurrent use.
type Client struct {
	apiKey       string
	secret       string
	perms        Perms
	endpoint     string
	authEndpoint string
	transport    Transport
	logger       *slog.Logger
	tokenSource  oauth2.TokenSource

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metrics        *callMetrics
	tracer         trace.Tracer

	mu    sync.Mutex
	frob  string
	token *oauth2.Token
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the REST endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithAuthEndpoint overrides the endpoint used by AuthURL.
func WithAuthEndpoint(endpoint string) Option {
	return func(c *Client) { c.authEndpoint = endpoint }
}

// WithTransport replaces the default HTTPTransport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithPerms sets the permission level requested by AuthURL.
func WithPerms(p Perms) Option {
	return func(c *Client) { c.perms = p }
}

// WithFrob seeds the client with a frob obtained earlier.
func WithFrob(frob string) Option {
	return func(c *Client) { c.frob = frob }
}

// WithToken seeds the client with a stored token, skipping the handshake.
func WithToken(token *oauth2.Token) Option {
	return func(c *Client) { c.token = token }
}

// WithTokenSource makes the client pull its token from ts on first use.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// WithMeterProvider sets the meter provider. The default is the otel global.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Client) { c.meterProvider = mp }
}

// WithTracerProvider sets the tracer provider. The default is the otel global.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracerProvider = tp }
}

// New creates a client for the given application credentials.
func New(apiKey, sharedSecret string, opts ...Option) (*Client, error) {
	if apiKey == "" || sharedSecret == "" {
		return nil, errors.New("rtm: api key and shared secret are required")
	}
	c := &Client{
		apiKey:       apiKey,
		secret:       sharedSecret,
		perms:        PermsRead,
		endpoint:     DefaultEndpoint,
		authEndpoint: DefaultAuthEndpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(TransportConfig{})
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.meterProvider == nil {
		c.meterProvider = otel.GetMeterProvider()
	}
	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}

	m, err := newCallMetrics(c.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	c.metrics = m
	c.tracer = c.tracerProvider.Tracer(instrumentationName)
	return c, nil
}

// Call invokes a registered method and returns its parsed result. The
// concrete type of the result is determined by the method's parser.
func (c *Client) Call(ctx context.Context, method string, args Args) (result any, err error) {
	spec, ok := Lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	for _, name := range spec.Required {
		if _, ok := args[name]; !ok {
			return nil, &MissingParameterError{Method: method, Param: name}
		}
	}

	ctx, span := c.tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(spanAttrMethod, method)),
	)
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		status := callStatus(err)
		c.metrics.record(ctx, method, status, elapsed)
		if err != nil {
			var rerr *RemoteRequestError
			if errors.As(err, &rerr) {
				span.SetAttributes(attribute.Int(spanAttrCode, rerr.Code))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.logger.Debug("rtm call finished", logging.Method(method), logging.Status(status), logging.Duration(elapsed))
	}()

	rsp, err := c.request(ctx, spec, args)
	if err != nil {
		return nil, err
	}
	return spec.Result(rsp)
}

// request builds, signs and performs a call and returns the rsp object of a
// successful response.
func (c *Client) request(ctx context.Context, spec MethodSpec, args Args) (map[string]any, error) {
	query := NewQuery()
	if err := args.encode(spec.Name, query); err != nil {
		return nil, err
	}
	query.Set("method", spec.Name)
	query.Set("api_key", c.apiKey)
	query.Set("format", "json")
	if spec.Auth {
		token, err := c.Token(ctx)
		if err != nil {
			return nil, err
		}
		query.Set("auth_token", token.AccessToken)
	}
	query.Set("api_sig", Sign(c.secret, query))

	c.logger.Debug("rtm request", logging.Method(spec.Name), slog.String(logging.KeyURL, c.endpoint+"?"+redact(query)))
	body, err := c.transport.Get(ctx, c.endpoint, query)
	if err != nil {
		var nerr *NetworkError
		if !errors.As(err, &nerr) {
			err = &NetworkError{Err: err}
		}
		c.logger.Warn("rtm request failed", logging.Method(spec.Name), logging.Err(err))
		return nil, err
	}
	c.logger.Debug("rtm response", logging.Method(spec.Name), slog.Int(logging.KeyBytes, len(body)))

	rsp, err := decodeResponse(body)
	if err != nil {
		var rerr *RemoteRequestError
		if errors.As(err, &rerr) {
			c.logger.Warn("rtm request rejected", logging.Method(spec.Name), slog.Int(logging.KeyCode, rerr.Code), logging.Err(err))
		}
		return nil, err
	}
	return rsp, nil
}

// decodeResponse unwraps {"rsp": {...}} and turns a failed status into an
// error.
func decodeResponse(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var envelope struct {
		Rsp map[string]any `json:"rsp"`
	}
	if err := dec.Decode(&envelope); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if envelope.Rsp == nil {
		return nil, &DecodeError{Err: errors.New("missing rsp object")}
	}
	if stat, _ := envelope.Rsp["stat"].(string); stat != "ok" {
		return nil, remoteError(envelope.Rsp["err"])
	}
	return envelope.Rsp, nil
}

// remoteError builds a RemoteRequestError when the err element carries a
// message and an integer code, and a RemoteSystemError otherwise.
func remoteError(v any) error {
	e, ok := v.(map[string]any)
	if !ok {
		return &RemoteSystemError{}
	}
	msg, _ := cast.ToStringE(e["msg"])
	rawCode, _ := cast.ToStringE(e["code"])
	code, err := strconv.Atoi(rawCode)
	if msg == "" || err != nil {
		return &RemoteSystemError{}
	}
	return &RemoteRequestError{Code: code, Msg: msg}
}

// redact encodes q for logging with the auth token masked.
func redact(q *Query) string {
	out := NewQuery()
	for pair := q.Oldest(); pair != nil; pair = pair.Next() {
		v := pair.Value
		if pair.Key == "auth_token" {
			v = logging.SanitizeToken(v)
		}
		out.Set(pair.Key, v)
	}
	return EncodeQuery(out)
}
