package rtm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/oauth2"

	"mtask/internal/rtm/model"
)

const (
	testKey    = "key"
	testSecret = "secret"
)

// stubTransport answers by the method parameter and records every query.
type stubTransport struct {
	mu        sync.Mutex
	t         *testing.T
	responses map[string]string
	err       error
	queries   []*Query
}

func newStub(t *testing.T, responses map[string]string) *stubTransport {
	return &stubTransport{t: t, responses: responses}
}

func (s *stubTransport) Get(_ context.Context, _ string, q *Query) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	method, _ := q.Get("method")
	body, ok := s.responses[method]
	if !ok {
		s.t.Errorf("unexpected call to %s", method)
		return nil, errors.New("unexpected call")
	}
	return []byte(body), nil
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *stubTransport) last() *Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

// silentTransport fails the test if any request is made.
type silentTransport struct{ t *testing.T }

func (s silentTransport) Get(context.Context, string, *Query) ([]byte, error) {
	s.t.Fatal("transport must not be called")
	return nil, nil
}

func okBody(members string) string {
	if members == "" {
		return `{"rsp": {"stat": "ok"}}`
	}
	return `{"rsp": {"stat": "ok", ` + members + `}}`
}

func failBody(code, msg string) string {
	return fmt.Sprintf(`{"rsp": {"stat": "fail", "err": {"code": %q, "msg": %q}}}`, code, msg)
}

func newTestClient(t *testing.T, tr Transport, opts ...Option) *Client {
	t.Helper()
	c, err := New(testKey, testSecret, append([]Option{WithTransport(tr)}, opts...)...)
	require.NoError(t, err)
	return c
}

func keys(q *Query) []string {
	var out []string
	for pair := q.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New("", "secret")
	assert.Error(t, err)
	_, err = New("key", "")
	assert.Error(t, err)
}

func TestCall_UnknownMethod(t *testing.T) {
	c := newTestClient(t, silentTransport{t})
	_, err := c.Call(t.Context(), "rtm.tasks.fly", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCall_MissingRequiredParameter(t *testing.T) {
	c := newTestClient(t, silentTransport{t})

	_, err := c.Call(t.Context(), "rtm.tasks.add", Args{"name": "milk"})
	var merr *MissingParameterError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "rtm.tasks.add", merr.Method)
	assert.Equal(t, "timeline", merr.Param)

	_, err = c.Call(t.Context(), "rtm.tasks.complete", Args{"timeline": "1", "list_id": 2})
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "taskseries_id", merr.Param)
}

func TestCall_UnstringifiableParameter(t *testing.T) {
	c := newTestClient(t, silentTransport{t})
	_, err := c.Call(t.Context(), "rtm.test.echo", Args{"x": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter x")
}

func TestCall_AssemblesAndSignsQuery(t *testing.T) {
	stub := newStub(t, map[string]string{"rtm.test.echo": okBody(`"method": "rtm.test.echo", "b": "2"`)})
	c := newTestClient(t, stub)

	due := time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	v, err := c.Call(t.Context(), "rtm.test.echo", Args{"b": 2, "a": "x", "flag": true, "due": due})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"method": "rtm.test.echo", "b": "2"}, v)

	q := stub.last()
	assert.Equal(t, []string{"a", "b", "due", "flag", "method", "api_key", "format", "api_sig"}, keys(q))

	get := func(k string) string {
		v, _ := q.Get(k)
		return v
	}
	assert.Equal(t, "2", get("b"))
	assert.Equal(t, "1", get("flag"))
	assert.Equal(t, "2024-03-15T09:30:00Z", get("due"))
	assert.Equal(t, "json", get("format"))
	assert.Equal(t, testKey, get("api_key"))

	unsigned := NewQuery()
	for pair := q.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key != "api_sig" {
			unsigned.Set(pair.Key, pair.Value)
		}
	}
	assert.Equal(t, Sign(testSecret, unsigned), get("api_sig"))
	_, hasToken := q.Get("auth_token")
	assert.False(t, hasToken)
}

func TestCall_AuthMethodSendsToken(t *testing.T) {
	stub := newStub(t, map[string]string{
		"rtm.test.login": okBody(`"user": {"id": "1", "username": "bob"}`),
	})
	c := newTestClient(t, stub, WithToken(&oauth2.Token{AccessToken: "tok"}))

	user, err := c.TestLogin(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)

	token, _ := stub.last().Get("auth_token")
	assert.Equal(t, "tok", token)
	assert.Equal(t, []string{"method", "api_key", "format", "auth_token", "api_sig"}, keys(stub.last()))
}

func TestCall_RemoteRequestError(t *testing.T) {
	stub := newStub(t, map[string]string{"rtm.lists.getList": failBody("98", "Login failed / Invalid auth token")})
	c := newTestClient(t, stub, WithToken(&oauth2.Token{AccessToken: "stale"}))

	_, err := c.GetLists(t.Context())
	var rerr *RemoteRequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, CodeLoginFailed, rerr.Code)
	assert.Equal(t, "Login failed / Invalid auth token", rerr.Msg)
	assert.Equal(t, "Login failed / Invalid auth token (98)", err.Error())
	assert.False(t, errors.Is(err, ErrSystem))
	assert.True(t, IsAuthError(err))
}

func TestCall_SystemErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "not json", body: `<rsp stat="ok"/>`, code: CodeDecode},
		{name: "no rsp", body: `{"stat": "ok"}`, code: CodeDecode},
		{name: "rsp not object", body: `{"rsp": "ok"}`, code: CodeDecode},
		{name: "fail without err", body: `{"rsp": {"stat": "fail"}}`, code: CodeUnknown},
		{name: "err without msg", body: `{"rsp": {"stat": "fail", "err": {"code": "1"}}}`, code: CodeUnknown},
		{name: "non numeric code", body: `{"rsp": {"stat": "fail", "err": {"code": "x", "msg": "bad"}}}`, code: CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, newStub(t, map[string]string{"rtm.test.echo": tt.body}))
			_, err := c.Call(t.Context(), "rtm.test.echo", nil)
			require.ErrorIs(t, err, ErrSystem)
			var coded interface{ Code() int }
			require.ErrorAs(t, err, &coded)
			assert.Equal(t, tt.code, coded.Code())
		})
	}
}

func TestCall_TransportFailureIsNetworkError(t *testing.T) {
	stub := newStub(t, nil)
	stub.err = errors.New("connection refused")
	c := newTestClient(t, stub)

	_, err := c.Call(t.Context(), "rtm.test.echo", nil)
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.ErrorIs(t, err, ErrSystem)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCall_MalformedResult(t *testing.T) {
	stub := newStub(t, map[string]string{"rtm.lists.getList": okBody("")})
	c := newTestClient(t, stub, WithToken(&oauth2.Token{AccessToken: "tok"}))

	_, err := c.GetLists(t.Context())
	var merr *model.MalformedResponseError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "lists", merr.Key)
	assert.False(t, errors.Is(err, ErrSystem))
}

func TestCall_RecordsMetricsAndSpans(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	stub := newStub(t, map[string]string{
		"rtm.test.echo":  okBody(""),
		"rtm.test.login": failBody("98", "Login failed / Invalid auth token"),
	})
	c := newTestClient(t, stub,
		WithToken(&oauth2.Token{AccessToken: "tok"}),
		WithMeterProvider(mp),
		WithTracerProvider(tp),
	)

	_, err := c.Call(t.Context(), "rtm.test.echo", nil)
	require.NoError(t, err)
	_, err = c.Call(t.Context(), "rtm.test.login", nil)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "rtm_calls_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				method, _ := dp.Attributes.Value(attribute.Key(attrMethod))
				status, _ := dp.Attributes.Value(attribute.Key(attrStatus))
				counts[method.AsString()+"/"+status.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"rtm.test.echo/ok": 1, "rtm.test.login/fail": 1}, counts)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "rtm.test.echo", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "rtm.test.login", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestCallStatus(t *testing.T) {
	assert.Equal(t, statusOK, callStatus(nil))
	assert.Equal(t, statusFail, callStatus(&RemoteRequestError{Code: 1, Msg: "x"}))
	assert.Equal(t, statusSystemError, callStatus(&DecodeError{Err: errors.New("x")}))
	assert.Equal(t, statusMalformed, callStatus(&model.MalformedResponseError{Entity: "a", Key: "b", Err: model.ErrMissingKey}))
	assert.Equal(t, statusError, callStatus(errors.New("x")))
}

// TestClient_AgainstHTTPServer runs a typed helper end to end and verifies
// the signature the way the service does.
func TestClient_AgainstHTTPServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := NewQuery()
		for k, v := range r.URL.Query() {
			if k != "api_sig" {
				q.Set(k, v[0])
			}
		}
		if Sign(testSecret, q) != r.URL.Query().Get("api_sig") {
			_, _ = w.Write([]byte(failBody("96", "Invalid signature")))
			return
		}
		switch r.URL.Query().Get("method") {
		case "rtm.timelines.create":
			_, _ = w.Write([]byte(okBody(`"timeline": "12741021"`)))
		case "rtm.tasks.add":
			_, _ = fmt.Fprintf(w, `{"rsp": {"stat": "ok", "transaction": {"id": "1", "undoable": "0"},
				"list": {"id": %q, "taskseries": {"id": "5", "name": %q, "task": {"id": "6", "priority": "N"}}}}}`,
				r.URL.Query().Get("list_id"), r.URL.Query().Get("name"))
		default:
			_, _ = w.Write([]byte(failBody("112", "Method not found")))
		}
	}))
	defer server.Close()

	c, err := New(testKey, testSecret,
		WithEndpoint(server.URL),
		WithToken(&oauth2.Token{AccessToken: "tok"}),
	)
	require.NoError(t, err)

	timeline, err := c.CreateTimeline(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "12741021", timeline)

	list, err := c.AddTask(t.Context(), timeline, 42, "Buy milk & eggs", true)
	require.NoError(t, err)
	assert.Equal(t, 42, list.ID)
	require.Len(t, list.Series, 1)
	assert.Equal(t, "Buy milk & eggs", list.Series[0].Name)
	require.Len(t, list.Series[0].Tasks, 1)
	assert.Nil(t, list.Series[0].Tasks[0].Priority)
}
