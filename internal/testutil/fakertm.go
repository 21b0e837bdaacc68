package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"
	"testing"

	"mtask/internal/rtm"
)

// FakeRTM is an httptest server speaking the Remember The Milk REST
// protocol. Requests with a bad signature are rejected the way the real
// service does; everything else is answered by the registered handlers.
type FakeRTM struct {
	Server *httptest.Server
	Secret string

	mu       sync.Mutex
	handlers map[string]func(url.Values) string
	calls    []url.Values
}

// NewFakeRTM starts a fake service that checks signatures against secret.
// The server is closed when the test ends.
func NewFakeRTM(t *testing.T, secret string) *FakeRTM {
	t.Helper()
	f := &FakeRTM{Secret: secret, handlers: make(map[string]func(url.Values) string)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the REST endpoint.
func (f *FakeRTM) URL() string {
	return f.Server.URL + "/services/rest/"
}

// Handle registers a handler returning the full response body for method.
func (f *FakeRTM) Handle(method string, h func(q url.Values) string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

// Respond registers a fixed response body for method.
func (f *FakeRTM) Respond(method, body string) {
	f.Handle(method, func(url.Values) string { return body })
}

// Calls returns the queries received for method, oldest first. An empty
// method returns every call.
func (f *FakeRTM) Calls(method string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []url.Values
	for _, q := range f.calls {
		if method == "" || q.Get("method") == method {
			out = append(out, q)
		}
	}
	return out
}

func (f *FakeRTM) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	f.calls = append(f.calls, q)
	h, ok := f.handlers[q.Get("method")]
	f.mu.Unlock()

	if q.Get("api_sig") != signValues(f.Secret, q) {
		fmt.Fprint(w, FailBody(96, "Invalid signature"))
		return
	}
	if !ok {
		fmt.Fprint(w, FailBody(112, "Method \""+q.Get("method")+"\" not found"))
		return
	}
	fmt.Fprint(w, h(q))
}

func signValues(secret string, v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	q := rtm.NewQuery()
	for _, k := range keys {
		q.Set(k, v.Get(k))
	}
	return rtm.Sign(secret, q)
}

// OKBody wraps fields in a successful response envelope. fields is the
// JSON object body without braces, e.g. `"frob": "abc"`.
func OKBody(fields string) string {
	if fields == "" {
		return `{"rsp": {"stat": "ok"}}`
	}
	return `{"rsp": {"stat": "ok", ` + fields + `}}`
}

// FailBody builds a failed response envelope.
func FailBody(code int, msg string) string {
	return fmt.Sprintf(`{"rsp": {"stat": "fail", "err": {"code": "%d", "msg": %q}}}`, code, msg)
}
