package rtm

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_PreservesOrderAndUserAgent(t *testing.T) {
	t.Parallel()

	var gotQuery, gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"rsp":{"stat":"ok"}}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(TransportConfig{UserAgent: "mtask-test/1.0"})
	body, err := tr.Get(t.Context(), server.URL, queryOf("z", "1", "a", "two words", "m", "&"))
	require.NoError(t, err)

	assert.Equal(t, `{"rsp":{"stat":"ok"}}`, string(body))
	assert.Equal(t, "z=1&a=two+words&m=%26", gotQuery)
	assert.Equal(t, "mtask-test/1.0", gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestHTTPTransport_DefaultUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	_, err := NewHTTPTransport(TransportConfig{}).Get(t.Context(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestHTTPTransport_Non2xxIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewHTTPTransport(TransportConfig{}).Get(t.Context(), server.URL, queryOf("a", "1"))
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.ErrorIs(t, err, ErrSystem)
	assert.Equal(t, CodeNetwork, nerr.Code())
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPTransport_ConnectionFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPTransport(TransportConfig{}).Get(t.Context(), url, nil)
	var nerr *NetworkError
	assert.ErrorAs(t, err, &nerr)
}

func TestNewHTTPTransport_Timeouts(t *testing.T) {
	tr := NewHTTPTransport(TransportConfig{})
	assert.Equal(t, DefaultTimeout, tr.http.Timeout)

	tr = NewHTTPTransport(TransportConfig{Timeout: 3 * time.Second})
	assert.Equal(t, 3*time.Second, tr.http.Timeout)

	custom := &http.Client{Timeout: 7 * time.Second}
	tr = NewHTTPTransport(TransportConfig{HTTPClient: custom})
	assert.Equal(t, 7*time.Second, tr.http.Timeout)
	assert.NotSame(t, custom, tr.http)
}
