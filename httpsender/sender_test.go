package httpsender

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmie/statementq"
)

func TestSenderPostsPayloadWithToken(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s, err := New(srv.URL, WithToken("abc123"), WithHeader("X-Game", "dwarfs"))
	require.NoError(t, err)

	err = s.Send(context.Background(), statementq.Record{ID: "1", Payload: []byte(`{"verb":{}}`)})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "abc123", got.Header.Get("x-authentication"))
	assert.Equal(t, "dwarfs", got.Header.Get("X-Game"))
	assert.JSONEq(t, `{"verb":{}}`, string(body))
}

func TestSenderBasicAuthAndCustomTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "lrs" || pass != "secret" || r.Header.Get("Authorization-Token") != "t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := New(srv.URL, WithBasicAuth("lrs", "secret"), WithToken("t"), WithTokenHeader("Authorization-Token"))
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), statementq.Record{ID: "1", Payload: []byte(`{}`)}))
}

func TestSenderStatusErrorMessage(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		temp    bool
	}{
		{name: "json message", status: http.StatusBadRequest, body: `{"message":"invalid statement"}`, message: "invalid statement"},
		{name: "plain body", status: http.StatusServiceUnavailable, body: "maintenance\n", message: "maintenance", temp: true},
		{name: "empty body", status: http.StatusInternalServerError, message: "", temp: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"message":"slow down"}`, message: "slow down", temp: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			s, err := New(srv.URL)
			require.NoError(t, err)

			err = s.Send(context.Background(), statementq.Record{ID: "1", Payload: []byte(`{}`)})
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tc.status, statusErr.StatusCode)
			assert.Equal(t, tc.message, statusErr.Message)
			assert.Equal(t, tc.temp, statusErr.Temporary())
		})
	}
}

func TestNewValidatesEndpoint(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrEndpointRequired)

	_, err = New("ftp://example.com")
	require.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = New("/relative")
	require.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestSenderCircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := New(srv.URL, WithCircuitBreaker(DefaultBreakerSettings("lrs", 2, time.Minute)))
	require.NoError(t, err)

	record := statementq.Record{ID: "1", Payload: []byte(`{}`)}
	for i := 0; i < 2; i++ {
		var statusErr *StatusError
		require.ErrorAs(t, s.Send(context.Background(), record), &statusErr)
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())

	err = s.Send(context.Background(), record)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSenderCircuitBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s, err := New(srv.URL, WithCircuitBreaker(DefaultBreakerSettings("lrs", 1, time.Minute)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.Error(t, s.Send(context.Background(), statementq.Record{ID: "1", Payload: []byte(`{}`)}))
	}
	assert.Equal(t, gobreaker.StateClosed, s.State())
}

func TestSenderCircuitBreakerKeepsCustomSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	settings := DefaultBreakerSettings("lrs", 2, time.Minute)
	settings.IsSuccessful = func(err error) bool { return err == nil }
	s, err := New(srv.URL, WithCircuitBreaker(settings))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.Error(t, s.Send(context.Background(), statementq.Record{ID: "1", Payload: []byte(`{}`)}))
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, statementq.FailureDrop, Classify(ctx, statementq.Record{}, &StatusError{StatusCode: 400}))
	assert.Equal(t, statementq.FailureRetry, Classify(ctx, statementq.Record{}, &StatusError{StatusCode: 503}))
	assert.Equal(t, statementq.FailureRetry, Classify(ctx, statementq.Record{}, errors.New("connection refused")))
}

func TestKeyValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/publicAPI/key/ABC123" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"unknown key"}`))
	}))
	defer srv.Close()

	v, err := NewKeyValidator(srv.URL+"/publicAPI/key/", nil)
	require.NoError(t, err)

	ok, err := v.Validate(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Validate(context.Background(), "ZZZ999")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
