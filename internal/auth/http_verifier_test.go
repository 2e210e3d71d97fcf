package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T, handler http.HandlerFunc) *HTTPVerifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPVerifier(srv.URL)
}

func TestVerifySessionSuccess(t *testing.T) {
	var gotAuth string
	v := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/get-session", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{
			"session": {"id": "sess-1"},
			"user": {"id": "u1", "email": "a@b.c", "name": "Alice"}
		}`))
	})

	sess, err := v.VerifySession(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "sess-1", sess.SessionID)
	assert.Equal(t, "tok-123", sess.Token)
	assert.Equal(t, "u1", sess.User.UserID)
	assert.Equal(t, "a@b.c", sess.User.Email)
	require.NotNil(t, sess.User.DisplayName)
	assert.Equal(t, "Alice", *sess.User.DisplayName)
}

func TestVerifySessionNullBodyMeansNoSession(t *testing.T) {
	// The auth service answers 200 null for unknown tokens.
	v := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	_, err := v.VerifySession(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifySession401MeansNoSession(t *testing.T) {
	v := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := v.VerifySession(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifySessionServerError(t *testing.T) {
	v := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := v.VerifySession(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestDeleteUser(t *testing.T) {
	var called bool
	v := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/delete-user", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		called = true
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, v.DeleteUser(context.Background(), "tok"))
	assert.True(t, called)
}

func TestExtractBearer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractBearer(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractBearer(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer tok-1")
	tok, err := ExtractBearer(r)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier()

	sess, err := v.VerifySession(context.Background(), LocalDevToken)
	require.NoError(t, err)
	assert.Equal(t, "echo-dev", sess.User.UserID)

	_, err = v.VerifySession(context.Background(), "other")
	assert.ErrorIs(t, err, ErrNoSession)
}
