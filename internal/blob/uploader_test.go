package blob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadServer(t *testing.T, handler http.HandlerFunc) *HTTPUploader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPUploader(srv.URL, "echo-fragments")
}

func TestUploadReturnsSecureURL(t *testing.T) {
	var gotPreset, gotFilename string
	u := newUploadServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPreset = r.FormValue("upload_preset")
		if _, hdr, err := r.FormFile("file"); err == nil {
			gotFilename = hdr.Filename
		}
		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example/echo/a.jpg","url":"http://cdn.example/echo/a.jpg"}`))
	})

	url, err := u.Upload(context.Background(), "a.jpg", "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/echo/a.jpg", url)
	assert.Equal(t, "echo-fragments", gotPreset)
	assert.Equal(t, "a.jpg", gotFilename)
}

func TestUploadFallsBackToPlainURL(t *testing.T) {
	u := newUploadServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://cdn.example/echo/b.jpg"}`))
	})

	url, err := u.Upload(context.Background(), "b.jpg", "image/jpeg", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/echo/b.jpg", url)
}

func TestUploadRejectsEmptyBlob(t *testing.T) {
	u := NewHTTPUploader("http://unused", "p")
	_, err := u.Upload(context.Background(), "x", "image/jpeg", nil)
	assert.Error(t, err)
}

func TestUploadServerError(t *testing.T) {
	u := newUploadServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusBadRequest)
	})

	_, err := u.Upload(context.Background(), "a.jpg", "image/jpeg", []byte{1})
	assert.Error(t, err)
}
