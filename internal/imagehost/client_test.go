package imagehost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpload_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "cover.jpg", hdr.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"http://img.local/abc.jpg"}`))
	}))
	defer srv.Close()

	url, err := New(srv.URL).Upload(context.Background(), "cover.jpg", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	require.Equal(t, "http://img.local/abc.jpg", url)
}

func TestUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Upload(context.Background(), "cover.jpg", strings.NewReader("x"))
	require.Error(t, err)
}

func TestUpload_EmptyURLRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Upload(context.Background(), "cover.jpg", strings.NewReader("x"))
	require.Error(t, err)
}

func TestUpload_Disabled(t *testing.T) {
	_, err := New("").Upload(context.Background(), "cover.jpg", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrDisabled)
}
