package gofile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/transport"
)

func ok(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"data":   json.RawMessage(raw),
	})
}

func TestCreateAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts/guest", r.URL.Path)
		ok(w, map[string]string{"id": "acct-1", "token": "tok-1"})
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	cred, err := c.CreateAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", cred.AccountID)
	assert.Equal(t, "tok-1", cred.Token)
}

func TestCreateFolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/folders", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Videos", body["name"])
		assert.Equal(t, "root", body["parentFolderId"])

		ok(w, map[string]string{"id": "folder-1", "code": "abc123"})
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	id, code, err := c.CreateFolder(context.Background(),
		"Videos", &model.AccountCredential{Token: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)
	assert.Equal(t, "abc123", code)
}

func TestUploadMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "tok-1", r.FormValue("token"))
		assert.Equal(t, "folder-1", r.FormValue("folderId"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.txt", hdr.Filename)

		ok(w, map[string]string{
			"fileId":       "remote-1",
			"downloadPage": "https://gofile.io/d/remote-1",
			"parentFolder": "folder-1",
			"code":         "remote-1",
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0600))

	var lastSent, lastTotal int64
	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	res, err := c.Upload(context.Background(), path, "folder-1",
		&model.AccountCredential{Token: "tok-1"},
		func(sent, total int64) { lastSent, lastTotal = sent, total })
	require.NoError(t, err)
	assert.Equal(t, "remote-1", res.RemoteID)
	assert.Equal(t, "https://gofile.io/d/remote-1", res.DownloadLink)
	assert.Equal(t, int64(5), lastSent)
	assert.Equal(t, int64(5), lastTotal)
}

func TestDeleteRemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	err := c.DeleteRemote(context.Background(), "gone", &model.AccountCredential{Token: "t"})
	assert.ErrorIs(t, err, transport.ErrRemoteNotFound)
}

func TestEnvelopeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error-auth", "data": map[string]any{}})
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	_, err := c.CreateAccount(context.Background())
	var se *transport.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "error-auth", se.Status)
}

func TestServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	_, err := c.CreateAccount(context.Background())
	require.Error(t, err)
	assert.True(t, transport.IsRetryable(err))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.txt", "report.txt"},
		{"report-2024_v2.txt", "report-2024_v2.txt"},
		{"my file.txt", "my_file.txt"},
		{"a  b.txt", "a_b.txt"},
		{"my file (1).txt", "my_file_1_txt"},
		{"résumé.pdf", "résumé.pdf"},
		{"???", "_"},
		{"", "file"},
		{".", "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestUploadSanitizesFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "my_file_1_txt", hdr.Filename)
		ok(w, map[string]string{"fileId": "remote-1", "downloadPage": "x"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "my file (1)!.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	c := NewWithBase(srv.URL, srv.URL+"/uploadFile")
	_, err := c.Upload(context.Background(), path, "", &model.AccountCredential{Token: "t"}, nil)
	require.NoError(t, err)
}

func TestMimeType(t *testing.T) {
	assert.Contains(t, MimeType("video.mp4"), "video/mp4")
	assert.Equal(t, "application/octet-stream", MimeType("data.weird"))
}
