// Package gofile implements the transport.Client interface against the
// GoFile.io REST and upload endpoints.
package gofile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/transport"
)

const (
	defaultAPIBase   = "https://api.gofile.io"
	defaultUploadURL = "https://upload.gofile.io/uploadFile"
)

// Client talks to GoFile. The zero value is not usable; construct with
// New.
type Client struct {
	apiBase   string
	uploadURL string
	http      *http.Client
}

// New returns a client against the public GoFile endpoints.
func New() *Client {
	return NewWithBase(defaultAPIBase, defaultUploadURL)
}

// NewWithBase returns a client against custom endpoints. Used by tests
// to point at an httptest server.
func NewWithBase(apiBase, uploadURL string) *Client {
	return &Client{
		apiBase:   strings.TrimRight(apiBase, "/"),
		uploadURL: uploadURL,
		http:      &http.Client{Timeout: 10 * time.Minute},
	}
}

// envelope is the uniform GoFile response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return transport.ErrRemoteNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &transport.StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "ok" {
		if strings.Contains(env.Status, "notFound") {
			return transport.ErrRemoteNotFound
		}
		return &transport.StatusError{Code: resp.StatusCode, Status: env.Status}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// CreateAccount provisions a fresh guest account.
func (c *Client) CreateAccount(ctx context.Context) (*model.AccountCredential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/accounts/guest", nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, fmt.Errorf("create guest account: %w", err)
	}
	return &model.AccountCredential{AccountID: data.ID, Token: data.Token}, nil
}

// CreateFolder creates a folder under the account root.
func (c *Client) CreateFolder(ctx context.Context, name string, cred *model.AccountCredential) (string, string, error) {
	payload, err := json.Marshal(map[string]string{
		"name":           name,
		"parentFolderId": "root",
	})
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.apiBase+"/folders", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	var data struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	if err := c.do(req, &data); err != nil {
		return "", "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return data.ID, data.Code, nil
}

// countingReader reports bytes as they leave for the wire.
type countingReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress transport.ProgressFunc
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.sent += int64(n)
		if cr.progress != nil {
			cr.progress(cr.sent, cr.total)
		}
	}
	return n, err
}

// Upload streams one file to the upload endpoint as multipart form data.
func (c *Client) Upload(ctx context.Context, path, folderID string, cred *model.AccountCredential, progress transport.ProgressFunc) (*transport.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		if cred != nil && cred.Token != "" {
			if err := mw.WriteField("token", cred.Token); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		if folderID != "" {
			if err := mw.WriteField("folderId", folderID); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile("file", sanitizeFilename(filepath.Base(path)))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		counted := &countingReader{r: f, total: info.Size(), progress: progress}
		if _, err := io.Copy(part, counted); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	var data struct {
		FileID       string `json:"fileId"`
		FileName     string `json:"fileName"`
		DownloadPage string `json:"downloadPage"`
		ParentFolder string `json:"parentFolder"`
		Code         string `json:"code"`
		GuestToken   string `json:"guestToken"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	elapsed := time.Since(start)

	speed := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		speed = float64(info.Size()) / secs
	}
	return &transport.UploadResult{
		RemoteID:     data.FileID,
		DownloadLink: data.DownloadPage,
		FolderID:     data.ParentFolder,
		FolderCode:   data.Code,
		Duration:     elapsed,
		Speed:        speed,
	}, nil
}

// DeleteRemote removes remote content. An already-deleted id maps to
// transport.ErrRemoteNotFound.
func (c *Client) DeleteRemote(ctx context.Context, remoteID string, cred *model.AccountCredential) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiBase+"/contents/"+remoteID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete remote %s: %w", remoteID, err)
	}
	return nil
}

// MimeType guesses the content type of a file from its extension,
// falling back to application/octet-stream.
func MimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func isFilenameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

// sanitizeFilename makes a name safe for the upload endpoint: anything
// outside letters, digits, underscore, hyphen and dot becomes an
// underscore, runs of two or more separators collapse to one, and a
// name with nothing left falls back to "file".
func sanitizeFilename(name string) string {
	var replaced []rune
	for _, r := range name {
		if isFilenameRune(r) {
			replaced = append(replaced, r)
		} else {
			replaced = append(replaced, '_')
		}
	}

	var out []rune
	var run []rune
	flush := func() {
		if len(run) == 1 {
			out = append(out, run[0])
		} else if len(run) > 1 {
			out = append(out, '_')
		}
		run = run[:0]
	}
	for _, r := range replaced {
		if r == '_' || r == '-' || r == '.' {
			run = append(run, r)
			continue
		}
		flush()
		out = append(out, r)
	}
	flush()

	s := string(out)
	if s == "" || s == "." {
		return "file"
	}
	return s
}
