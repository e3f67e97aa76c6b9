package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gofileup/gofileup/internal/logging"
	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/store"
	"github.com/gofileup/gofileup/internal/transport"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Init(context.Background()))
	return s
}

// fakeClient is an in-memory transport.Client. Upload errors are
// consumed in order, so tests can script "fail twice then succeed".
type fakeClient struct {
	accounts      int
	folders       int
	uploadCalls   int
	deleteCalls   []string
	uploadErrs    []error
	deleteErr     error
	createAcctErr error
}

func (f *fakeClient) CreateAccount(ctx context.Context) (*model.AccountCredential, error) {
	if f.createAcctErr != nil {
		return nil, f.createAcctErr
	}
	f.accounts++
	return &model.AccountCredential{
		AccountID: fmt.Sprintf("acct-%d", f.accounts),
		Token:     fmt.Sprintf("tok-%d", f.accounts),
	}, nil
}

func (f *fakeClient) CreateFolder(ctx context.Context, name string, cred *model.AccountCredential) (string, string, error) {
	f.folders++
	return fmt.Sprintf("folder-%d", f.folders), fmt.Sprintf("code-%d", f.folders), nil
}

func (f *fakeClient) Upload(ctx context.Context, path, folderID string, cred *model.AccountCredential, progress transport.ProgressFunc) (*transport.UploadResult, error) {
	f.uploadCalls++
	if len(f.uploadErrs) > 0 {
		err := f.uploadErrs[0]
		f.uploadErrs = f.uploadErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &transport.UploadResult{
		RemoteID:     fmt.Sprintf("remote-%d", f.uploadCalls),
		DownloadLink: fmt.Sprintf("https://gofile.io/d/remote-%d", f.uploadCalls),
		FolderID:     folderID,
		Duration:     time.Second,
		Speed:        1024,
	}, nil
}

func (f *fakeClient) DeleteRemote(ctx context.Context, remoteID string, cred *model.AccountCredential) error {
	f.deleteCalls = append(f.deleteCalls, remoteID)
	return f.deleteErr
}

func newTestEngine(t *testing.T) (*store.Store, *fakeClient, *AccountManager, *Resolver) {
	t.Helper()
	st := newTestStore(t)
	client := &fakeClient{}
	log := logging.Nop()
	accounts := NewAccountManager(st, client, log)
	resolver := NewResolver(st, client, accounts, log)
	return st, client, accounts, resolver
}

func addFile(t *testing.T, st *store.Store, id, name, category string, size int64, uploadedAt time.Time) *model.FileRecord {
	t.Helper()
	f := &model.FileRecord{
		ID:           id,
		Name:         name,
		Size:         size,
		UploadedAt:   uploadedAt,
		DownloadLink: "https://gofile.io/d/" + id,
		Category:     category,
	}
	require.NoError(t, st.SaveFile(context.Background(), f))
	return f
}
