package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/store"
	"github.com/gofileup/gofileup/internal/transport"
)

// AccountManager owns the single reusable guest credential. One guest
// account serves all uploads so the tracked files stay manageable from
// one session.
type AccountManager struct {
	store  *store.Store
	client transport.Client
	log    *zap.SugaredLogger
}

// NewAccountManager creates an account manager.
func NewAccountManager(st *store.Store, client transport.Client, log *zap.SugaredLogger) *AccountManager {
	return &AccountManager{store: st, client: client, log: log}
}

// Current returns the stored credential without provisioning. Nil when
// none exists yet.
func (am *AccountManager) Current(ctx context.Context) (*model.AccountCredential, error) {
	return am.store.Credential(ctx)
}

// Ensure returns the stored credential, provisioning a fresh guest
// account on first use.
func (am *AccountManager) Ensure(ctx context.Context) (*model.AccountCredential, error) {
	cred, err := am.store.Credential(ctx)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		return cred, nil
	}

	am.log.Info("no guest account yet, creating one")
	cred, err = am.client.CreateAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("provision guest account: %w", err)
	}
	if err := am.store.SaveCredential(ctx, cred); err != nil {
		return nil, err
	}
	am.log.Infow("guest account created", "account_id", cred.AccountID)
	return cred, nil
}

// Import replaces the stored credential with an externally obtained
// token.
func (am *AccountManager) Import(ctx context.Context, accountID, token string) error {
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	cred := &model.AccountCredential{AccountID: accountID, Token: token}
	if err := am.store.SaveCredential(ctx, cred); err != nil {
		return err
	}
	am.log.Infow("credential imported", "account_id", accountID)
	return nil
}

// Reset forgets the stored credential. The next upload provisions a
// fresh account; files tracked under the old one keep their history.
func (am *AccountManager) Reset(ctx context.Context) error {
	if err := am.store.ResetCredential(ctx); err != nil {
		return err
	}
	am.log.Info("credential reset")
	return nil
}
