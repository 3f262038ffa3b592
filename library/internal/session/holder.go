package session

import (
	"context"
	"sync"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
)

type Provider interface {
	Login(ctx context.Context, username, password string) (model.AuthResponse, error)
	Restore(ctx context.Context, token string) (model.User, error)
	Logout(ctx context.Context, token string) error
}

// Holder is the identity of one client: either nobody or one account.
// It reports Loading until the first Restore has finished.
type Holder struct {
	provider Provider

	mu      sync.RWMutex
	loading bool
	token   string
	user    *model.User
}

func NewHolder(p Provider) *Holder {
	return &Holder{provider: p, loading: true}
}

func (h *Holder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

func (h *Holder) Current() (model.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return model.User{}, false
	}
	return *h.user, true
}

func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Restore picks up a previously issued token. An empty token leaves the
// holder signed out without error.
func (h *Holder) Restore(ctx context.Context, token string) error {
	var (
		user model.User
		err  error
	)
	if token != "" {
		user, err = h.provider.Restore(ctx, token)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if token == "" || err != nil {
		h.token, h.user = "", nil
		return err
	}
	h.token, h.user = token, &user
	return nil
}

func (h *Holder) Login(ctx context.Context, username, password string) (model.AuthResponse, error) {
	resp, err := h.provider.Login(ctx, username, password)
	if err != nil {
		return model.AuthResponse{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	h.token, h.user = resp.AccessToken, &resp.User
	return resp, nil
}

// Logout always leaves the holder signed out, even if closing the slot fails.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	token := h.token
	h.token, h.user = "", nil
	h.mu.Unlock()
	if token == "" {
		return nil
	}
	return h.provider.Logout(ctx, token)
}
