package authsession

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/crmkit/authsession/credstore"
	"github.com/crmkit/authsession/token"
)

// Controller owns the one session of this client process. It decides when a
// refresh is due, performs rotation, mirrors state into the credential
// store, and guarantees that refresh failure never leaves a stale
// authenticated facade behind.
//
// The credential store is treated as best-effort: a storage failure degrades
// to a warning and a forced re-login later, never to a crashed caller.
type Controller struct {
	config    Config
	codec     *token.Codec
	store     *credstore.Store
	transport Transport
	notifier  Notifier
	log       zerolog.Logger

	mu     sync.Mutex
	state  State
	tokens *SessionTokens
	user   *UserProfile

	refreshGroup singleflight.Group
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tokens returns a copy of the held pair. ok is false when anonymous.
func (c *Controller) Tokens() (SessionTokens, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens == nil {
		return SessionTokens{}, false
	}
	return *c.tokens, true
}

// CurrentUser returns a copy of the held profile, or nil when none is held.
func (c *Controller) CurrentUser() *UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil
	}
	out := *c.user
	if c.user.Extra != nil {
		out.Extra = make(map[string]string, len(c.user.Extra))
		for k, v := range c.user.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// SetSession installs a freshly issued token pair and profile (the login
// entry point) and mirrors both into durable storage. Partial pairs are
// rejected before any state changes.
func (c *Controller) SetSession(tokens SessionTokens, user *UserProfile) error {
	if !tokens.Complete() {
		return ErrPartialTokens
	}

	c.mu.Lock()
	held := tokens
	c.tokens = &held
	c.user = user
	c.state = StateAuthenticated
	c.mu.Unlock()

	if err := c.store.SetTokens(tokens); err != nil {
		c.log.Warn().Err(err).Msg("token persist failed, session is memory-only")
	}
	if user != nil {
		if err := c.store.SetUser(*user); err != nil {
			c.log.Warn().Err(err).Msg("user persist failed")
		}
	}
	return nil
}

// Restore reloads a persisted session after a process restart. It reports
// whether an authenticated session was recovered. Storage failures degrade
// to a fresh anonymous state — losing the cache costs the user a login, not
// a crash.
func (c *Controller) Restore() bool {
	tokens, err := c.store.Tokens()
	if err != nil {
		c.log.Warn().Err(err).Msg("token restore failed, starting anonymous")
		return false
	}
	if tokens == nil {
		return false
	}

	user, err := c.store.User()
	if err != nil {
		c.log.Warn().Err(err).Msg("user restore failed, continuing without profile")
		user = nil
	}

	c.mu.Lock()
	c.tokens = tokens
	c.user = user
	c.state = StateAuthenticated
	c.mu.Unlock()

	return true
}

// NeedsRefresh reports whether the held access token is inside the refresh
// window. False when anonymous: there is nothing to refresh.
func (c *Controller) NeedsRefresh() bool {
	c.mu.Lock()
	access := ""
	if c.tokens != nil {
		access = c.tokens.AccessToken
	}
	c.mu.Unlock()

	if access == "" {
		return false
	}
	return c.codec.ShouldRefresh(access)
}

// RefreshToken exchanges the held refresh token for a rotated pair.
//
// With no refresh token held it fails fast with [ErrNoRefreshToken] and the
// transport is never called. On a successful response both tokens are
// replaced atomically; the spent refresh token is gone for good. Any other
// outcome — transport error or a non-success response — is fatal to the
// session: the controller logs out (local cleanup, notification, redirect)
// and then returns [ErrRefreshRejected] so every waiting caller observes
// the failure. The original request is not retried here; that policy
// belongs to the HTTP layer.
//
// Concurrent calls each hit the transport independently unless
// Config.Refresh.SingleFlight is set, in which case they share one in-flight
// exchange.
func (c *Controller) RefreshToken(ctx context.Context) error {
	if !c.config.Refresh.SingleFlight {
		return c.refreshOnce(ctx)
	}

	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.refreshOnce(ctx)
	})
	return err
}

func (c *Controller) refreshOnce(ctx context.Context) error {
	c.mu.Lock()
	if c.tokens == nil || c.tokens.RefreshToken == "" {
		c.mu.Unlock()
		return ErrNoRefreshToken
	}
	spent := c.tokens.RefreshToken
	c.state = StateRefreshing
	c.mu.Unlock()

	resp, err := c.transport.Refresh(ctx, spent)
	switch {
	case err != nil:
		c.Logout(ctx)
		return fmt.Errorf("%w: %v", ErrRefreshRejected, err)
	case !resp.Success, resp.Data == nil, resp.Data.Token == "", resp.Data.RefreshToken == "":
		c.Logout(ctx)
		return ErrRefreshRejected
	}

	rotated := SessionTokens{
		AccessToken:  resp.Data.Token,
		RefreshToken: resp.Data.RefreshToken,
	}

	c.mu.Lock()
	c.tokens = &rotated
	c.state = StateAuthenticated
	c.mu.Unlock()

	if err := c.store.SetTokens(rotated); err != nil {
		c.log.Warn().Err(err).Msg("rotated token persist failed, session is memory-only")
	}
	return nil
}

// Logout ends the session. The remote logout call is advisory: its failure
// is logged and local cleanup proceeds unconditionally, so the client can
// never get stuck looking authenticated because of a transient server
// error. The user is always notified of a successful sign-out and
// redirected to the login surface.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.state = StateLoggedOut
	c.mu.Unlock()

	if err := c.transport.Logout(ctx); err != nil {
		c.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}

	c.mu.Lock()
	c.tokens = nil
	c.user = nil
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("credential store clear failed")
	}

	c.notifier.LoggedOut(ctx)
	c.notifier.RedirectToLogin(ctx)

	c.mu.Lock()
	c.state = StateAnonymous
	c.mu.Unlock()
}

// UpdateUserProfile shallow-merges patch into the held profile and persists
// the result. A silent no-op when no user is held.
func (c *Controller) UpdateUserProfile(patch ProfilePatch) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	c.user.Apply(patch)
	updated := *c.user
	c.mu.Unlock()

	if err := c.store.SetUser(updated); err != nil {
		c.log.Warn().Err(err).Msg("user persist failed")
	}
}
