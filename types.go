package authsession

import (
	"context"

	"github.com/crmkit/authsession/credstore"
)

// SessionTokens is the credential pair held by an authenticated session.
type SessionTokens = credstore.SessionTokens

// UserProfile is the cached profile of the signed-in user.
type UserProfile = credstore.UserProfile

// ProfilePatch is a shallow partial update applied by
// [Controller.UpdateUserProfile].
type ProfilePatch = credstore.ProfilePatch

// State is the controller's position in the session lifecycle.
type State uint8

const (
	// StateAnonymous means no tokens are held.
	StateAnonymous State = iota
	// StateAuthenticated means a complete token pair is held.
	StateAuthenticated
	// StateRefreshing means a remote refresh is in flight.
	StateRefreshing
	// StateLoggedOut is held while logout cleanup runs; the controller
	// settles back to StateAnonymous before Logout returns.
	StateLoggedOut
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// RefreshData is the rotated token pair inside a successful
// [RefreshResponse]. Token is the new access token; RefreshToken replaces
// the one that was just spent.
type RefreshData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the remote refresh operation's result envelope.
// Success without Data is treated as a failure: rotation needs both tokens.
type RefreshResponse struct {
	Success bool         `json:"success"`
	Data    *RefreshData `json:"data,omitempty"`
}

// Transport is the remote authentication backend as seen by the controller.
// Refresh exchanges the current refresh token for a rotated pair. Logout is
// advisory: its error never blocks local cleanup.
type Transport interface {
	Refresh(ctx context.Context, refreshToken string) (RefreshResponse, error)
	Logout(ctx context.Context) error
}

// Notifier is the UI surface the controller reports to. LoggedOut shows the
// user a sign-out confirmation — always, even when the remote logout call
// failed. RedirectToLogin sends the user to the login surface.
type Notifier interface {
	LoggedOut(ctx context.Context)
	RedirectToLogin(ctx context.Context)
}

type noopNotifier struct{}

func (noopNotifier) LoggedOut(context.Context)       {}
func (noopNotifier) RedirectToLogin(context.Context) {}
