package credstore

// SessionTokens is the credential pair held by an authenticated session.
// A value is meaningful only when both fields are populated; partial pairs
// must never be persisted (see [Store.SetTokens]).
type SessionTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are populated.
func (t SessionTokens) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// UserProfile is the cached profile of the signed-in user. Known fields are
// typed; anything the backend sends beyond them is preserved verbatim in
// Extra so round-trips don't lose data.
type UserProfile struct {
	ID    string            `json:"id"`
	Email string            `json:"email,omitempty"`
	Name  string            `json:"name,omitempty"`
	Role  string            `json:"role,omitempty"`
	Extra map[string]string `json:"extra,omitempty"`
}

// ProfilePatch is a shallow partial update of [UserProfile]. Nil pointer
// fields are left untouched; Extra entries are merged key by key.
type ProfilePatch struct {
	Email *string
	Name  *string
	Role  *string
	Extra map[string]string
}

// Apply merges patch into the profile in place.
func (p *UserProfile) Apply(patch ProfilePatch) {
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	if len(patch.Extra) > 0 {
		if p.Extra == nil {
			p.Extra = make(map[string]string, len(patch.Extra))
		}
		for k, v := range patch.Extra {
			p.Extra[k] = v
		}
	}
}
