package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Default storage keys. Fixed so that every process of the same client finds
// the session left behind by the previous one.
const (
	DefaultTokenKey = "crm.auth.tokens"
	DefaultUserKey  = "crm.auth.user"
)

// ErrPartialTokens is returned by [Store.SetTokens] when only one of the two
// tokens is populated. A half-pair is not a valid session state.
var ErrPartialTokens = errors.New("credstore: session tokens must be fully populated or absent")

// Store is the typed credential layer over a [KV]. It owns two fixed keys,
// one for the token pair and one for the cached user profile.
type Store struct {
	kv       KV
	tokenKey string
	userKey  string
}

// NewStore wraps kv. Empty key names fall back to [DefaultTokenKey] and
// [DefaultUserKey].
func NewStore(kv KV, tokenKey, userKey string) *Store {
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}
	if userKey == "" {
		userKey = DefaultUserKey
	}
	return &Store{
		kv:       kv,
		tokenKey: tokenKey,
		userKey:  userKey,
	}
}

// Tokens returns the persisted token pair, or (nil, nil) when none is
// stored. A stored but incomplete pair is reported as an error: it should
// never have been written.
func (s *Store) Tokens() (*SessionTokens, error) {
	raw, err := s.kv.GetItem(s.tokenKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var tokens SessionTokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, fmt.Errorf("%w: corrupt token record: %v", ErrStorageUnavailable, err)
	}
	if !tokens.Complete() {
		return nil, fmt.Errorf("%w: stored pair is incomplete", ErrPartialTokens)
	}
	return &tokens, nil
}

// SetTokens persists the pair. Partial pairs are rejected before any write.
func (s *Store) SetTokens(tokens SessionTokens) error {
	if !tokens.Complete() {
		return ErrPartialTokens
	}

	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return s.kv.SetItem(s.tokenKey, string(raw))
}

// ClearTokens removes the persisted pair.
func (s *Store) ClearTokens() error {
	return s.kv.RemoveItem(s.tokenKey)
}

// User returns the cached profile, or (nil, nil) when none is stored.
func (s *Store) User() (*UserProfile, error) {
	raw, err := s.kv.GetItem(s.userKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var user UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: corrupt user record: %v", ErrStorageUnavailable, err)
	}
	return &user, nil
}

// SetUser caches the profile.
func (s *Store) SetUser(user UserProfile) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return s.kv.SetItem(s.userKey, string(raw))
}

// ClearUser removes the cached profile.
func (s *Store) ClearUser() error {
	return s.kv.RemoveItem(s.userKey)
}

// Clear removes both keys. The first failure is returned but both removals
// are attempted.
func (s *Store) Clear() error {
	tokenErr := s.kv.RemoveItem(s.tokenKey)
	userErr := s.kv.RemoveItem(s.userKey)
	if tokenErr != nil {
		return tokenErr
	}
	return userErr
}
