package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreTokensRoundTrip(t *testing.T) {
	s := NewStore(NewMemoryKV(), "", "")

	if err := s.SetTokens(SessionTokens{AccessToken: "A", RefreshToken: "B"}); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	got, err := s.Tokens()
	if err != nil {
		t.Fatalf("Tokens failed: %v", err)
	}
	if got == nil || got.AccessToken != "A" || got.RefreshToken != "B" {
		t.Fatalf("unexpected tokens: %+v", got)
	}
}

func TestStoreTokensAbsent(t *testing.T) {
	s := NewStore(NewMemoryKV(), "", "")

	got, err := s.Tokens()
	if err != nil {
		t.Fatalf("Tokens on empty store failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absent tokens, got %+v", got)
	}
}

func TestStoreRejectsPartialTokens(t *testing.T) {
	s := NewStore(NewMemoryKV(), "", "")

	for _, pair := range []SessionTokens{
		{AccessToken: "A"},
		{RefreshToken: "B"},
		{},
	} {
		if err := s.SetTokens(pair); !errors.Is(err, ErrPartialTokens) {
			t.Fatalf("expected ErrPartialTokens for %+v, got %v", pair, err)
		}
	}

	// Nothing may have been written.
	got, err := s.Tokens()
	if err != nil || got != nil {
		t.Fatalf("expected store untouched, got tokens=%+v err=%v", got, err)
	}
}

func TestStoreCorruptTokenRecord(t *testing.T) {
	kv := NewMemoryKV()
	if err := kv.SetItem(DefaultTokenKey, "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	s := NewStore(kv, "", "")
	if _, err := s.Tokens(); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestStoreUserRoundTripAndClear(t *testing.T) {
	s := NewStore(NewMemoryKV(), "", "")

	user := UserProfile{
		ID:    "u1",
		Email: "alice@example.com",
		Extra: map[string]string{"theme": "dark"},
	}
	if err := s.SetUser(user); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}

	got, err := s.User()
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	if got == nil || got.ID != "u1" || got.Extra["theme"] != "dark" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if err := s.SetTokens(SessionTokens{AccessToken: "A", RefreshToken: "B"}); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if tokens, err := s.Tokens(); err != nil || tokens != nil {
		t.Fatalf("expected tokens cleared, got %+v err=%v", tokens, err)
	}
	if user, err := s.User(); err != nil || user != nil {
		t.Fatalf("expected user cleared, got %+v err=%v", user, err)
	}
}

func TestProfilePatchShallowMerge(t *testing.T) {
	p := UserProfile{ID: "u1", Email: "old@example.com", Name: "Alice"}

	email := "new@example.com"
	p.Apply(ProfilePatch{
		Email: &email,
		Extra: map[string]string{"locale": "en"},
	})

	if p.Email != "new@example.com" {
		t.Fatalf("expected email updated, got %q", p.Email)
	}
	if p.Name != "Alice" {
		t.Fatalf("expected untouched field preserved, got %q", p.Name)
	}
	if p.Extra["locale"] != "en" {
		t.Fatalf("expected extra merged, got %+v", p.Extra)
	}
}

func TestFileKVDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := NewStore(NewFileKV(path), "", "")
	if err := first.SetTokens(SessionTokens{AccessToken: "A", RefreshToken: "B"}); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if err := first.SetUser(UserProfile{ID: "u1"}); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}

	// Fresh store over the same file simulates a process restart.
	second := NewStore(NewFileKV(path), "", "")
	tokens, err := second.Tokens()
	if err != nil {
		t.Fatalf("Tokens after restart failed: %v", err)
	}
	if tokens == nil || tokens.AccessToken != "A" {
		t.Fatalf("expected persisted tokens, got %+v", tokens)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 perms on credential file, got %o", perm)
	}
}

func TestFileKVMissingFileIsAbsent(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "never-written.json"))

	if _, err := kv.GetItem("anything"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := kv.RemoveItem("anything"); err != nil {
		t.Fatalf("expected remove on missing file to be a no-op, got %v", err)
	}
}

func TestFileKVCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	kv := NewFileKV(path)
	if _, err := kv.GetItem("k"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
