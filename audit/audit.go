package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Action tags the kind of authentication event an [Entry] records.
type Action string

const (
	// ActionLogin records a credential login attempt.
	ActionLogin Action = "login"
	// ActionPasswordReset records a password reset request or confirmation.
	ActionPasswordReset Action = "password_reset"
	// ActionEmailVerification records an email verification attempt.
	ActionEmailVerification Action = "email_verification"
)

// Outcome is the result of the recorded attempt.
type Outcome string

const (
	// OutcomeSuccess marks a completed attempt.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure marks a rejected or errored attempt.
	OutcomeFailure Outcome = "failure"
)

// ErrStoreUnavailable wraps persistence failures from a [Store].
var ErrStoreUnavailable = errors.New("audit: store unavailable")

// ErrInvalidRecord is returned when a record is missing its outcome.
var ErrInvalidRecord = errors.New("audit: record must carry exactly one outcome")

// Entry is one immutable audit record. ActorID is empty when the attempt
// failed before identity resolution (an unknown login identifier, for
// example). OccurredAt is when the attempt happened; CreatedAt is when the
// entry was written.
type Entry struct {
	ID         string            `json:"id"`
	ActorID    string            `json:"actor_id,omitempty"`
	Action     Action            `json:"action"`
	SourceIP   string            `json:"source_ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Outcome    Outcome           `json:"outcome"`
	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Store is the append-only persistence contract. Create must treat the
// entry as final: no update or delete operation exists anywhere in this
// package's surface.
type Store interface {
	Create(ctx context.Context, entry Entry) error
}

// MemoryStore keeps entries in process memory. Useful for tests and for
// embedding where the trail is scraped by something else.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Create appends the entry.
func (m *MemoryStore) Create(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a snapshot copy in append order.
func (m *MemoryStore) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of appended entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type sourceIPContextKey struct{}
type userAgentContextKey struct{}

// WithSourceIP attaches the request's source IP to ctx. The [Recorder] uses
// it when the record itself carries no IP.
func WithSourceIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, sourceIPContextKey{}, ip)
}

// WithUserAgent attaches the request's User-Agent to ctx.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func sourceIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(sourceIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
