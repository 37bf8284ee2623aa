package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WritePolicy decides what a failed audit write does to the authentication
// action it accompanies.
type WritePolicy int

const (
	// PolicyFailOpen logs the write failure and reports success to the
	// caller. The authentication action proceeds; the trail has a hole.
	PolicyFailOpen WritePolicy = iota
	// PolicyFailClosed propagates the write failure so the request handler
	// can refuse the authentication action.
	PolicyFailClosed
)

// Config controls a [Recorder].
type Config struct {
	Policy WritePolicy
}

// Recorder appends authentication events to a [Store]. Each Log* method
// writes exactly one entry tagged with the matching action. Recorders are
// safe for concurrent use when their Store is.
type Recorder struct {
	store  Store
	policy WritePolicy
	log    zerolog.Logger

	// overridable in tests
	now   func() time.Time
	newID func() string
}

// NewRecorder wires a Recorder to store. A nil-safe zerolog.Nop logger is
// acceptable; the logger only sees fail-open write failures.
func NewRecorder(store Store, cfg Config, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		policy: cfg.Policy,
		log:    logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Record is the caller-supplied portion of an [Entry]. ActorID stays empty
// when the attempt never resolved an identity. SourceIP and UserAgent fall
// back to values attached to ctx via [WithSourceIP] and [WithUserAgent].
// A zero OccurredAt defaults to write time.
type Record struct {
	ActorID    string
	SourceIP   string
	UserAgent  string
	Outcome    Outcome
	Details    map[string]string
	OccurredAt time.Time
}

// LogLoginAttempt appends one login entry.
func (r *Recorder) LogLoginAttempt(ctx context.Context, rec Record) (Entry, error) {
	return r.append(ctx, ActionLogin, rec)
}

// LogPasswordReset appends one password-reset entry.
func (r *Recorder) LogPasswordReset(ctx context.Context, rec Record) (Entry, error) {
	return r.append(ctx, ActionPasswordReset, rec)
}

// LogEmailVerification appends one email-verification entry.
func (r *Recorder) LogEmailVerification(ctx context.Context, rec Record) (Entry, error) {
	return r.append(ctx, ActionEmailVerification, rec)
}

func (r *Recorder) append(ctx context.Context, action Action, rec Record) (Entry, error) {
	switch rec.Outcome {
	case OutcomeSuccess, OutcomeFailure:
	default:
		return Entry{}, ErrInvalidRecord
	}

	now := r.now().UTC()
	occurredAt := rec.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	sourceIP := rec.SourceIP
	if sourceIP == "" {
		sourceIP = sourceIPFromContext(ctx)
	}
	userAgent := rec.UserAgent
	if userAgent == "" {
		userAgent = userAgentFromContext(ctx)
	}

	entry := Entry{
		ID:         r.newID(),
		ActorID:    rec.ActorID,
		Action:     action,
		SourceIP:   sourceIP,
		UserAgent:  userAgent,
		Outcome:    rec.Outcome,
		Details:    cloneDetails(rec.Details),
		OccurredAt: occurredAt.UTC(),
		CreatedAt:  now,
	}

	if err := r.store.Create(ctx, entry); err != nil {
		if r.policy == PolicyFailClosed {
			return Entry{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		r.log.Warn().
			Err(err).
			Str("action", string(action)).
			Str("outcome", string(rec.Outcome)).
			Msg("audit write failed, continuing fail-open")
	}

	return entry, nil
}

// cloneDetails keeps the stored entry independent of the caller's map.
func cloneDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}
