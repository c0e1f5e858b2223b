// Package game owns the mutable gatekeeper session and the progression
// rules: which level is active, which levels are unlocked, the transcript of
// the current attempt, and the win flag. All mutation funnels through the
// Session's methods; the UI layer only reads.
package game

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rgann/gatekeeper/catalog"
	"github.com/rgann/gatekeeper/llm"
)

// Gateway submits a conversation to a judge provider. *gateway.Gateway
// implements it; tests substitute fakes.
type Gateway interface {
	Submit(ctx context.Context, transcript []llm.Message, instruction, credential, provider string) (string, error)
}

// Persister stores the durable slice of a session across restarts: the
// unlocked-level ceiling and the provider configuration, plus a log of
// judged attempts. The transcript, current level, and win flag are
// deliberately not persisted. *store.Store implements it.
type Persister interface {
	LoadProgress(ctx context.Context) (maxUnlocked int, credential, provider string, err error)
	SaveProgress(ctx context.Context, maxUnlocked int, credential, provider string) error
	RecordAttempt(ctx context.Context, level int, provider string, passed bool) error
}

// ErrConcurrentEvaluation is returned when EvaluateTurn is invoked while a
// prior call is still pending. The UI must gate input until a turn resolves;
// hitting this is a caller bug, not a player-reachable condition.
var ErrConcurrentEvaluation = errors.New("evaluation already in flight")

// ErrSessionWon is returned by turn operations after the game is won.
var ErrSessionWon = errors.New("session already won")

// Session is the per-player game state.
type Session struct {
	mu          sync.Mutex
	currentLvl  int
	maxUnlocked int
	transcript  []llm.Message
	credential  string
	provider    string
	won         bool
	evaluating  bool
	attempts    map[int]int

	gw      Gateway
	persist Persister
	logger  zerolog.Logger
}

// NewSession creates a session at level 1. If persist is non-nil, the
// unlocked ceiling, credential, and provider are restored from it; a fresh
// session always starts at level 1 with an empty transcript regardless of
// prior progress.
func NewSession(gw Gateway, persist Persister, logger zerolog.Logger) *Session {
	s := &Session{
		currentLvl:  1,
		maxUnlocked: 1,
		provider:    llm.ProviderOpenAI,
		attempts:    make(map[int]int),
		gw:          gw,
		persist:     persist,
		logger:      logger.With().Str("component", "session").Logger(),
	}

	if persist != nil {
		maxUnlocked, credential, provider, err := persist.LoadProgress(context.Background())
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to restore progress, starting fresh")
			return s
		}
		if maxUnlocked >= 1 && maxUnlocked <= catalog.Count() {
			s.maxUnlocked = maxUnlocked
		}
		s.credential = credential
		if llm.KnownProvider(provider) {
			s.provider = provider
		}
	}

	return s
}

// CurrentLevel returns the active level id.
func (s *Session) CurrentLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLvl
}

// MaxUnlockedLevel returns the highest reachable level id.
func (s *Session) MaxUnlockedLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxUnlocked
}

// Won reports whether the final level has been passed.
func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.won
}

// Provider returns the configured provider name.
func (s *Session) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// CredentialConfigured reports whether an API key is set.
func (s *Session) CredentialConfigured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

// Transcript returns a copy of the current attempt's conversation. Callers
// must not rely on it reflecting later mutations.
func (s *Session) Transcript() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Attempts returns the number of judged turns on the given level this
// session.
func (s *Session) Attempts(level int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[level]
}

// CurrentDescriptor returns the catalog entry for the active level.
func (s *Session) CurrentDescriptor() catalog.Level {
	s.mu.Lock()
	id := s.currentLvl
	s.mu.Unlock()
	lvl, err := catalog.Lookup(id)
	if err != nil {
		// The session never leaves catalog bounds, so this is unreachable
		// short of memory corruption.
		panic(err)
	}
	return lvl
}

// SelectLevel switches the active level. Selecting a level above the
// unlocked ceiling is a silent no-op (it is a navigation guard, not an
// error); selecting outside catalog bounds returns catalog.ErrOutOfRange.
// On success the transcript is cleared.
func (s *Session) SelectLevel(id int) error {
	if id < 1 || id > catalog.Count() {
		return catalog.ErrOutOfRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.maxUnlocked {
		return nil
	}
	s.currentLvl = id
	s.transcript = nil
	s.logger.Debug().Int("level", id).Msg("Level selected")
	return nil
}

// SetCredential updates the stored API key. It takes effect on the next
// evaluated turn and never alters an in-flight request.
func (s *Session) SetCredential(credential string) {
	s.mu.Lock()
	s.credential = strings.TrimSpace(credential)
	s.mu.Unlock()
	s.saveProgress()
}

// SetProvider updates the stored provider selection. Unknown names are
// ignored.
func (s *Session) SetProvider(provider string) {
	if !llm.KnownProvider(provider) {
		s.logger.Warn().Str("provider", provider).Msg("Ignoring unknown provider")
		return
	}
	s.mu.Lock()
	s.provider = provider
	s.mu.Unlock()
	s.saveProgress()
}

// Reset returns the session to its initial state: level 1, nothing beyond
// level 1 unlocked, empty transcript, win flag cleared. The stored
// credential and provider are kept; clearing those is a separate, explicit
// settings action.
func (s *Session) Reset() {
	s.mu.Lock()
	s.currentLvl = 1
	s.maxUnlocked = 1
	s.transcript = nil
	s.won = false
	s.attempts = make(map[int]int)
	s.mu.Unlock()

	s.logger.Info().Msg("Session reset")
	s.saveProgress()
}

// saveProgress writes the durable slice of state. Persistence failures are
// logged, never surfaced: losing a save must not break the running game.
func (s *Session) saveProgress() {
	if s.persist == nil {
		return
	}
	s.mu.Lock()
	maxUnlocked, credential, provider := s.maxUnlocked, s.credential, s.provider
	s.mu.Unlock()
	if err := s.persist.SaveProgress(context.Background(), maxUnlocked, credential, provider); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist progress")
	}
}
