package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rgann/gatekeeper/catalog"
	"github.com/rgann/gatekeeper/llm"
)

// Outcome classifies one evaluated turn.
type Outcome int

const (
	// OutcomeDenied means the judge replied without the pass marker. The
	// reply is in the transcript; no level state changed.
	OutcomeDenied Outcome = iota
	// OutcomeError means the gateway failed. The failure is in the
	// transcript as a diagnostic entry; no level state changed.
	OutcomeError
	// OutcomePassed means the judge granted access and the session advanced
	// one level with a cleared transcript.
	OutcomePassed
	// OutcomeWon means the final level was passed.
	OutcomeWon
)

// ErrEmptyMessage is returned when a recorded message is blank after
// trimming.
var ErrEmptyMessage = errors.New("message is empty")

// RecordUserMessage appends the player's message to the transcript and
// reports whether a turn should be evaluated. When no credential is
// configured, a diagnostic entry is appended instead of the message and
// ready is false; the player's input is never silently dropped into a
// request that cannot succeed.
func (s *Session) RecordUserMessage(text string) (ready bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.won {
		return false, ErrSessionWon
	}
	if s.credential == "" {
		s.transcript = append(s.transcript, llm.NewMessage(llm.RoleSystem,
			"API key required. Add it in settings to play."))
		return false, nil
	}
	s.transcript = append(s.transcript, llm.NewMessage(llm.RoleUser, trimmed))
	return true, nil
}

// EvaluateTurn submits the transcript to the judge and applies the verdict.
//
// The turn is a PASS if and only if the reply contains catalog.PassMarker as
// an exact substring. On a pass below the final level the session advances:
// the next level is unlocked, becomes current, and the transcript clears. On
// a pass at the final level the session is won. Any other reply, including
// an explicit deny, changes nothing beyond the appended assistant entry.
//
// Gateway failures are non-fatal: they land in the transcript as a
// role-system diagnostic and the session stays playable. The returned error
// is reserved for contract violations (re-entrant call, game already won).
func (s *Session) EvaluateTurn(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.won {
		s.mu.Unlock()
		return OutcomeError, ErrSessionWon
	}
	if s.evaluating {
		s.mu.Unlock()
		return OutcomeError, ErrConcurrentEvaluation
	}
	s.evaluating = true
	level := s.currentLvl
	credential := s.credential
	provider := s.provider
	transcript := make([]llm.Message, len(s.transcript))
	copy(transcript, s.transcript)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.evaluating = false
		s.mu.Unlock()
	}()

	descriptor, err := catalog.Lookup(level)
	if err != nil {
		return OutcomeError, err
	}

	reply, err := s.gw.Submit(ctx, transcript, descriptor.Instruction, credential, provider)
	if err != nil {
		s.appendDiagnostic(err)
		return OutcomeError, nil
	}

	return s.applyVerdict(ctx, level, provider, reply), nil
}

// appendDiagnostic surfaces a gateway failure as a visible transcript entry.
func (s *Session) appendDiagnostic(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, llm.NewMessage(llm.RoleSystem,
		fmt.Sprintf("Error: %s", errorText(err))))
}

// errorText prefers the normalized message over the raw provider chain.
func errorText(err error) string {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return llmErr.Message
	}
	return err.Error()
}

func (s *Session) applyVerdict(ctx context.Context, level int, provider, reply string) Outcome {
	passed := strings.Contains(reply, catalog.PassMarker)

	s.mu.Lock()
	s.transcript = append(s.transcript, llm.NewMessage(llm.RoleAssistant, reply))
	s.attempts[level]++

	outcome := OutcomeDenied
	if passed {
		if level >= catalog.Count() {
			s.won = true
			outcome = OutcomeWon
		} else {
			next := level + 1
			if next > s.maxUnlocked {
				s.maxUnlocked = next
			}
			s.currentLvl = next
			s.transcript = nil
			outcome = OutcomePassed
		}
	}
	s.mu.Unlock()

	s.logger.Info().
		Int("level", level).
		Str("provider", provider).
		Bool("passed", passed).
		Msg("Turn judged")

	if s.persist != nil {
		if err := s.persist.RecordAttempt(ctx, level, provider, passed); err != nil {
			s.logger.Error().Err(err).Msg("Failed to record attempt")
		}
	}
	if passed {
		s.saveProgress()
	}

	return outcome
}
