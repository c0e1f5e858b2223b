package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/rgann/gatekeeper/catalog"
	"github.com/rgann/gatekeeper/game"
	"github.com/rgann/gatekeeper/llm"
)

// handleSend records the input field's text and, when a turn is ready,
// evaluates it off the UI goroutine. Input stays disabled until the pending
// turn resolves; the session treats a second in-flight evaluation as a bug.
func (a *App) handleSend() {
	text := strings.TrimSpace(a.input.GetText())
	if text == "" {
		return
	}

	ready, err := a.session.RecordUserMessage(text)
	if err != nil {
		if errors.Is(err, game.ErrEmptyMessage) {
			return
		}
		a.logger.Error().Err(err).Msg("Failed to record message")
		return
	}

	a.input.SetText("")
	a.renderTranscript()
	if !ready {
		// A diagnostic entry was appended instead (no credential configured).
		return
	}

	a.input.SetDisabled(true)
	a.setStatus("[purple]The gatekeeper considers...[-]")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
		defer cancel()

		outcome, evalErr := a.session.EvaluateTurn(ctx)

		a.app.QueueUpdateDraw(func() {
			a.input.SetDisabled(false)
			a.setStatus("")
			if evalErr != nil {
				a.logger.Error().Err(evalErr).Msg("Turn evaluation failed")
			}

			a.renderTranscript()
			a.renderHeader()
			a.refreshLevels()

			switch outcome {
			case game.OutcomePassed:
				a.notify("Access granted", fmt.Sprintf("Level %d unlocked", a.session.CurrentLevel()))
			case game.OutcomeWon:
				a.notify("Access granted", "You have outsmarted the Gatekeeper")
				a.showWonPage()
			case game.OutcomeDenied, game.OutcomeError:
				// Reply or diagnostic is already in the transcript.
			}

			a.app.SetFocus(a.input)
		})
	}()
}

// renderTranscript redraws the chat view from the session transcript.
// Verdict coloring matches the reply markers the personas emit.
func (a *App) renderTranscript() {
	transcript := a.session.Transcript()

	var b strings.Builder
	if len(transcript) == 0 {
		b.WriteString("[gray::i]\"Speak, seeker. But choose your words wisely.\"[-:-:-]\n")
	}

	for _, msg := range transcript {
		switch msg.Role {
		case llm.RoleUser:
			fmt.Fprintf(&b, "[white::b]You:[-:-:-] %s\n\n", tview.Escape(msg.Content))
		case llm.RoleAssistant:
			color := "purple"
			if strings.Contains(msg.Content, catalog.PassMarker) {
				color = "green"
			} else if strings.Contains(msg.Content, catalog.DenyMarker) {
				color = "red"
			}
			fmt.Fprintf(&b, "[%s::b]Gatekeeper:[-:-:-] [%s]%s[-]\n\n", color, color, tview.Escape(msg.Content))
		case llm.RoleSystem:
			fmt.Fprintf(&b, "[red]%s[-]\n\n", tview.Escape(msg.Content))
		}
	}

	a.chat.SetText(b.String())
	a.chat.ScrollToEnd()
}
