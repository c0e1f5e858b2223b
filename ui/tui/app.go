// Package tui is the terminal front end for the gatekeeper game. It is a
// pure presentation layer: it reads session state, funnels every mutation
// through the session's operations, and gates input while a turn is being
// judged.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gen2brain/beeep"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/rgann/gatekeeper/catalog"
	"github.com/rgann/gatekeeper/game"
	"github.com/rgann/gatekeeper/store"
)

// evalTimeout bounds one judged turn. The game core enforces no timeout of
// its own; an aborted call surfaces as a transport failure in the transcript.
const evalTimeout = 60 * time.Second

// App represents the terminal UI application.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	header *tview.TextView
	levels *tview.List
	chat   *tview.TextView
	input  *tview.InputField
	status *tview.TextView

	session *game.Session
	history *store.Store // attempt history, read-only; may be nil

	notifications bool
	logger        zerolog.Logger
}

// NewApp creates the application around an existing session. history may be
// nil when no database is available; the level list then omits attempt
// counts.
func NewApp(logger zerolog.Logger, session *game.Session, history *store.Store, notifications bool) *App {
	return &App{
		app:           tview.NewApplication(),
		pages:         tview.NewPages(),
		session:       session,
		history:       history,
		notifications: notifications,
		logger:        logger.With().Str("component", "tui").Logger(),
	}
}

// Run sets up the UI and runs the application main loop.
func (a *App) Run() error {
	a.setupUI()
	if a.session.Won() {
		a.showWonPage()
	}
	return a.app.SetRoot(a.pages, true).Run()
}

func (a *App) setupUI() {
	a.header = tview.NewTextView()
	a.header.SetDynamicColors(true).SetBorder(true)

	a.levels = tview.NewList()
	a.levels.ShowSecondaryText(true)
	a.levels.SetBorder(true).SetTitle("Levels (s: settings, r: reset, q: quit)")
	a.levels.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Rune() {
		case 's':
			a.showSettings()
			return nil
		case 'r':
			a.confirmReset()
			return nil
		case 'q':
			a.app.Stop()
			return nil
		}
		if ev.Key() == tcell.KeyTab {
			a.app.SetFocus(a.input)
			return nil
		}
		return ev
	})

	a.chat = tview.NewTextView()
	a.chat.SetDynamicColors(true).
		SetWordWrap(true).
		SetBorder(true).
		SetTitle("Transcript")
	a.chat.SetScrollable(true)

	a.status = tview.NewTextView()
	a.status.SetDynamicColors(true)

	a.input = tview.NewInputField()
	a.input.SetLabel("You: ").
		SetPlaceholder("Enter your prompt...")
	a.input.SetBorder(true)
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.handleSend()
		}
	})
	a.input.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyTab {
			a.app.SetFocus(a.levels)
			return nil
		}
		return ev
	})

	main := tview.NewFlex().
		AddItem(a.levels, 36, 0, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(a.header, 5, 0, false).
			AddItem(a.chat, 0, 1, false).
			AddItem(a.status, 1, 0, false).
			AddItem(a.input, 3, 0, true), 0, 1, true)

	a.pages.AddPage("main", main, true, true)

	a.refreshLevels()
	a.renderHeader()
	a.renderTranscript()
	a.app.SetFocus(a.input)
}

// refreshLevels rebuilds the level list from the session's unlocked ceiling
// and the persisted attempt history.
func (a *App) refreshLevels() {
	counts := map[int]int{}
	if a.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		loaded, err := a.history.AttemptCounts(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Failed to load attempt counts")
		} else {
			counts = loaded
		}
	}

	maxUnlocked := a.session.MaxUnlockedLevel()
	current := a.session.CurrentLevel()

	a.levels.Clear()
	for _, lvl := range catalog.All() {
		id := lvl.ID
		label := lvl.Title
		secondary := fmt.Sprintf("%d attempts", counts[id])
		if id == current {
			label = "> " + label
		}
		if id > maxUnlocked {
			a.levels.AddItem("[gray]"+label+" (locked)[-]", "", 0, nil)
			continue
		}
		a.levels.AddItem(label, secondary, rune('0'+id), func() {
			if err := a.session.SelectLevel(id); err != nil {
				a.logger.Error().Err(err).Int("level", id).Msg("Level selection failed")
				return
			}
			a.renderHeader()
			a.renderTranscript()
			a.refreshLevels()
			a.app.SetFocus(a.input)
		})
	}
}

func (a *App) renderHeader() {
	lvl := a.session.CurrentDescriptor()
	a.header.SetText(fmt.Sprintf("[::b]%s[-:-:-]\n[gray]%s[-]\nPROMPT_ATTEMPTS: %d",
		tview.Escape(lvl.Title), tview.Escape(lvl.Subtitle), a.session.Attempts(lvl.ID)))
}

func (a *App) setStatus(text string) {
	a.status.SetText(text)
}

// notify fires a desktop notification; failures are logged and ignored.
func (a *App) notify(title, body string) {
	if !a.notifications {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		a.logger.Debug().Err(err).Msg("Desktop notification failed")
	}
}

// showWonPage swaps in the end screen. Play again resets progression but
// keeps the stored credential and provider.
func (a *App) showWonPage() {
	modal := tview.NewModal().
		SetText("LEGEND STATUS ACHIEVED\n\nYou have outsmarted the Gatekeeper.\nYou are no longer the seeker. You are the Wizard.").
		AddButtons([]string{"Play again", "Quit"}).
		SetDoneFunc(func(_ int, label string) {
			if label == "Play again" {
				a.session.Reset()
				a.pages.RemovePage("won")
				a.renderHeader()
				a.renderTranscript()
				a.refreshLevels()
				a.app.SetFocus(a.input)
				return
			}
			a.app.Stop()
		})
	a.pages.AddPage("won", modal, true, true)
}

func (a *App) confirmReset() {
	modal := tview.NewModal().
		SetText("Reset all progress?\nYour API key and provider choice are kept.").
		AddButtons([]string{"Reset", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.pages.RemovePage("confirm-reset")
			if label == "Reset" {
				a.session.Reset()
				a.renderHeader()
				a.renderTranscript()
				a.refreshLevels()
			}
			a.app.SetFocus(a.input)
		})
	a.pages.AddPage("confirm-reset", modal, true, true)
}
