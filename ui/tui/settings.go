package tui

import (
	"github.com/rivo/tview"
	"github.com/samber/lo"

	"github.com/rgann/gatekeeper/llm"
)

// showSettings displays the credential and provider form. Values are pushed
// into the session on save; the session persists them.
func (a *App) showSettings() {
	apiKey := ""
	provider := a.session.Provider()

	providers := llm.Providers()
	initialIndex := lo.IndexOf(providers, provider)
	if initialIndex < 0 {
		initialIndex = 0
	}

	form := tview.NewForm()
	form.SetBorder(true).SetTitle("Settings (Esc: back)")

	keyLabel := "API Key"
	if a.session.CredentialConfigured() {
		keyLabel = "API Key (configured, leave blank to keep)"
	}
	form.AddPasswordField(keyLabel, "", 48, '*', func(text string) {
		apiKey = text
	})
	form.AddDropDown("Provider", providers, initialIndex, func(option string, _ int) {
		provider = option
	})

	dismiss := func() {
		a.pages.RemovePage("settings")
		a.renderHeader()
		a.renderTranscript()
		a.app.SetFocus(a.input)
	}

	form.AddButton("Save", func() {
		if apiKey != "" {
			a.session.SetCredential(apiKey)
		}
		a.session.SetProvider(provider)
		a.logger.Info().Str("provider", provider).Msg("Settings saved")
		dismiss()
	})
	form.AddButton("Clear API key", func() {
		a.session.SetCredential("")
		dismiss()
	})
	form.AddButton("Cancel", func() {
		dismiss()
	})
	form.SetCancelFunc(dismiss)

	// Center the form in a flex so it does not stretch full screen.
	centered := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(form, 13, 0, true).
			AddItem(nil, 0, 1, false), 64, 0, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("settings", centered, true, true)
	a.app.SetFocus(form)
}
