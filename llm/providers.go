package llm

// Provider names accepted by the gateway. These are the only selectable
// judge backends; the game never sees provider-specific detail beyond the
// name it stores in settings.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Providers returns the selectable provider names in display order.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderGroq, ProviderGemini}
}

// KnownProvider reports whether name is a selectable provider.
func KnownProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderGroq, ProviderGemini:
		return true
	}
	return false
}
