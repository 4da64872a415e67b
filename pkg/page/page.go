// Package page holds the static copy shared by the terminal and browser chat pages.
package page

const (
	Title            = "AI Chat Assistant"
	Subtitle         = "Chat with an AI assistant powered by RouteLLM"
	InputPlaceholder = "Type your message here..."
	Thinking         = "Thinking..."
	ClearLabel       = "Clear Chat"
	SettingsHeading  = "Settings"
	GuideHeading     = "Instructions"
	SecurityHeading  = "Security"
	SecurityNote     = "Your API key is read from the deployment secrets file or your local config file and is never committed to the repository."
)

// Instructions are the numbered usage steps shown in the sidebar.
var Instructions = []string{
	"Type your message in the chat input",
	"Press Enter or click Send",
	"The AI will respond to your message",
	"Continue the conversation naturally",
}
