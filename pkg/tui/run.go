package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

// Run starts the chat page and blocks until the user quits.
func Run(ctx context.Context, session *chat.Session, completer chat.Completer, logger loggerpkg.Logger) error {
	m := NewModel(ctx, session, completer, logger)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
