package cmd

import (
	"fmt"

	"github.com/atharv2823/BaatCheet/internal/chat"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	chatsActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Bold(true)

	chatsIDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func newChatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List saved chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChats()
		},
	}
}

func runChats() error {
	cfg := initConfig()

	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	st, err := buildStorage(cfg, dataDir)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer st.Close()

	store := chat.NewStore(st)
	convs := store.Conversations()
	if len(convs) == 0 {
		fmt.Println("no chats yet")
		return nil
	}

	activeID := store.ActiveID()
	for _, c := range convs {
		line := fmt.Sprintf("%s  %s  (%d messages)",
			chatsIDStyle.Render(c.ID), chat.Label(c), len(c.Messages))
		if c.ID == activeID {
			fmt.Println(chatsActiveStyle.Render("* ") + line)
		} else {
			fmt.Println("  " + line)
		}
	}
	return nil
}
