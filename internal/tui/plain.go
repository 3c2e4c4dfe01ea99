package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atharv2823/BaatCheet/internal/chat"
	"github.com/atharv2823/BaatCheet/internal/provider"
	"github.com/atotto/clipboard"
)

// PlainREPL drives the chat loop over plain line-oriented IO. It is used
// when the terminal does not support raw mode or when --plain is set.
type PlainREPL struct {
	store      *chat.Store
	dispatcher *chat.Dispatcher
	in         *bufio.Scanner
	out        io.Writer
}

// NewPlainREPL creates a REPL reading from r and writing to w.
func NewPlainREPL(store *chat.Store, dispatcher *chat.Dispatcher, r io.Reader, w io.Writer) *PlainREPL {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &PlainREPL{store: store, dispatcher: dispatcher, in: s, out: w}
}

// Run reads utterances and commands until EOF or /quit.
func (p *PlainREPL) Run(ctx context.Context) error {
	fmt.Fprintln(p.out, "baatcheet (plain mode). Type /help for commands.")
	if active := p.store.Active(); active != nil && len(active.Messages) > 0 {
		p.printTranscript(active)
	}

	for {
		fmt.Fprint(p.out, "\n> ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return err
			}
			return nil
		}
		line := strings.TrimSpace(p.in.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := p.runCommand(line); quit {
				return nil
			}
			continue
		}

		if err := p.dispatcher.Submit(ctx, line); err != nil {
			fmt.Fprintf(p.out, "error: %s\n", err)
			continue
		}
		if reply, ok := latestAssistant(p.store.Active()); ok {
			fmt.Fprintf(p.out, "\n%s\n", reply)
		}
	}
}

// runCommand handles a slash command; returns true when the loop should end.
func (p *PlainREPL) runCommand(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(p.out, "/new            start a new chat")
		fmt.Fprintln(p.out, "/chats          list chats")
		fmt.Fprintln(p.out, "/open <id>      switch to a chat")
		fmt.Fprintln(p.out, "/delete <id>    delete a chat")
		fmt.Fprintln(p.out, "/copy           copy the latest reply to the clipboard")
		fmt.Fprintln(p.out, "/quit           exit")

	case "/new":
		if _, err := p.store.NewConversation(); err != nil {
			fmt.Fprintf(p.out, "error: %s\n", err)
			break
		}
		fmt.Fprintln(p.out, "started a new chat")

	case "/chats":
		convs := p.store.Conversations()
		if len(convs) == 0 {
			fmt.Fprintln(p.out, "no chats yet")
			break
		}
		activeID := p.store.ActiveID()
		for _, c := range convs {
			marker := " "
			if c.ID == activeID {
				marker = "*"
			}
			fmt.Fprintf(p.out, "%s %s  %s\n", marker, c.ID, chat.Label(c))
		}

	case "/open":
		if len(args) != 1 {
			fmt.Fprintln(p.out, "usage: /open <id>")
			break
		}
		p.store.SetActive(args[0])
		if active := p.store.Active(); active != nil && active.ID == args[0] {
			fmt.Fprintf(p.out, "opened: %s\n", chat.Label(active))
			p.printTranscript(active)
		} else {
			fmt.Fprintf(p.out, "no chat with id %s\n", args[0])
		}

	case "/delete":
		if len(args) != 1 {
			fmt.Fprintln(p.out, "usage: /delete <id>")
			break
		}
		if err := p.store.Delete(args[0]); err != nil {
			fmt.Fprintf(p.out, "error: %s\n", err)
			break
		}
		fmt.Fprintf(p.out, "deleted %s\n", args[0])

	case "/copy":
		reply, ok := latestAssistant(p.store.Active())
		if !ok {
			fmt.Fprintln(p.out, "nothing to copy")
			break
		}
		if err := clipboard.WriteAll(reply); err != nil {
			fmt.Fprintf(p.out, "error: clipboard: %s\n", err)
			break
		}
		fmt.Fprintln(p.out, "copied reply to clipboard")

	default:
		fmt.Fprintf(p.out, "unknown command %s (try /help)\n", cmd)
	}
	return false
}

func (p *PlainREPL) printTranscript(c *chat.Conversation) {
	for _, msg := range c.Messages {
		if msg.Role == provider.RoleUser {
			fmt.Fprintf(p.out, "\n> %s\n", msg.Content)
		} else {
			fmt.Fprintf(p.out, "\n%s\n", msg.Content)
		}
	}
}
