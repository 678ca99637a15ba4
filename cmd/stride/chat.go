// ABOUTME: Chat, conversation, and export subcommands for the stride CLI
// ABOUTME: One-shot and REPL chat with streamed replies, plus transcript output

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/stridecoach/stride/internal/store"
)

// cmdChat provides one-shot or interactive chat with the coach
func cmdChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	conversationID := fs.String("conversation", "", "continue an existing conversation")
	goalID := fs.String("goal", "", "attach a new conversation to a goal")
	title := fs.String("title", "", "title for a new conversation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	convID := *conversationID
	if convID == "" {
		conv, err := a.session.StartConversation(ctx, *goalID, *title)
		if err != nil {
			return err
		}
		convID = conv.ID
		a.logger.Debug("conversation created", "conversation_id", convID)
	} else if *goalID != "" {
		return fmt.Errorf("--goal only applies to new conversations")
	}

	if fs.NArg() > 0 {
		// One-shot mode: send message and stream the reply
		message := strings.Join(fs.Args(), " ")
		return sendTurn(ctx, a, convID, message)
	}

	return chatREPL(ctx, a, convID)
}

// sendTurn sends one message and prints the reply as it streams
func sendTurn(ctx context.Context, a *app, convID, message string) error {
	green := color.New(color.FgGreen)
	green.Print("coach> ")

	_, err := a.session.Send(ctx, convID, message, func(chunk string) {
		fmt.Print(chunk)
	})
	fmt.Println()
	return err
}

// chatREPL runs an interactive read-eval-print loop
func chatREPL(ctx context.Context, a *app, convID string) error {
	cyan := color.New(color.FgCyan)
	cyan.Printf("Chatting in conversation %s (Ctrl+D to exit)\n\n", shortID(convID))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1024*1024) // 1MB max input

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		if err := sendTurn(ctx, a, convID, line); err != nil {
			color.Red("Error: %v\n", err)
			if ctx.Err() != nil {
				return nil
			}
		}
		fmt.Println()
	}

	fmt.Println("\nBye!")
	return scanner.Err()
}

// cmdConversations lists conversations, optionally for one goal
func cmdConversations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("conversations", flag.ContinueOnError)
	goalID := fs.String("goal", "", "only conversations for this goal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	convs, err := a.session.Conversations(ctx, *goalID)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Println("No conversations yet. Start one with `stride chat`")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tGOAL\tLAST ACTIVITY")
	for _, c := range convs {
		goal := "-"
		if c.GoalID != nil {
			goal = shortID(*c.GoalID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(c.ID), c.DisplayTitle(), goal,
			c.UpdatedAt.Local().Format("Jan 2 15:04"))
	}
	return w.Flush()
}

// cmdHistory prints a conversation transcript to the terminal
func cmdHistory(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: stride history <conversation-id>")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	messages, err := a.session.History(ctx, args[0])
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	for _, msg := range messages {
		if msg.Role == store.RoleUser {
			cyan.Print("you> ")
		} else {
			green.Print("coach> ")
		}
		fmt.Println(msg.Content)
		fmt.Println()
	}

	input, output, err := a.store.ConversationUsage(ctx, args[0])
	if err == nil && (input > 0 || output > 0) {
		color.New(color.FgHiBlack).Printf("(%d input tokens, %d output tokens)\n", input, output)
	}
	return nil
}

// cmdExport writes a conversation transcript as Markdown or HTML
func cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "markdown", "output format: markdown or html")
	outPath := fs.String("o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: stride export [--format markdown|html] [-o file] <conversation-id>")
	}
	convID := fs.Arg(0)

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var out []byte
	switch *format {
	case "markdown", "md":
		md, err := a.exporter.Markdown(ctx, convID)
		if err != nil {
			return err
		}
		out = []byte(md)
	case "html":
		page, err := a.exporter.HTML(ctx, convID)
		if err != nil {
			return err
		}
		out = page
	default:
		return fmt.Errorf("unknown format: %s", *format)
	}

	if *outPath == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	color.Green("Wrote %s\n", *outPath)
	return nil
}
