// ABOUTME: Interactive terminal loop over the send pipeline
// ABOUTME: Plain lines are sent to the agent; slash commands manage conversations

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/agent"
	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/conversation"
	"github.com/2389/coven-chat/internal/markup"
)

const indent = "  "

var (
	userStyle      = color.New(color.FgGreen, color.Bold)
	assistantStyle = color.New(color.FgCyan, color.Bold)
	errorStyle     = color.New(color.FgRed)
	hintStyle      = color.New(color.FgHiBlack)
)

type repl struct {
	svc    *conversation.Service
	in     io.Reader
	out    io.Writer
	sender string
}

func newREPL(svc *conversation.Service, in io.Reader, out io.Writer, sender string) *repl {
	if sender == "" {
		sender = "You"
	}
	return &repl{svc: svc, in: in, out: out, sender: sender}
}

// run reads lines until EOF, a quit command or ctx is canceled.
func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)

	for {
		fmt.Fprint(r.out, "> ")

		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		r.handle(ctx, input)
		fmt.Fprintln(r.out)
	}
}

func (r *repl) handle(ctx context.Context, input string) {
	if !strings.HasPrefix(input, "/") {
		r.send(ctx, input)
		return
	}

	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/new":
		r.svc.NewConversation()
		fmt.Fprintln(r.out, "Started a new conversation.")
	case "/list":
		r.listConversations()
	case "/use":
		r.useConversation(arg)
	case "/delete":
		r.deleteConversation(arg)
	case "/retry":
		r.retry(ctx)
	case "/sample":
		r.setSample(arg)
	case "/prompts":
		r.prompts(ctx, arg)
	case "/history":
		r.history()
	case "/help":
		r.printHelp()
	default:
		fmt.Fprintf(r.out, "Unknown command: %s (try /help)\n", cmd)
	}
}

func (r *repl) send(ctx context.Context, text string) {
	hintStyle.Fprintln(r.out, "thinking...")
	res, err := r.svc.Submit(ctx, text, "")
	r.report(res, err)
}

func (r *repl) retry(ctx context.Context) {
	conv, ok := r.svc.Store().ActiveConversation()
	if !ok {
		fmt.Fprintln(r.out, "Nothing to retry.")
		return
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if msg := conv.Messages[i]; msg.Retryable() {
			hintStyle.Fprintln(r.out, "retrying...")
			res, err := r.svc.RetryMessage(ctx, msg.ID)
			r.report(res, err)
			return
		}
	}
	fmt.Fprintln(r.out, "Nothing to retry.")
}

func (r *repl) report(res *conversation.SendResult, err error) {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		fmt.Fprintln(r.out, "Nothing to send.")
	case errors.Is(err, conversation.ErrSendInFlight):
		fmt.Fprintln(r.out, "Still waiting for the previous reply.")
	case err != nil:
		errorStyle.Fprintf(r.out, "[error] %v\n", err)
	default:
		r.printMessage(res.Reply)
	}
}

func (r *repl) printMessage(msg chat.Message) {
	stamp := msg.Timestamp.Format("15:04")
	switch msg.Role {
	case chat.RoleUser:
		userStyle.Fprint(r.out, r.sender)
		hintStyle.Fprintf(r.out, " %s\n", stamp)
		fmt.Fprintf(r.out, "%s%s\n", indent, msg.Content)
	case chat.RoleAssistant:
		assistantStyle.Fprint(r.out, agent.AgentName)
		hintStyle.Fprintf(r.out, " %s\n", stamp)
		_ = markup.WriteTerminal(r.out, markup.Render(msg.Content), indent)
	default:
		errorStyle.Fprintf(r.out, "%s%s\n", indent, msg.Content)
		if msg.Retryable() {
			hintStyle.Fprintf(r.out, "%s(type /retry to try again)\n", indent)
		}
	}
}

func (r *repl) listConversations() {
	convs := r.svc.Store().VisibleConversations()
	if len(convs) == 0 {
		fmt.Fprintln(r.out, "No conversations yet.")
		return
	}
	if r.svc.Store().ShowingSample() {
		hintStyle.Fprintln(r.out, "(sample conversations)")
	}
	activeID := r.svc.Store().ActiveID()
	for i, c := range convs {
		marker := " "
		if c.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %d. %s ", marker, i+1, c.Title)
		hintStyle.Fprintf(r.out, "(%d messages, %s)\n", len(c.Messages), c.LastActivity().Format("Jan 2 15:04"))
	}
}

// resolve maps a 1-based list index or a conversation id to an id.
func (r *repl) resolve(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	convs := r.svc.Store().VisibleConversations()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(convs) {
			return "", false
		}
		return convs[n-1].ID, true
	}
	for _, c := range convs {
		if c.ID == arg {
			return c.ID, true
		}
	}
	return "", false
}

func (r *repl) useConversation(arg string) {
	id, ok := r.resolve(arg)
	if !ok || !r.svc.SelectConversation(id) {
		fmt.Fprintf(r.out, "No conversation %q. Use /list to see them.\n", arg)
		return
	}
	conv, _ := r.svc.Store().Conversation(id)
	fmt.Fprintf(r.out, "Now in %q.\n", conv.Title)
}

func (r *repl) deleteConversation(arg string) {
	if r.svc.Store().ShowingSample() {
		fmt.Fprintln(r.out, "Sample conversations are read-only.")
		return
	}
	id, ok := r.resolve(arg)
	if !ok || !r.svc.DeleteConversation(id) {
		fmt.Fprintf(r.out, "No conversation %q. Use /list to see them.\n", arg)
		return
	}
	fmt.Fprintln(r.out, "Conversation deleted.")
}

func (r *repl) setSample(arg string) {
	switch arg {
	case "on":
		r.svc.SetSampleView(true)
	case "off":
		r.svc.SetSampleView(false)
	default:
		fmt.Fprintln(r.out, "Usage: /sample on|off")
		return
	}
	if r.svc.Store().ShowingSample() {
		fmt.Fprintln(r.out, "Showing sample conversations.")
	} else {
		fmt.Fprintf(r.out, "Sample data %s.\n", arg)
	}
}

func (r *repl) prompts(ctx context.Context, arg string) {
	if arg == "" {
		for i, p := range chat.SuggestedPrompts {
			fmt.Fprintf(r.out, "  %d. %s\n", i+1, p)
		}
		hintStyle.Fprintln(r.out, "Send one with /prompts <n>")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(chat.SuggestedPrompts) {
		fmt.Fprintf(r.out, "No prompt %q.\n", arg)
		return
	}
	prompt := chat.SuggestedPrompts[n-1]
	fmt.Fprintf(r.out, "%s%s\n", indent, prompt)
	r.send(ctx, prompt)
}

func (r *repl) history() {
	conv, ok := r.svc.Store().ActiveConversation()
	if !ok || len(conv.Messages) == 0 {
		fmt.Fprintln(r.out, "No messages yet.")
		return
	}
	assistantStyle.Fprintln(r.out, conv.Title)
	for _, msg := range conv.Messages {
		r.printMessage(msg)
	}
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  /new              Start a new conversation")
	fmt.Fprintln(r.out, "  /list             List conversations")
	fmt.Fprintln(r.out, "  /use <n|id>       Switch to a conversation")
	fmt.Fprintln(r.out, "  /delete <n|id>    Delete a conversation")
	fmt.Fprintln(r.out, "  /retry            Resend the last failed message")
	fmt.Fprintln(r.out, "  /sample on|off    Toggle the sample conversations")
	fmt.Fprintln(r.out, "  /prompts [n]      List or send a suggested prompt")
	fmt.Fprintln(r.out, "  /history          Show the current conversation")
	fmt.Fprintln(r.out, "  /help             Show this help")
	fmt.Fprintln(r.out, "  /quit             Exit (also /exit, /q)")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Anything else is sent to the agent.")
}
