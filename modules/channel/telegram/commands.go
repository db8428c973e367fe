package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/flemzord/ghinline/internal/channel"
)

// botCommands is the menu registered with setMyCommands at start.
var botCommands = []BotCommand{
	{Command: "start", Description: "How to search GitHub from any chat"},
	{Command: "test", Description: "Check that the bot is working"},
	{Command: "status", Description: "Show the GitHub API rate limit"},
}

// startNotes prefix /start help when it is opened from an empty answer's button.
var startNotes = map[string]string{
	"not_found":    "No repositories matched that search.",
	"error":        "That search failed. Please try again in a moment.",
	"rate_limited": "You are searching too quickly. Wait a minute and try again.",
}

// parseCommand extracts "/cmd@bot arg" from a message. Commands addressed to
// another bot are ignored.
func parseCommand(msg *Message, botUsername string) (cmd, arg string, ok bool) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text, " ")
	name, target, addressed := strings.Cut(strings.TrimPrefix(head, "/"), "@")
	if addressed && !strings.EqualFold(target, botUsername) {
		return "", "", false
	}
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(rest), true
}

// handleMessage replies to bot commands. Other messages are ignored.
func (t *Telegram) handleMessage(ctx context.Context, msg *Message) {
	cmd, arg, ok := parseCommand(msg, t.botUsername())
	if !ok {
		return
	}

	sender := channel.Sender{ChatID: strconv.FormatInt(msg.Chat.ID, 10)}
	if msg.From != nil {
		sender.ID = strconv.FormatInt(msg.From.ID, 10)
		sender.Username = msg.From.Username
	}
	if !t.allowList.IsAllowed(sender) {
		t.logger.Debug("command dropped", "command", cmd, "sender", sender.ID, "error", channel.ErrDenied)
		return
	}

	reply := SendMessageRequest{ChatID: msg.Chat.ID}
	switch cmd {
	case "start":
		reply.Text = startText(t.botUsername(), arg)
		reply.ParseMode = ParseModeHTML
	case "test":
		reply.Text = "Bot is working! Try inline mode: @" + t.botUsername() + " Microsoft"
	case "status":
		reply.Text = t.statusText(ctx)
	default:
		return
	}

	t.metrics.RecordCommand(cmd)
	t.logger.Info("command received", "command", cmd, "chat", msg.Chat.ID)

	if _, err := t.client.SendMessage(ctx, reply); err != nil {
		t.logger.Error("sendMessage failed", "command", cmd, "error", err)
	}
}

// startText is the HTML usage help.
func startText(username, param string) string {
	var b strings.Builder
	if note, ok := startNotes[param]; ok {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	b.WriteString("GitHub Repository Search Bot\n\n")
	fmt.Fprintf(&b, "Bot username: <b>%s</b>\n\n", username)
	b.WriteString("Usage in any chat:\n")
	fmt.Fprintf(&b, "1. Type @%s username\n", username)
	fmt.Fprintf(&b, "2. Or @%s username/reponame\n\n", username)
	b.WriteString("Examples:\n")
	fmt.Fprintf(&b, "• @%s Microsoft\n", username)
	fmt.Fprintf(&b, "• @%s microsoft/vscode", username)
	return b.String()
}

// statusText asks GitHub for the core quota.
func (t *Telegram) statusText(ctx context.Context) string {
	const unavailable = "Unable to fetch rate limit status"
	if t.status == nil {
		return unavailable
	}
	rl := t.status.RateLimitStatus(ctx)
	if rl == nil {
		return unavailable
	}

	core := rl.Resources.Core
	return fmt.Sprintf("GitHub API Status:\n\nRemaining requests: %d/%d\nReset time: %s\n\nUsage: %d%%",
		core.Remaining, core.Limit,
		core.ResetTime().UTC().Format("15:04:05 UTC"),
		core.UsagePercent(),
	)
}
