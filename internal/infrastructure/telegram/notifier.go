package telegram

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier reports saved scripts to a Telegram chat through the bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// ScriptSaved sends an HTML summary of the persisted script.
func (n *Notifier) ScriptSaved(ctx context.Context, notice domain.SavedNotice) error {
	return n.sendMessage(ctx, formatNotice(notice))
}

// formatNotice renders the notice for parse_mode=HTML; the title is model output
// and must be escaped.
func formatNotice(notice domain.SavedNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(notice.Title))

	kind := notice.Variant
	if kind == "" {
		kind = "script"
	}
	fmt.Fprintf(&b, "New %s short saved\n", html.EscapeString(kind))
	fmt.Fprintf(&b, "%d segments, %.1fs of audio\n", notice.Segments, notice.AudioDuration)

	if len(notice.Speakers) > 0 {
		names := make([]string, 0, len(notice.Speakers))
		for _, s := range notice.Speakers {
			names = append(names, html.EscapeString(string(s)))
		}
		fmt.Fprintf(&b, "Voices: %s\n", strings.Join(names, ", "))
	}
	if notice.Thumbnails > 0 {
		fmt.Fprintf(&b, "Thumbnails: %d\n", notice.Thumbnails)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (n *Notifier) sendMessage(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	endpoint := n.apiBase + "/bot" + n.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}
