package notify

import (
	"errors"
	"log"
)

// Outbound alert channels a user can opt into.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// RenderedNotification is a fully composed alert: the pipeline renders it,
// a Dispatcher only delivers it.
type RenderedNotification struct {
	To             string // email address
	TelegramChatID string
	Channels       []string
	Subject        string
	HTMLBody       string
	TextBody       string
}

// Dispatcher delivers a rendered notification. The pipeline treats delivery
// as an injected capability: failures are logged by the caller, never
// retried.
type Dispatcher interface {
	Send(n *RenderedNotification) error
}

// MultiDispatcher routes a notification to each channel the recipient opted
// into. An empty channel list falls back to email. Send fails only when
// every attempted channel fails.
type MultiDispatcher struct {
	Email    Dispatcher
	Telegram Dispatcher
}

func (d *MultiDispatcher) Send(n *RenderedNotification) error {
	channels := n.Channels
	if len(channels) == 0 {
		channels = []string{ChannelEmail}
	}

	delivered := false
	var lastErr error
	for _, ch := range channels {
		var target Dispatcher
		switch ch {
		case ChannelEmail:
			target = d.Email
		case ChannelTelegram:
			target = d.Telegram
		default:
			log.Printf("WARNING: Unknown notify channel %q", ch)
			continue
		}
		if target == nil {
			continue
		}
		if err := target.Send(n); err != nil {
			log.Printf("ERROR: Dispatch via %s failed: %v", ch, err)
			lastErr = err
			continue
		}
		delivered = true
	}

	if !delivered {
		if lastErr != nil {
			return lastErr
		}
		return errors.New("no dispatch channel available")
	}
	return nil
}
