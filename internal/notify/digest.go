package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"traderlink/backend/internal/config"
)

const digestTemplate = `<html>
<body>
  <p>Hi {{.RecipientName}},</p>
  <p>{{.Intro}}</p>
  <ul>
  {{range .Entries}}
    <li><b>{{.SenderName}}</b> ({{.Time}}): {{.Content}}</li>
  {{end}}
  </ul>
  {{if gt .MoreCount 0}}<p>...and {{.MoreCount}} more</p>{{end}}
  <p><a href="{{.CTAURL}}">Open the conversation</a></p>
</body>
</html>`

type digestEntryView struct {
	SenderName string
	Time       string
	Content    string
}

type digestView struct {
	RecipientName string
	Intro         string
	Entries       []digestEntryView
	MoreCount     int
	CTAURL        template.URL
}

// DigestRenderer composes the outbound notification payload for one flushed
// aggregation record. The call-to-action link differs by recipient role:
// providers land on their dashboard, requesters on the tenant portal page
// for the room.
type DigestRenderer struct {
	ProviderDashboardURL string
	PortalBaseURL        string

	tmpl *template.Template
}

func NewDigestRenderer(providerDashboardURL, portalBaseURL string) *DigestRenderer {
	return &DigestRenderer{
		ProviderDashboardURL: providerDashboardURL,
		PortalBaseURL:        portalBaseURL,
		tmpl:                 template.Must(template.New("digest").Parse(digestTemplate)),
	}
}

func (r *DigestRenderer) Render(rec *pendingDigest) *RenderedNotification {
	total := len(rec.Entries)
	shown := rec.Entries
	if total > config.DigestMaxMessages {
		shown = rec.Entries[total-config.DigestMaxMessages:]
	}
	more := total - len(shown)

	senders := strings.Join(rec.Senders, ", ")
	var subject, intro string
	if total == 1 {
		subject = fmt.Sprintf("New message from %s about %s", senders, rec.OptionTag)
		intro = fmt.Sprintf("You have a new message from %s about %s:", senders, rec.OptionTag)
	} else {
		subject = fmt.Sprintf("%d new messages from %s", total, senders)
		intro = fmt.Sprintf("You have %d new messages from %s about %s:", total, senders, rec.OptionTag)
	}

	cta := r.PortalBaseURL + "/chat/" + rec.RoomID
	if rec.Recipient.IsProvider {
		cta = r.ProviderDashboardURL
	}

	view := digestView{
		RecipientName: rec.Recipient.Name,
		Intro:         intro,
		MoreCount:     more,
		CTAURL:        template.URL(cta),
	}
	for _, e := range shown {
		view.Entries = append(view.Entries, digestEntryView{
			SenderName: e.SenderName,
			Time:       e.At.Format("15:04"),
			Content:    e.Content,
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		log.Printf("ERROR: Digest template failed for room %s: %v", rec.RoomID, err)
	}

	return &RenderedNotification{
		To:             rec.Recipient.Email,
		TelegramChatID: rec.Recipient.TelegramChatID,
		Channels:       rec.Recipient.Channels,
		Subject:        subject,
		HTMLBody:       buf.String(),
		TextBody:       r.renderText(rec, shown, more, cta),
	}
}

// renderText builds the compact body used by the Telegram channel, which
// only accepts a small HTML subset.
func (r *DigestRenderer) renderText(rec *pendingDigest, shown []digestEntry, more int, cta string) string {
	var b strings.Builder
	if len(rec.Entries) == 1 {
		fmt.Fprintf(&b, "New message about %s\n", rec.OptionTag)
	} else {
		fmt.Fprintf(&b, "%d new messages about %s\n", len(rec.Entries), rec.OptionTag)
	}
	for _, e := range shown {
		fmt.Fprintf(&b, "%s (%s): %s\n", e.SenderName, e.At.Format("15:04"), e.Content)
	}
	if more > 0 {
		fmt.Fprintf(&b, "...and %d more\n", more)
	}
	b.WriteString(cta)
	return b.String()
}
