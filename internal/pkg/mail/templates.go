package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

const layoutTpl = `<!doctype html>
<html>
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>{{.Subject}}</title>
  </head>
  <body style="margin:0;padding:0;background-color:#0b0b0b;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',sans-serif;color:#e5e5e5;">
    <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background:#0b0b0b;padding:24px 16px;">
      <tr>
        <td align="center">
          <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width:640px;background:#111217;border:1px solid #262626;border-radius:16px;padding:24px 24px 28px;">
            <tr>
              <td style="font-size:12px;letter-spacing:0.16em;color:#fbbf24;text-transform:uppercase;font-weight:700;padding-bottom:8px;">{{.SiteName}}</td>
            </tr>
            <tr>
              <td style="font-size:22px;line-height:1.3;font-weight:800;color:#f9fafb;padding-bottom:8px;">{{.Heading}}</td>
            </tr>
            <tr>
              <td style="font-size:14px;line-height:1.6;color:#d4d4d4;padding-bottom:16px;">{{.Body}}</td>
            </tr>
            {{if .ActionURL}}
            <tr>
              <td style="padding-top:4px;">
                <a href="{{.ActionURL}}" style="display:inline-block;background:#f97316;color:#0b0b0b;font-weight:600;font-size:14px;padding:10px 18px;border-radius:999px;text-decoration:none;">{{.ActionLabel}}</a>
              </td>
            </tr>
            {{end}}
            <tr>
              <td style="padding-top:20px;font-size:11px;line-height:1.6;color:#9ca3af;border-top:1px solid #1f2937;">{{.Footer}}{{if .FooterURL}} <a href="{{.FooterURL}}" style="color:#9ca3af;">{{.FooterLabel}}</a>{{end}}<br />&copy;{{year}} {{.SiteName}}</td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`

var layout = template.Must(template.New("layout").Funcs(template.FuncMap{
	"year": func() int { return time.Now().Year() },
}).Parse(layoutTpl))

var markdown = goldmark.New()

type layoutData struct {
	Subject     string
	SiteName    string
	Heading     string
	Body        template.HTML
	ActionURL   string
	ActionLabel string
	Footer      string
	FooterURL   string
	FooterLabel string
}

func renderLayout(d layoutData) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// paragraphs escapes plain text and keeps its line breaks.
func paragraphs(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br />"))
}

// MarkdownHTML renders Markdown with raw HTML left escaped.
func MarkdownHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// WelcomeData fills the welcome email sent after subscribing.
type WelcomeData struct {
	To             string
	SiteName       string
	SiteURL        string
	UnsubscribeURL string
}

func Welcome(d WelcomeData) (Message, error) {
	subject := fmt.Sprintf("Welcome to the %s newsletter", d.SiteName)
	text := fmt.Sprintf("Thanks for subscribing to the %s newsletter.\n\n"+
		"You will hear from us when new writing and research is published.\n\n"+
		"Visit the site: %s\n\nTo unsubscribe at any time: %s",
		d.SiteName, d.SiteURL, d.UnsubscribeURL)
	html, err := renderLayout(layoutData{
		Subject:     subject,
		SiteName:    d.SiteName,
		Heading:     "You're subscribed",
		Body:        paragraphs("Thanks for subscribing. You will hear from us when new writing and research is published."),
		ActionURL:   d.SiteURL,
		ActionLabel: "Visit the site",
		Footer:      "Changed your mind?",
		FooterURL:   d.UnsubscribeURL,
		FooterLabel: "Unsubscribe",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{d.To}, Subject: subject, Text: text, HTML: html}, nil
}

// UnsubscribedData fills the confirmation sent after unsubscribing.
type UnsubscribedData struct {
	To       string
	SiteName string
	SiteURL  string
}

func Unsubscribed(d UnsubscribedData) (Message, error) {
	subject := fmt.Sprintf("You have been unsubscribed from %s", d.SiteName)
	text := fmt.Sprintf("You will no longer receive the %s newsletter.\n\n"+
		"If this was a mistake you can subscribe again at %s", d.SiteName, d.SiteURL)
	html, err := renderLayout(layoutData{
		Subject:     subject,
		SiteName:    d.SiteName,
		Heading:     "You're unsubscribed",
		Body:        paragraphs("You will no longer receive our newsletter."),
		ActionURL:   d.SiteURL,
		ActionLabel: "Subscribe again",
		Footer:      "This is a one-time confirmation.",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{d.To}, Subject: subject, Text: text, HTML: html}, nil
}

// BroadcastData is a fully resolved announcement; every field is already defaulted.
type BroadcastData struct {
	Subject        string
	SiteName       string
	Title          string
	URL            string
	Excerpt        string
	ActionLabel    string
	UnsubscribeURL string
}

// Broadcast renders an announcement. The excerpt is Markdown in the HTML body
// and plain in the text body. Recipients are left to the caller.
func Broadcast(d BroadcastData) (Message, error) {
	text := d.Title +
		"\n\n" + d.Excerpt +
		"\n\nRead more: " + d.URL +
		"\n\nIf you no longer want to receive these emails, unsubscribe at " + d.UnsubscribeURL
	body, err := MarkdownHTML(d.Excerpt)
	if err != nil {
		return Message{}, err
	}
	html, err := renderLayout(layoutData{
		Subject:     d.Subject,
		SiteName:    d.SiteName,
		Heading:     d.Title,
		Body:        body,
		ActionURL:   d.URL,
		ActionLabel: d.ActionLabel,
		Footer:      fmt.Sprintf("You are receiving this email because you subscribed to the %s newsletter.", d.SiteName),
		FooterURL:   d.UnsubscribeURL,
		FooterLabel: "Unsubscribe",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: d.Subject, Text: text, HTML: html, Undisclosed: true}, nil
}

// Notice is a plain-text message to the site owner.
type Notice struct {
	To      string
	Subject string
	Intro   string
	// Lines are "Label: value" rows; empty values are skipped.
	Lines  [][2]string
	Detail string
	// DetailLabel heads Detail, e.g. "Message".
	DetailLabel string
}

func OwnerNotice(n Notice) Message {
	var b strings.Builder
	b.WriteString(n.Intro)
	b.WriteString("\n")
	for _, l := range n.Lines {
		if strings.TrimSpace(l[1]) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", l[0], l[1])
	}
	if n.DetailLabel != "" {
		fmt.Fprintf(&b, "\n\n%s:\n%s", n.DetailLabel, n.Detail)
	}
	return Message{To: []string{n.To}, Subject: n.Subject, Text: b.String()}
}
