package mail

import (
	"context"
	"fmt"
	netmail "net/mail"

	"github.com/mailjet/mailjet-apiv3-go"
)

type mailjetProvider struct {
	client  *mailjet.Client
	from    mailjet.RecipientV31
	replyTo *mailjet.RecipientV31
}

func newMailjet(public, private, from, replyTo string) *mailjetProvider {
	p := &mailjetProvider{
		client: mailjet.NewMailjetClient(public, private),
		from:   recipient(from),
	}
	if replyTo != "" {
		r := recipient(replyTo)
		p.replyTo = &r
	}
	return p
}

func recipient(addr string) mailjet.RecipientV31 {
	if parsed, err := netmail.ParseAddress(addr); err == nil {
		return mailjet.RecipientV31{Email: parsed.Address, Name: parsed.Name}
	}
	return mailjet.RecipientV31{Email: addr}
}

func (p *mailjetProvider) name() string { return "mailjet" }

// The v3.1 client takes no context; cancellation applies only before the call.
func (p *mailjetProvider) send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rcpts := make(mailjet.RecipientsV31, 0, len(msg.To))
	for _, to := range msg.To {
		rcpts = append(rcpts, recipient(to))
	}
	info := mailjet.InfoMessagesV31{
		From:     &p.from,
		ReplyTo:  p.replyTo,
		Subject:  msg.Subject,
		TextPart: msg.Text,
		HTMLPart: msg.HTML,
	}
	if msg.Undisclosed {
		info.To = &mailjet.RecipientsV31{p.from}
		info.Bcc = &rcpts
	} else {
		info.To = &rcpts
	}

	msgs := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{info}}
	if _, err := p.client.SendMailV31(&msgs); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}
	return nil
}
