// Package mailparse extracts conversation signals from an RFC 5322 message
// file saved by the operator.
package mailparse

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/emersion/go-message/mail"
)

// Message is the part of an email sitepass cares about.
type Message struct {
	From        string
	Subject     string
	BodyText    string
	Attachments []string
}

var (
	addressRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	engineersRe = regexp.MustCompile(`(?im)^[ \t>]*(?:attending\s+)?engineers?(?:\s+names?)?\s*[:\-]\s*(.+)$`)
	replyRe     = regexp.MustCompile(`(?i)^\s*((re|fwd?|aw|sv)\s*:\s*)+`)
)

// Parse reads a message: sender, decoded subject, the first text/plain body
// and the file names of every attachment.
func Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	header := mr.Header

	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	} else {
		msg.From = extractEmailAddress(header.Get("From"))
	}

	subject, err := DecodeHeader(header.Get("Subject"))
	if err != nil {
		return nil, err
	}
	msg.Subject = subject

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, err := h.ContentType()
			if err != nil || contentType != "text/plain" || msg.BodyText != "" {
				continue
			}
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			msg.BodyText = string(body)
		case *mail.AttachmentHeader:
			name, _ := h.Filename()
			if name == "" {
				name = "unnamed"
			}
			msg.Attachments = append(msg.Attachments, name)
		}
	}

	return msg, nil
}

// Signals reduces the message to what the state machine consumes. Reply and
// forward prefixes are stripped from the subject so a thread keeps one key.
// Engineer names come from a line such as "Engineers: Alice, Bob".
func (m *Message) Signals() domain.Signals {
	return domain.Signals{
		Email:             m.From,
		Subject:           ThreadSubject(m.Subject),
		AttachmentPresent: len(m.Attachments) > 0,
		EngineerNames:     EngineerNames(m.BodyText),
	}
}

// ThreadSubject removes leading Re:/Fwd: markers.
func ThreadSubject(subject string) string {
	return strings.TrimSpace(replyRe.ReplaceAllString(subject, ""))
}

// EngineerNames returns the names listed on the first "Engineers:" line.
func EngineerNames(body string) []string {
	m := engineersRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	return domain.ParseEngineerNames(m[1])
}

// extractEmailAddress pulls the address out of a header that may also carry a display name.
func extractEmailAddress(fromHeader string) string {
	return addressRe.FindString(fromHeader)
}

// DecodeHeader decodes MIME-encoded headers (e.g., "=?UTF-8?B?...?=") to plain text
func DecodeHeader(encoded string) (string, error) {
	decoder := new(mime.WordDecoder)
	decoded, err := decoder.DecodeHeader(encoded)
	if err != nil {
		return "", err
	}
	return decoded, nil
}
