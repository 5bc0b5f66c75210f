package ingest

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"google.golang.org/api/gmail/v1"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// mailDateLayouts are the Date header shapes seen in the wild, most common
// first.
var mailDateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// EmailFromGmail converts a Gmail API message fetched with format=full.
// The Date header wins over the internal date when it parses.
func EmailFromGmail(msg *gmail.Message) (unified.EmailItem, error) {
	if msg == nil || msg.Payload == nil {
		return unified.EmailItem{}, brieferrors.NewInvalidInputError("message", "gmail message has no payload")
	}

	email := unified.EmailItem{ID: msg.Id}
	for _, h := range msg.Payload.Headers {
		switch {
		case strings.EqualFold(h.Name, "Subject"):
			email.Subject = h.Value
		case strings.EqualFold(h.Name, "From"):
			email.From = h.Value
		case strings.EqualFold(h.Name, "To"):
			email.To = splitAddresses(h.Value)
		case strings.EqualFold(h.Name, "Date"):
			email.Date, _ = parseMailDate(h.Value)
		}
	}

	if email.Date.IsZero() && msg.InternalDate > 0 {
		email.Date = time.UnixMilli(msg.InternalDate).UTC()
	}

	email.Body = plainTextBody(msg.Payload)
	if email.Body == "" {
		email.Body = msg.Snippet
	}

	if err := email.Validate(); err != nil {
		return unified.EmailItem{}, brieferrors.NewInvalidInputError("message", err.Error())
	}
	return email, nil
}

// EmailsFromGmail converts every message it can. Messages that fail are
// left out and reported together in the returned error.
func EmailsFromGmail(msgs []*gmail.Message) ([]unified.EmailItem, error) {
	emails := make([]unified.EmailItem, 0, len(msgs))
	var result *multierror.Error
	for i, msg := range msgs {
		email, err := EmailFromGmail(msg)
		if err != nil {
			result = multierror.Append(result, brieferrors.Wrapf(err, "message %d", i))
			continue
		}
		emails = append(emails, email)
	}
	return emails, result.ErrorOrNil()
}

func parseMailDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range mailDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	// Drop a trailing zone comment such as " (PDT)" and try again.
	if open := strings.LastIndex(value, " ("); open != -1 {
		if closing := strings.LastIndex(value, ")"); closing > open {
			stripped := strings.TrimSpace(value[:open] + value[closing+1:])
			for _, layout := range mailDateLayouts {
				if t, err := time.Parse(layout, stripped); err == nil {
					return t, nil
				}
			}
		}
	}

	return time.Time{}, brieferrors.Newf("unrecognized date %q", value)
}

// plainTextBody returns the first text/plain part, searching nested
// multipart containers depth first.
func plainTextBody(part *gmail.MessagePart) string {
	if strings.EqualFold(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		if data, err := decodeBase64URL(part.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, child := range part.Parts {
		mime := strings.ToLower(child.MimeType)
		if strings.HasPrefix(mime, "text/") || strings.HasPrefix(mime, "multipart/") {
			if body := plainTextBody(child); body != "" {
				return body
			}
		}
	}
	return ""
}

// decodeBase64URL accepts padded and unpadded URL-safe base64.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

func splitAddresses(value string) []string {
	var out []string
	for _, addr := range strings.Split(value, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
