package ingest

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/mikey/mail-router/internal/core"
)

// ParseMessage extracts the structured fields the router consumes from a
// raw RFC 5322 message: headers, the text body, and attachment filenames.
// Extraction is best effort; a field that cannot be decoded comes through
// empty rather than failing the whole message.
func ParseMessage(r io.Reader) (*core.Email, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, err
	}
	return EmailFromMessage(msg), nil
}

// EmailFromMessage converts a parsed mail message into a routing document
func EmailFromMessage(msg *mail.Message) *core.Email {
	email := &core.Email{
		From:       msg.Header.Get("From"),
		Subject:    msg.Header.Get("Subject"),
		ReceivedAt: time.Now(),
		Headers:    map[string][]string(msg.Header),
	}

	if to := msg.Header.Get("To"); to != "" {
		email.To = splitAddressList(to)
	}
	if cc := msg.Header.Get("Cc"); cc != "" {
		email.Cc = splitAddressList(cc)
	}
	if date, err := msg.Header.Date(); err == nil {
		email.ReceivedAt = date
	}

	body, attachments := extractContent(msg)
	email.Body = body
	email.AttachmentNames = attachments

	return email
}

func splitAddressList(header string) []string {
	var out []string
	for _, addr := range strings.Split(header, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// extractContent pulls the text body and attachment filenames out of a
// message. For multipart messages it walks the parts, collecting text/plain
// content and filenames from attachment headers.
func extractContent(msg *mail.Message) (string, []string) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readAll(msg.Body), nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readAll(msg.Body), nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		return readAll(msg.Body), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	var attachments []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if name := partFilename(part); name != "" {
			attachments = append(attachments, name)
			continue
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partContentType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue // Skip this part if we can't read it
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
		// Skip other parts (html alternatives, nested multiparts)
	}

	return textContent.String(), attachments
}

// partFilename returns the filename of an attachment part, or an empty
// string for inline content
func partFilename(part *multipart.Part) string {
	if name := part.FileName(); name != "" {
		return name
	}

	// Fall back to the name parameter on Content-Type
	if _, params, err := mime.ParseMediaType(part.Header.Get("Content-Type")); err == nil {
		if name, ok := params["name"]; ok {
			return name
		}
	}
	return ""
}

func readAll(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(data)
}
