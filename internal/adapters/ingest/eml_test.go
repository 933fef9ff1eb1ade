package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-router/internal/adapters/ingest"
)

const plainMessage = `From: Evergreen Ops <ops@mail.evergreen-line.com>
To: desk@example.com, backup@example.com
Cc: supervisor@example.com
Subject: Pre-Alert for MV Ever Given
Date: Mon, 04 May 2026 10:30:00 +0000

Vessel arriving Thursday. Documents to follow.
`

const multipartMessage = `From: customer@shipper.example.com
To: desk@example.com
Subject: Scanned documents
Content-Type: multipart/mixed; boundary="frontier"

--frontier
Content-Type: text/plain; charset=us-ascii

Please process the attached forms.
--frontier
Content-Type: application/pdf; name="POA_signed.pdf"
Content-Disposition: attachment; filename="POA_signed.pdf"

%PDF-1.4 fake content
--frontier
Content-Type: text/html

<html><body>ignored alternative</body></html>
--frontier--
`

func TestParseMessagePlain(t *testing.T) {
	email, err := ingest.ParseMessage(strings.NewReader(plainMessage))
	require.NoError(t, err)

	assert.Equal(t, "Evergreen Ops <ops@mail.evergreen-line.com>", email.From)
	assert.Equal(t, []string{"desk@example.com", "backup@example.com"}, email.To)
	assert.Equal(t, []string{"supervisor@example.com"}, email.Cc)
	assert.Equal(t, "Pre-Alert for MV Ever Given", email.Subject)
	assert.Contains(t, email.Body, "Vessel arriving Thursday")
	assert.Empty(t, email.AttachmentNames)

	want := time.Date(2026, time.May, 4, 10, 30, 0, 0, time.UTC)
	assert.True(t, email.ReceivedAt.Equal(want), "ReceivedAt = %v", email.ReceivedAt)
}

func TestParseMessageMultipart(t *testing.T) {
	email, err := ingest.ParseMessage(strings.NewReader(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "customer@shipper.example.com", email.From)
	assert.Contains(t, email.Body, "Please process the attached forms.")
	assert.NotContains(t, email.Body, "ignored alternative")
	assert.Equal(t, []string{"POA_signed.pdf"}, email.AttachmentNames)
}

func TestParseMessageAttachmentNameFromContentType(t *testing.T) {
	// Some senders omit Content-Disposition and only name the attachment on
	// Content-Type
	raw := strings.Join([]string{
		"From: a@b.com",
		"Subject: docs",
		`Content-Type: multipart/mixed; boundary="xyz"`,
		"",
		"--xyz",
		"Content-Type: text/plain",
		"",
		"body text",
		"--xyz",
		`Content-Type: application/pdf; name="arrival_notice.pdf"`,
		"",
		"data",
		"--xyz--",
		"",
	}, "\r\n")

	email, err := ingest.ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"arrival_notice.pdf"}, email.AttachmentNames)
}

func TestParseMessageMissingDate(t *testing.T) {
	raw := "From: a@b.com\r\nSubject: hi\r\n\r\nbody\r\n"

	before := time.Now()
	email, err := ingest.ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.False(t, email.ReceivedAt.Before(before))
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ingest.ParseMessage(strings.NewReader("not a mail message"))
	require.Error(t, err)
}
