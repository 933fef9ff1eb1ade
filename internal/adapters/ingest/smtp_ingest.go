package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/mail-router/internal/core"
	"go.uber.org/zap"
)

// SMTPIngest accepts mail over SMTP, routes each message, stamps the
// decision onto the headers, and optionally relays the message to an
// upstream MTA for delivery into the team mailboxes.
type SMTPIngest struct {
	router       *core.RouterService
	stats        core.StatsRecorder
	logger       *zap.Logger
	listenAddr   string
	server       *smtp.Server
	queueHeader  string
	ruleHeader   string
	scoreHeader  string
	reasonHeader string
	relayAddr    string
	relayPort    int
	relayEnabled bool
}

// NewSMTPIngest creates a new SMTP ingest service
func NewSMTPIngest(
	router *core.RouterService,
	stats core.StatsRecorder,
	logger *zap.Logger,
	listenAddr string,
	queueHeader string,
	ruleHeader string,
	scoreHeader string,
	reasonHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
) *SMTPIngest {
	return &SMTPIngest{
		router:       router,
		stats:        stats,
		logger:       logger,
		listenAddr:   listenAddr,
		queueHeader:  queueHeader,
		ruleHeader:   ruleHeader,
		scoreHeader:  scoreHeader,
		reasonHeader: reasonHeader,
		relayAddr:    relayAddr,
		relayPort:    relayPort,
		relayEnabled: relayEnabled,
	}
}

// Start starts the SMTP ingest service
func (f *SMTPIngest) Start() error {
	f.server = smtp.NewServer(&smtpBackend{ingest: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP ingest starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP ingest service
func (f *SMTPIngest) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail routes an email directly, bypassing the SMTP transport.
// Used for testing and direct API calls.
func (f *SMTPIngest) ProcessEmail(ctx context.Context, email *core.Email) (*core.RoutingDecision, error) {
	return f.router.Route(email), nil
}

// relay sends the stamped message to the upstream MTA using go-smtp
func (f *SMTPIngest) relay(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// The message has already been accepted at this point
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *SMTPIngest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the ingest)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data routes the message and stamps the decision onto its headers
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		s.ingest.stats.RecordError()
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		s.ingest.stats.RecordError()
		return err
	}

	email := EmailFromMessage(msg)
	// The envelope sender is authoritative over the From header
	if s.sender != "" {
		email.From = s.sender
	}
	if len(s.recipients) > 0 {
		email.To = s.recipients
	}

	decision := s.ingest.router.Route(email)

	s.ingest.logger.Info("Message routed",
		zap.String("from", email.From),
		zap.String("queue", string(decision.Queue)),
		zap.Int("rule_id", decision.RuleID),
		zap.String("confidence", decision.ConfidenceLabel))

	// Stamp the routing headers ahead of the original headers
	var stamped bytes.Buffer
	fmt.Fprintf(&stamped, "%s: %s\r\n", s.ingest.queueHeader, decision.Queue)
	fmt.Fprintf(&stamped, "%s: %d\r\n", s.ingest.ruleHeader, decision.RuleID)
	fmt.Fprintf(&stamped, "%s: %.2f (%s)\r\n", s.ingest.scoreHeader, decision.Confidence, decision.ConfidenceLabel)
	fmt.Fprintf(&stamped, "%s: %s\r\n", s.ingest.reasonHeader, decision.MatchReason)

	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&stamped, "%s: %s\r\n", key, value)
		}
	}
	fmt.Fprintf(&stamped, "\r\n")

	// Append the original body, preserving MIME parts and attachments
	bodyStart := bytes.Index(rawData, []byte("\r\n\r\n"))
	if bodyStart >= 0 {
		stamped.Write(rawData[bodyStart+4:])
	} else if bodyStart = bytes.Index(rawData, []byte("\n\n")); bodyStart >= 0 {
		stamped.Write(rawData[bodyStart+2:])
	}

	if s.ingest.relayEnabled {
		if err := s.ingest.relay(s.sender, s.recipients, stamped.Bytes()); err != nil {
			s.ingest.logger.Error("Failed to relay message",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	}

	return nil
}
