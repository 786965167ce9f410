// Package mail delivers plain-text messages over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// Config describes the outbound SMTP relay.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Message is a single plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// ErrNotConfigured is returned when no relay host is set.
var ErrNotConfigured = errors.New("mail: smtp host not configured")

// SMTP sends messages through a relay, opening one connection per message.
type SMTP struct {
	cfg Config
	now func() time.Time
}

// NewSMTP builds an SMTP transport.
func NewSMTP(cfg Config) *SMTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTP{cfg: cfg, now: time.Now}
}

// Send delivers msg. The context bounds dialing and the whole exchange.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail: recipient required")
	}
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	client, err := s.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: send via %s: %w", s.addr(), err)
	}
	return nil
}

// Ping opens a session with the relay and authenticates without sending mail.
func (s *SMTP) Ping(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("mail: dial %s: %w", s.addr(), err)
	}
	return client.Close()
}

func (s *SMTP) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *SMTP) client() (*gomail.Client, error) {
	if s.cfg.Host == "" {
		return nil, ErrNotConfigured
	}
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: client: %w", err)
	}
	return client, nil
}

// build assembles the MIME message. Non-ASCII header values are RFC 2047
// encoded by go-mail; the body goes out quoted-printable as UTF-8.
func (s *SMTP) build(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(strings.TrimSpace(msg.To)); err != nil {
		return nil, fmt.Errorf("mail: recipient %q: %w", msg.To, err)
	}
	m.Subject(sanitizeHeader(msg.Subject))
	m.SetDateWithValue(s.now().UTC())
	m.SetMessageIDWithValue(uuid.NewString() + "@" + messageDomain(s.cfg.From))
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

// Format renders msg exactly as it would go over the wire.
func (s *SMTP) Format(msg Message) ([]byte, error) {
	m, err := s.build(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mail: render: %w", err)
	}
	return buf.Bytes(), nil
}

// header values must not smuggle extra headers
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func messageDomain(from string) string {
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		return strings.Trim(from[i+1:], "> ")
	}
	return "localhost"
}
