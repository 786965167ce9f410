// Package mailer turns mail transport errors into delivery flags and owns
// the message templates sent to suppliers.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smart-inventory/smart-inventory/internal/platform/mail"
)

// Transport delivers messages. *mail.SMTP implements it.
type Transport interface {
	Send(ctx context.Context, msg mail.Message) error
	Ping(ctx context.Context) error
}

const (
	testSubject   = "SMTP Test - Smart Inventory"
	sampleSubject = "Sample Check Up"
	sampleBody    = "Test mail from Smart Inventory"
)

// Service sends mail on behalf of the inventory.
type Service struct {
	transport     Transport
	logger        *slog.Logger
	testRecipient string
}

// NewService builds Service. testRecipient receives the diagnostic mails.
func NewService(transport Transport, logger *slog.Logger, testRecipient string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{transport: transport, logger: logger, testRecipient: testRecipient}
}

// SendMail delivers one message and reports whether it was accepted by the
// relay. Failures are logged, never returned.
func (s *Service) SendMail(ctx context.Context, to, subject, body string) bool {
	if s.transport == nil {
		s.logger.Warn("mail transport not configured", slog.String("to", to))
		return false
	}
	err := s.transport.Send(ctx, mail.Message{To: to, Subject: subject, Body: body})
	if err != nil {
		s.logger.Warn("mail delivery failed",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.Any("error", err))
		return false
	}
	s.logger.Info("mail sent", slog.String("to", to), slog.String("subject", subject))
	return true
}

// LowStockSubject renders the subject of the supplier notification.
func LowStockSubject(productName string) string {
	return "Low Stock Alert - " + productName
}

// LowStockBody renders the supplier notification text.
func LowStockBody(productName string, currentStock int) string {
	var b strings.Builder
	b.WriteString("Dear Supplier,\n\n")
	fmt.Fprintf(&b, "Our product \"%s\" has dropped to %d units.\n", productName, currentStock)
	b.WriteString("Please send additional stock as soon as possible.\n\n")
	b.WriteString("Regards,\nSmart Inventory System")
	return b.String()
}

// SendLowStockEmail asks the supplier at supplierEmail to restock productName.
func (s *Service) SendLowStockEmail(ctx context.Context, productName, supplierEmail string, currentStock int) bool {
	return s.SendMail(ctx, supplierEmail, LowStockSubject(productName), LowStockBody(productName, currentStock))
}

// SendSample mails the canned check-up message to the test recipient.
func (s *Service) SendSample(ctx context.Context) bool {
	return s.SendMail(ctx, s.testRecipient, sampleSubject, sampleBody)
}

// TestConnection checks the relay session and then sends a test mail.
func (s *Service) TestConnection(ctx context.Context) bool {
	if s.transport == nil {
		return false
	}
	if err := s.transport.Ping(ctx); err != nil {
		s.logger.Warn("mail connection check failed", slog.Any("error", err))
		return false
	}
	return s.SendMail(ctx, s.testRecipient, testSubject, "SMTP connection verified by Smart Inventory.")
}
