package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/models"
)

const smtpDialTimeout = 10 * time.Second

// smtpTransport SMTP 连接方式
type smtpTransport int

const (
	smtpPlain smtpTransport = iota
	smtpStartTLS
	smtpImplicitTLS
)

// EmailService 订单通知邮件
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// OrderStatusEmailInput 订单状态邮件内容
type OrderStatusEmailInput struct {
	OrderNo  string
	Status   string
	Amount   models.Money
	IsPickup bool
	Items    []models.OrderItem
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(ctx context.Context, toEmail string, input OrderStatusEmailInput, locale string) error {
	if err := s.checkReady(toEmail); err != nil {
		return err
	}
	subject, body := buildOrderStatusContent(input, locale)
	from := formatSender(s.cfg.From, s.cfg.FromName)
	return normalizeEmailSendError(s.deliver(ctx, toEmail, composeMessage(from, toEmail, subject, body)))
}

func (s *EmailService) checkReady(toEmail string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func (s *EmailService) transport() smtpTransport {
	switch {
	case s.cfg.UseSSL:
		return smtpImplicitTLS
	case s.cfg.UseTLS:
		return smtpStartTLS
	default:
		return smtpPlain
	}
}

// deliver 建立一次 SMTP 会话并投递单封邮件
func (s *EmailService) deliver(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	tlsConfig := &tls.Config{ServerName: s.cfg.Host}

	var (
		conn net.Conn
		err  error
	)
	if s.transport() == smtpImplicitTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if s.transport() == smtpStartTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if s.cfg.Username != "" || s.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildOrderStatusContent(input OrderStatusEmailInput, locale string) (string, string) {
	normalized := i18n.NormalizeLocale(locale)
	statusLabel := orderStatusLabel(normalized, input.Status)
	subject := i18n.Sprintf(normalized, "email.order_status.subject", statusLabel)

	var body strings.Builder
	body.WriteString(i18n.Sprintf(normalized, "email.order_status.body", input.OrderNo, statusLabel, input.Amount.String()))
	if len(input.Items) > 0 {
		body.WriteString("\n\n")
		for _, item := range input.Items {
			fmt.Fprintf(&body, "- %s x%d: %s\n", item.ProductName, item.Quantity, item.LineTotal.String())
		}
	}
	if input.IsPickup {
		body.WriteString("\n")
		body.WriteString(i18n.T(normalized, "email.order_status.pickup_hint"))
	}
	return subject, body.String()
}

// orderStatusLabel 状态本地化文案，缺失时回退为原始状态
func orderStatusLabel(locale, status string) string {
	key := "order.status." + strings.ToLower(strings.TrimSpace(status))
	label := i18n.T(locale, key)
	if label == key {
		return status
	}
	return label
}

func formatSender(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	return (&mail.Address{Name: mime.QEncoding.Encode("UTF-8", name), Address: from}).String()
}

func composeMessage(from, to, subject, body string) []byte {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("UTF-8", subject),
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

var recipientRejectedHints = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	for _, hint := range recipientRejectedHints {
		if strings.Contains(message, hint) {
			return true
		}
	}
	if !strings.Contains(message, "550") {
		return false
	}
	for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
		if strings.Contains(message, hint) {
			return true
		}
	}
	return false
}
