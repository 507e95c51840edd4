package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildOrderStatusContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		status              string
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:                "processing_zh",
			locale:              i18n.LocaleZH,
			status:              "processing",
			wantSubjectContains: []string{"订单状态更新", "处理中"},
			wantBodyContains:    []string{"SF-1001", "198000.00"},
		},
		{
			name:                "canceled_en",
			locale:              i18n.LocaleEN,
			status:              "canceled",
			wantSubjectContains: []string{"Order update", "Canceled"},
			wantBodyContains:    []string{"Your order SF-1001 is now: Canceled"},
		},
		{
			name:                "completed_vi",
			locale:              "vi",
			status:              "completed",
			wantSubjectContains: []string{"Hoàn tất"},
			wantBodyContains:    []string{"SF-1001"},
		},
		{
			name:                "unknown_status_fallback",
			locale:              i18n.LocaleEN,
			status:              "archived",
			wantSubjectContains: []string{"archived"},
			wantBodyContains:    []string{"archived"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := OrderStatusEmailInput{
				OrderNo: "SF-1001",
				Status:  tt.status,
				Amount:  models.NewMoneyFromDecimal(decimal.NewFromInt(198000)),
			}
			subject, body := buildOrderStatusContent(input, tt.locale)
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
		})
	}
}

func TestBuildOrderStatusContentItemsAndPickup(t *testing.T) {
	input := OrderStatusEmailInput{
		OrderNo:  "SF-2002",
		Status:   "ready_for_pickup",
		Amount:   models.NewMoneyFromInt(90000),
		IsPickup: true,
		Items: []models.OrderItem{
			{ProductName: "Trà sữa", Quantity: 2, LineTotal: models.NewMoneyFromInt(60000)},
			{ProductName: "Bánh flan", Quantity: 1, LineTotal: models.NewMoneyFromInt(30000)},
		},
	}
	_, body := buildOrderStatusContent(input, i18n.LocaleEN)
	for _, expected := range []string{"- Trà sữa x2: 60000.00", "- Bánh flan x1: 30000.00", "pick up"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("body missing %q: %s", expected, body)
		}
	}
}

func TestSendOrderStatusEmailNotConfigured(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true})
	err := svc.SendOrderStatusEmail(context.Background(), "buyer@example.com", OrderStatusEmailInput{OrderNo: "SF-1"}, i18n.LocaleEN)
	if !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}

	svc = NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.local", Port: 25, From: "shop@example.com"})
	err = svc.SendOrderStatusEmail(context.Background(), "not-an-email", OrderStatusEmailInput{OrderNo: "SF-1"}, i18n.LocaleEN)
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email error, got %v", err)
	}
}

func TestSendOrderStatusEmailDisabled(t *testing.T) {
	svc := NewEmailService(nil)
	err := svc.SendOrderStatusEmail(context.Background(), "buyer@example.com", OrderStatusEmailInput{OrderNo: "SF-1"}, i18n.LocaleEN)
	if !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
