package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/i18n"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// PushMessage 推送消息
type PushMessage struct {
	DeviceToken string
	Title       string
	Body        string
	Data        map[string]string
}

// PushService HTTP 推送服务
type PushService struct {
	cfg    *config.PushConfig
	client *http.Client
}

// NewPushService 创建推送服务
func NewPushService(cfg *config.PushConfig) *PushService {
	timeout := 5 * time.Second
	if cfg != nil && cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &PushService{
		cfg: cfg,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Enabled 是否启用
func (s *PushService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && strings.TrimSpace(s.cfg.Endpoint) != ""
}

// Send 发送推送
func (s *PushService) Send(ctx context.Context, msg PushMessage) error {
	if !s.Enabled() {
		return ErrPushServiceDisabled
	}
	if strings.TrimSpace(msg.DeviceToken) == "" {
		return ErrPushTokenMissing
	}
	body, err := json.Marshal(map[string]interface{}{
		"to": msg.DeviceToken,
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"data": msg.Data,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(s.cfg.ServerKey); key != "" {
		req.Header.Set("Authorization", "key="+key)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// buildOrderStatusPush 订单状态推送内容
func buildOrderStatusPush(token, orderNo string, orderID uint, status, locale string) PushMessage {
	normalized := i18n.NormalizeLocale(locale)
	return PushMessage{
		DeviceToken: token,
		Title:       i18n.Sprintf(normalized, "push.order_status.title", orderNo),
		Body:        i18n.Sprintf(normalized, "push.order_status.body", orderStatusLabel(normalized, status)),
		Data: map[string]string{
			"order_id": fmt.Sprintf("%d", orderID),
			"order_no": orderNo,
			"status":   status,
		},
	}
}
