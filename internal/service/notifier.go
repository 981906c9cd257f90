package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"text/template"
	"time"

	"domain-locker/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// MessageData is what a user's message template can reference, e.g. {{.Domain}}.
type MessageData struct {
	Domain  string
	Type    string
	Message string
	Time    string
}

const defaultMessageTpl = "🔔 <b>[Domain Locker]</b> {{if .Domain}}{{.Domain}}{{end}}\n{{.Message}}"

const testMessage = "🔔 [Test] This is a test notification from Domain Locker."

type telegramJob struct {
	Token   string
	ChatID  string
	Message string
}

type webhookJob struct {
	URL      string
	Message  string
	User     string
	Password string
}

// NotifierService delivers messages to the webhook and Telegram channels a user configured.
// Delivery is queued; each channel has one worker that is rate limited.
type NotifierService struct {
	TelegramAPI string

	httpClient   *http.Client
	tgQueue      chan telegramJob
	webhookQueue chan webhookJob
	tgLimiter    *rate.Limiter
	hookLimiter  *rate.Limiter
	wg           sync.WaitGroup

	// mu guards closed; senders hold the read lock so Close never races a send.
	mu     sync.RWMutex
	closed bool
}

func NewNotifierService() *NotifierService {
	n := &NotifierService{
		TelegramAPI:  "https://api.telegram.org",
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tgQueue:      make(chan telegramJob, 1000),
		webhookQueue: make(chan webhookJob, 1000),
		// Telegram allows roughly one message per second per chat
		tgLimiter:   rate.NewLimiter(rate.Every(1100*time.Millisecond), 1),
		hookLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	n.wg.Add(2)
	go n.startTelegramWorker()
	go n.startWebhookWorker()

	return n
}

// Close stops accepting messages and waits for the queues to drain.
func (n *NotifierService) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.tgQueue)
		close(n.webhookQueue)
	}
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *NotifierService) startTelegramWorker() {
	defer n.wg.Done()
	logrus.Info("[Notifier] Telegram worker started")

	for job := range n.tgQueue {
		_ = n.tgLimiter.Wait(context.Background())
		if err := n.sendTelegram(context.Background(), job.Token, job.ChatID, job.Message); err != nil {
			logrus.Errorf("[Notifier] Telegram delivery failed: %v", err)
		}
	}
}

func (n *NotifierService) startWebhookWorker() {
	defer n.wg.Done()
	logrus.Info("[Notifier] Webhook worker started")

	for job := range n.webhookQueue {
		_ = n.hookLimiter.Wait(context.Background())
		if err := n.sendWebhook(context.Background(), job.URL, job.Message, job.User, job.Password); err != nil {
			logrus.Errorf("[Notifier] Webhook delivery failed: %v", err)
		}
	}
}

// Notify renders data with the user's template and queues it on every enabled channel.
// It reports whether at least one channel accepted the message.
func (n *NotifierService) Notify(prefs domain.UserPreferences, data MessageData) bool {
	if !prefs.HasChannel() {
		return false
	}
	if data.Time == "" {
		data.Time = time.Now().Format("2006-01-02 15:04:05")
	}

	tmplStr := prefs.MessageTemplate
	if tmplStr == "" {
		tmplStr = defaultMessageTpl
	}
	msg, err := renderTemplate(tmplStr, data)
	if err != nil {
		logrus.Errorf("[Notifier] Template error, falling back to default: %v", err)
		msg, _ = renderTemplate(defaultMessageTpl, data)
	}

	return n.enqueue(prefs, msg)
}

func (n *NotifierService) enqueue(prefs domain.UserPreferences, msg string) (queued bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		logrus.Warn("[Queue] Notifier closed, dropping message")
		return false
	}

	if prefs.TelegramEnabled && prefs.TelegramBotToken != "" && prefs.TelegramChatID != "" {
		select {
		case n.tgQueue <- telegramJob{Token: prefs.TelegramBotToken, ChatID: prefs.TelegramChatID, Message: msg}:
			logrus.Debugf("[Queue] Telegram message queued (pending: %d)", len(n.tgQueue))
			queued = true
		default:
			logrus.Warn("[Queue] Telegram queue full, dropping message")
		}
	}

	if prefs.WebhookEnabled && prefs.WebhookURL != "" {
		select {
		case n.webhookQueue <- webhookJob{URL: prefs.WebhookURL, Message: msg, User: prefs.WebhookUser, Password: prefs.WebhookPassword}:
			logrus.Debugf("[Queue] Webhook message queued (pending: %d)", len(n.webhookQueue))
			queued = true
		default:
			logrus.Warn("[Queue] Webhook queue full, dropping message")
		}
	}
	return queued
}

// SendTest delivers a test message synchronously so the caller sees channel errors.
func (n *NotifierService) SendTest(ctx context.Context, prefs domain.UserPreferences) error {
	if !prefs.HasChannel() {
		return domain.NewValidationError("no notification channel is enabled")
	}

	var errs []error
	if prefs.TelegramEnabled {
		if err := n.sendTelegram(ctx, prefs.TelegramBotToken, prefs.TelegramChatID, testMessage); err != nil {
			errs = append(errs, fmt.Errorf("telegram: %w", err))
		}
	}
	if prefs.WebhookEnabled {
		if err := n.sendWebhook(ctx, prefs.WebhookURL, testMessage, prefs.WebhookUser, prefs.WebhookPassword); err != nil {
			errs = append(errs, fmt.Errorf("webhook: %w", err))
		}
	}
	return errors.Join(errs...)
}

// sendWebhook posts {"text": message}, the payload Slack, Discord and Teams accept.
func (n *NotifierService) sendWebhook(ctx context.Context, url, message, user, password string) error {
	jsonBytes, _ := json.Marshal(map[string]string{"text": message})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if user != "" || password != "" {
		req.SetBasicAuth(user, password)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status code %d", resp.StatusCode)
	}
	return nil
}

func (n *NotifierService) sendTelegram(ctx context.Context, token, chatID, message string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", n.TelegramAPI, token)
	jsonBytes, _ := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       message,
		"parse_mode": "HTML",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram status code %d", resp.StatusCode)
	}
	return nil
}

func renderTemplate(tmplStr string, data any) (string, error) {
	t, err := template.New("notify").Parse(tmplStr)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
