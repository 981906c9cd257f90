package domain

import "slices"

// SupportedLanguages are the translation codes the front end ships.
var SupportedLanguages = []string{"en", "de", "es", "fr", "it", "ja", "pt", "ru", "zh"}

var DefaultReminderDays = []int{90, 30, 14, 7, 2, 1}

// UserPreferences is stored as one JSON document per user.
type UserPreferences struct {
	Language     string `json:"language"`
	Theme        string `json:"theme"`
	DarkMode     bool   `json:"dark_mode"`
	ReminderDays []int  `json:"reminder_days"`

	// Webhook
	WebhookEnabled  bool   `json:"webhook_enabled"`
	WebhookURL      string `json:"webhook_url"`
	WebhookUser     string `json:"webhook_user"`
	WebhookPassword string `json:"webhook_password"`

	// Telegram
	TelegramEnabled  bool   `json:"telegram_enabled"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`

	// Empty means the built-in template
	MessageTemplate string `json:"message_template"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Language:     "en",
		Theme:        "lara",
		ReminderDays: slices.Clone(DefaultReminderDays),
	}
}

func (p *UserPreferences) Validate() error {
	if p.Language == "" {
		p.Language = "en"
	}
	if !slices.Contains(SupportedLanguages, p.Language) {
		return NewValidationError("unsupported language %q", p.Language)
	}
	for _, d := range p.ReminderDays {
		if d < 0 || d > 365 {
			return NewValidationError("reminder days must be between 0 and 365, got %d", d)
		}
	}
	if len(p.ReminderDays) == 0 {
		p.ReminderDays = slices.Clone(DefaultReminderDays)
	}
	if p.WebhookEnabled && p.WebhookURL == "" {
		return NewValidationError("webhook url is required when webhook is enabled")
	}
	if p.TelegramEnabled && (p.TelegramBotToken == "" || p.TelegramChatID == "") {
		return NewValidationError("telegram bot token and chat id are required when telegram is enabled")
	}
	return nil
}

// SecretMask stands in for a stored secret in API responses. A client sending it
// back leaves the stored secret unchanged.
const SecretMask = "********"

// Masked returns a copy with the webhook password and bot token hidden.
func (p UserPreferences) Masked() UserPreferences {
	if p.WebhookPassword != "" {
		p.WebhookPassword = SecretMask
	}
	if p.TelegramBotToken != "" {
		p.TelegramBotToken = SecretMask
	}
	return p
}

// HasChannel reports whether any delivery channel is configured.
func (p UserPreferences) HasChannel() bool {
	return p.WebhookEnabled || p.TelegramEnabled
}
