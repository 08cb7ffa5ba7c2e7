package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"jobsniper/internal/config"
)

const (
	// Service groups the app's secrets in the OS keychain.
	KeyringService = "jobsniper"
)

// Well-known secret names. Each is also read from the environment variable
// of the same name.
const (
	TelegramToken  = "TELEGRAM_TOKEN"
	TelegramChatID = "TELEGRAM_CHAT_ID"
	GeminiAPIKey   = "GEMINI_API_KEY"
	IMAPPassword   = "IMAP_PASSWORD"
)

var ErrNotFound = errors.New("secret not found")

// Names lists the secrets `secrets set` accepts.
func Names() []string {
	return []string{TelegramToken, TelegramChatID, GeminiAPIKey, IMAPPassword}
}

func Known(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns the secret from the environment, then the keychain.
func Get(name string) (string, error) {
	return lookup(name, name)
}

// Lookup is Get but returns "" when the secret is absent.
func Lookup(name string) string {
	v, _ := Get(name)
	return v
}

func lookup(env, account string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, nil
	}
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("keychain %s: %w", account, err)
		}
	}
	return "", fmt.Errorf("%w: %s (set it in keychain or via env)", ErrNotFound, env)
}

func Set(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

func Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	return keyring.Delete(KeyringService, name)
}

// IMAPAccount is the keychain account holding an email source's password.
func IMAPAccount(src config.Source) string {
	return fmt.Sprintf(
		"imap:%s@%s",
		src.Param("username", ""),
		src.Param("imap_host", ""),
	)
}

// SourcePassword resolves an email source's password: IMAP_PASSWORD, then
// the per-account keychain entry, then the shared IMAP_PASSWORD entry.
func SourcePassword(src config.Source) string {
	if pw, err := lookup(IMAPPassword, IMAPAccount(src)); err == nil {
		return pw
	}
	return Lookup(IMAPPassword)
}
