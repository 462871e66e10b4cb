// Package secrets resolves credentials from the OS keychain with an
// environment variable fallback, so nothing sensitive lives in config.yml.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "linklead"

const (
	AccountHubSpotToken   = "hubspot_token"
	AccountLinkedInEmail  = "linkedin_email"
	AccountLinkedInPasswd = "linkedin_password"
	AccountIMAPPassword   = "imap_password"
	envHubSpotToken       = "HUBSPOT_API_KEY"
	envLinkedInEmail      = "LINKEDIN_EMAIL"
	envLinkedInPasswd     = "LINKEDIN_PASSWORD"
	envIMAPPassword       = "LINKLEAD_IMAP_PASSWORD"
)

// get tries the keychain first, then the environment.
func get(account, envVar string) (string, error) {
	if v, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v, nil
	}
	return "", errors.New(account + " not found (set it in the keychain or via " + envVar + ")")
}

func HubSpotToken() (string, error) { return get(AccountHubSpotToken, envHubSpotToken) }

func LinkedInCredentials() (email, password string, err error) {
	email, err = get(AccountLinkedInEmail, envLinkedInEmail)
	if err != nil {
		return "", "", err
	}
	password, err = get(AccountLinkedInPasswd, envLinkedInPasswd)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func IMAPPassword() (string, error) { return get(AccountIMAPPassword, envIMAPPassword) }

// Set stores a secret under the service namespace.
func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

// Delete removes a stored secret.
func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
