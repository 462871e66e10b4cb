package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// defaultYAML is written on first run when no template ships alongside the
// binary, so a bare `linklead` still produces an editable config.
const defaultYAML = `app:
  data_dir: ""

browser:
  headless: true
  state_file: browser_state.json

email:
  enabled: false
  imap_host: imap.gmail.com
  imap_port: 993
  username: ""
  mailbox: INBOX
  max_messages: 10

llm:
  enabled: false
  method: ollama
  base_url: http://127.0.0.1:11434
  model: mistral:7b-instruct

hubspot:
  api_version: v3

defaults:
  deal_stage_id: appointmentscheduled
  deal_pipeline_id: default
  deal_owner_id: ""
  # Any additional company_*/deal_* key becomes a fallback property, e.g.:
  # company_type: PROSPECT
`

// EnsureUserConfig makes sure dataDir holds a config.yml, seeding it from
// defaultPath when that template exists and from the built-in default
// otherwise. Returns the user config path.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err := os.WriteFile(userPath, []byte(defaultYAML), 0o644); err != nil {
			return "", err
		}
		return userPath, nil
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
