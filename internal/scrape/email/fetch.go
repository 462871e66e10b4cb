// Package email pulls LinkedIn job-alert emails over IMAP and parses the
// job cards out of their HTML bodies. Alerts carry a title, company,
// location, sometimes a salary, and the job URL; full descriptions still
// need the page itself.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Config holds the IMAP connection settings. Password comes from the
// keychain, everything else from config.yml.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Mailbox     string
	MaxMessages int
}

func (c Config) addr() string {
	host := c.Host
	port := c.Port
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// FetchAlertJobs connects, scans unseen messages for LinkedIn job alerts,
// parses the job cards, and marks processed alert emails as seen. Non-alert
// messages are left untouched.
func FetchAlertJobs(ctx context.Context, cfg Config) ([]AlertJob, error) {
	if cfg.Host == "" || cfg.Username == "" {
		return nil, errors.New("imap host/username is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("imap password is required")
	}

	c, err := imapclient.DialTLS(cfg.addr(), &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", cfg.addr(), err)
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[email] imap logout: %v", err)
		}
		_ = c.Close()
	}()

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, cfg.MaxMessages)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	var jobs []AlertJob
	var processed []imap.UID

	for _, m := range msgs {
		htmlBody := htmlPart(m.raw)
		if !looksLikeJobAlert(m.from, m.subject, htmlBody) {
			continue
		}

		parsed, err := ParseAlertHTML(htmlBody)
		if err != nil {
			log.Printf("[email] alert parse (uid %d): %v", m.uid, err)
			continue
		}
		log.Printf("[email] %q: %d job cards", m.subject, len(parsed))
		jobs = append(jobs, parsed...)
		processed = append(processed, m.uid)
	}

	if len(processed) > 0 {
		if err := markSeen(c, processed); err != nil {
			return jobs, fmt.Errorf("mark seen: %w", err)
		}
	}
	return jobs, nil
}

type message struct {
	uid     imap.UID
	from    string
	subject string
	raw     []byte
}

// fetchUnseen pulls up to max unseen messages, newest first. BODY.PEEK[] is
// used so fetching alone never flips \Seen.
func fetchUnseen(ctx context.Context, c *imapclient.Client, max int) ([]message, error) {
	if max <= 0 {
		max = 50
	}

	// Alerts older than this are stale leads anyway.
	cutoff := time.Now().AddDate(0, -3, 0)

	searchData, err := c.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]message, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		m := message{uid: buf.UID}
		if buf.Envelope != nil {
			m.subject = buf.Envelope.Subject
			if len(buf.Envelope.From) > 0 {
				m.from = strings.TrimSpace(buf.Envelope.From[0].Addr())
			}
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			m.raw = append([]byte(nil), b...)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// markSeen flags processed alert emails. Store has no Wait; Close returns
// the final status.
func markSeen(c *imapclient.Client, uids []imap.UID) error {
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	return cmd.Close()
}

func looksLikeJobAlert(from, subject, htmlBody string) bool {
	if strings.Contains(strings.ToLower(from), "jobalerts-noreply") {
		return true
	}
	s := strings.ToLower(subject)
	if strings.Contains(s, "job alert") || strings.Contains(s, "linkedin") {
		b := strings.ToLower(htmlBody)
		return strings.Contains(b, "linkedin.com/comm/jobs/view") ||
			strings.Contains(b, "linkedin.com/jobs/view")
	}
	return false
}
