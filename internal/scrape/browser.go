// Package scrape drives a headless Chrome session against LinkedIn job and
// company pages and turns them into the plain-text bundles the extractor
// consumes. Cookies are persisted between runs so login survives restarts.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"
)

const (
	loginURL = "https://www.linkedin.com/login"
	feedURL  = "https://www.linkedin.com/feed/"

	navTimeout   = 30 * time.Second
	loginTimeout = 90 * time.Second // leaves room for a manual 2FA prompt in headful mode
)

// ErrLoginFailed means credentials were rejected or a checkpoint (2FA,
// captcha) blocked the automated login.
var ErrLoginFailed = errors.New("linkedin login failed")

// Config configures a scraping session.
type Config struct {
	// Headless runs Chrome without a window. Turn it off when a login
	// checkpoint needs a human.
	Headless bool

	// StateFile persists cookies between runs so we rarely re-login.
	StateFile string

	Email    string
	Password string
}

// Session owns one Chrome process and the logged-in state.
type Session struct {
	cfg     Config
	lnch    *launcher.Launcher
	browser *rod.Browser

	// limiter paces page navigations; hammering linkedin gets the
	// account flagged quickly.
	limiter *rate.Limiter
}

func NewSession(cfg Config) *Session {
	return &Session{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// Start launches Chrome, connects, and restores saved cookies if present.
func (s *Session) Start() error {
	l := launcher.New().
		Headless(s.cfg.Headless).
		Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}
	s.lnch = l

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("connect chrome: %w", err)
	}
	s.browser = b
	log.Printf("[scrape] chrome launched (headless=%v)", s.cfg.Headless)

	if err := s.loadState(); err != nil {
		log.Printf("[scrape] could not restore browser state: %v", err)
	}
	return nil
}

// Close saves cookies and shuts the browser down.
func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}
	if err := s.saveState(); err != nil {
		log.Printf("[scrape] could not save browser state: %v", err)
	}
	err := s.browser.Close()
	s.browser = nil
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return err
}

// EnsureLoggedIn navigates to the feed and, if LinkedIn bounces us to the
// login page, performs a credential login and saves the new cookies.
func (s *Session) EnsureLoggedIn(ctx context.Context) error {
	if s.browser == nil {
		return errors.New("session not started")
	}

	page, err := s.newTab(ctx, feedURL, navTimeout)
	if err != nil {
		return err
	}
	defer page.Close()

	if !redirectedToLogin(page) {
		log.Printf("[scrape] already logged in")
		return nil
	}

	log.Printf("[scrape] not logged in, submitting credentials")
	if err := s.login(ctx, page); err != nil {
		return err
	}
	if err := s.saveState(); err != nil {
		log.Printf("[scrape] could not save browser state after login: %v", err)
	}
	return nil
}

func (s *Session) login(ctx context.Context, page *rod.Page) error {
	if s.cfg.Email == "" || s.cfg.Password == "" {
		return fmt.Errorf("%w: no credentials configured", ErrLoginFailed)
	}

	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	p := page.Context(loginCtx)

	if err := p.Navigate(loginURL); err != nil {
		return fmt.Errorf("navigate login page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	if err := fill(p, "#username", s.cfg.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if err := fill(p, "#password", s.cfg.Password); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	btn, err := p.Timeout(10 * time.Second).Element(`button[type="submit"]`)
	if err != nil {
		return fmt.Errorf("%w: submit button not found: %v", ErrLoginFailed, err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	// LinkedIn may chain redirects (checkpoint, feed). Wait for the dust
	// to settle, then check where we ended up.
	if err := p.WaitLoad(); err != nil {
		log.Printf("[scrape] post-login load wait: %v", err)
	}
	deadline := time.Now().Add(loginTimeout)
	for time.Now().Before(deadline) {
		if !redirectedToLogin(p) && !onCheckpoint(p) {
			log.Printf("[scrape] login succeeded")
			return nil
		}
		select {
		case <-loginCtx.Done():
			return fmt.Errorf("%w: %v", ErrLoginFailed, loginCtx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("%w: still on login/checkpoint page (2FA or captcha?)", ErrLoginFailed)
}

func fill(page *rod.Page, selector, value string) error {
	el, err := page.Timeout(10 * time.Second).Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func redirectedToLogin(page *rod.Page) bool {
	info, err := page.Info()
	if err != nil {
		return false
	}
	return strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "/uas/")
}

func onCheckpoint(page *rod.Page) bool {
	info, err := page.Info()
	if err != nil {
		return false
	}
	return strings.Contains(info.URL, "/checkpoint/")
}

// newTab opens a stealth tab and navigates it, respecting the pacing limiter.
func (s *Session) newTab(ctx context.Context, pageURL string, timeout time.Duration) (*rod.Page, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Printf("[scrape] load wait for %s: %v", pageURL, err)
	}
	return page, nil
}

// pageHTML serialises the rendered DOM, which includes content injected
// after load by linkedin's client-side rendering.
func pageHTML(ctx context.Context, page *rod.Page) (string, error) {
	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("read dom: %w", err)
	}
	return res.Value.Str(), nil
}

// loadState restores cookies from the state file.
func (s *Session) loadState() error {
	if s.cfg.StateFile == "" {
		return nil
	}
	b, err := os.ReadFile(s.cfg.StateFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var cookies []*proto.NetworkCookieParam
	if err := json.Unmarshal(b, &cookies); err != nil {
		return fmt.Errorf("parse %s: %w", s.cfg.StateFile, err)
	}
	if err := s.browser.SetCookies(cookies); err != nil {
		return err
	}
	log.Printf("[scrape] restored %d cookies from %s", len(cookies), s.cfg.StateFile)
	return nil
}

// saveState snapshots cookies to the state file.
func (s *Session) saveState() error {
	if s.cfg.StateFile == "" || s.browser == nil {
		return nil
	}
	cookies, err := s.browser.GetCookies()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(proto.CookiesToParams(cookies), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.cfg.StateFile, b, 0o600)
}
