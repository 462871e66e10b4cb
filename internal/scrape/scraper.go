package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ScrapeJob fetches a job posting and returns the extractor-ready text bundle.
func (s *Session) ScrapeJob(ctx context.Context, jobURL string) (string, error) {
	html, err := s.fetch(ctx, jobURL)
	if err != nil {
		return "", err
	}
	text, err := jobBundle(html, jobURL)
	if err != nil {
		return "", err
	}
	log.Printf("[scrape] job page scraped (%d chars) %s", len(text), jobURL)
	return text, nil
}

// ScrapeCompany fetches a company's about page and returns the text bundle.
// Plain company URLs are pointed at /about/, where the facts live.
func (s *Session) ScrapeCompany(ctx context.Context, companyURL string) (string, error) {
	html, err := s.fetch(ctx, aboutURL(companyURL))
	if err != nil {
		return "", err
	}
	text, err := companyBundle(html, companyURL)
	if err != nil {
		return "", err
	}
	log.Printf("[scrape] company page scraped (%d chars) %s", len(text), companyURL)
	return text, nil
}

// ScrapeAll fetches the job and company pages concurrently in separate tabs.
func (s *Session) ScrapeAll(ctx context.Context, jobURL, companyURL string) (jobText, companyText string, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.ScrapeJob(gctx, jobURL)
		if err != nil {
			return fmt.Errorf("job page: %w", err)
		}
		jobText = t
		return nil
	})
	g.Go(func() error {
		t, err := s.ScrapeCompany(gctx, companyURL)
		if err != nil {
			return fmt.Errorf("company page: %w", err)
		}
		companyText = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return jobText, companyText, nil
}

func (s *Session) fetch(ctx context.Context, pageURL string) (string, error) {
	page, err := s.newTab(ctx, pageURL, navTimeout)
	if err != nil {
		return "", err
	}
	defer page.Close()

	return pageHTML(ctx, page)
}

func aboutURL(companyURL string) string {
	trimmed := strings.TrimRight(companyURL, "/")
	if strings.HasSuffix(trimmed, "/about") {
		return trimmed + "/"
	}
	return trimmed + "/about/"
}
