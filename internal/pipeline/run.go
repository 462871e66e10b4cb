// Package pipeline wires the whole run together: gather raw inputs, extract
// records, normalize, optionally enrich, map to CRM properties, let the
// operator review, then submit and record the result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"linklead-engine/internal/config"
	"linklead-engine/internal/domain"
	"linklead-engine/internal/enrich"
	"linklead-engine/internal/extract"
	"linklead-engine/internal/hubspot"
	"linklead-engine/internal/mapping"
	"linklead-engine/internal/normalize"
	"linklead-engine/internal/pdfdoc"
	"linklead-engine/internal/scrape"
	"linklead-engine/internal/scrape/email"
	"linklead-engine/internal/secrets"
	"linklead-engine/internal/store"
	"linklead-engine/internal/ui"
)

// ErrNoJobSource means the invocation named nothing to read a job from.
var ErrNoJobSource = errors.New("no job source given (pdf, url, or email)")

// ErrRunInProgress means another invocation holds the run lock. Concurrent
// runs would race on the browser state file and the history db.
var ErrRunInProgress = errors.New("another run is already in progress")

// Inputs names where this run's job and company data come from. PDF beats
// URL beats email when several are set for the same record.
type Inputs struct {
	JobPDF     string
	CompanyPDF string
	JobURL     string
	CompanyURL string
	FromEmail  bool

	// OutputPath, when set, writes the mapped payload to a file (.json or
	// yaml by extension) before the review step.
	OutputPath string
}

// Pipeline holds the collaborators a run needs. Sink may be nil for a dry
// run; Store may be nil when history is unwanted (tests).
type Pipeline struct {
	Config    config.Config
	Enricher  enrich.Enricher
	Presenter ui.Presenter
	Sink      *hubspot.Client
	Store     *store.DB
}

// Run executes one extraction-to-CRM pass. Extraction and scraping failures
// abort the run; enrichment failures degrade to the original text inside
// enrich.Apply.
func (p *Pipeline) Run(ctx context.Context, in Inputs) error {
	if in.JobPDF == "" && in.JobURL == "" && !in.FromEmail {
		return ErrNoJobSource
	}

	unlock, err := p.acquireRunLock()
	if err != nil {
		return err
	}
	defer unlock()

	job, company, err := p.gather(ctx, in)
	if err != nil {
		return err
	}

	rec := normalize.Combine(job, company)
	normalize.CleanAll(&rec)

	enrich.Apply(ctx, p.Enricher, &rec)

	payload := mapping.Build(rec, p.Config.MapperDefaults())

	if in.OutputPath != "" {
		if err := writePayload(in.OutputPath, payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		log.Printf("[pipeline] payload written to %s", in.OutputPath)
	}

	payload, decision, err := p.Presenter.Review(payload)
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if decision != ui.DecisionSend {
		log.Printf("[pipeline] submission aborted by operator")
		p.record(ctx, rec, "", "", false)
		return nil
	}

	if p.Sink == nil {
		log.Printf("[pipeline] sink disabled, nothing submitted")
		p.record(ctx, rec, "", "", false)
		return nil
	}

	companyID, dealID, err := p.Sink.Submit(ctx, payload)
	if err != nil {
		// The company may already exist upstream; record what we know.
		p.record(ctx, rec, companyID, "", false)
		return fmt.Errorf("hubspot submit: %w", err)
	}

	log.Printf("[pipeline] submitted: company=%s deal=%s", companyID, dealID)
	p.record(ctx, rec, companyID, dealID, true)
	return nil
}

// gather resolves the job and company records from whatever sources the
// invocation named. The company side is optional; the mapper falls back to
// the job's company name.
func (p *Pipeline) gather(ctx context.Context, in Inputs) (domain.JobRecord, domain.CompanyRecord, error) {
	var job domain.JobRecord
	var company domain.CompanyRecord

	// Scraping is lazy: the browser only starts when a URL source is used.
	var session *scrape.Session
	startSession := func() (*scrape.Session, error) {
		if session != nil {
			return session, nil
		}
		s, err := p.newSession()
		if err != nil {
			return nil, err
		}
		if err := s.EnsureLoggedIn(ctx); err != nil {
			s.Close()
			return nil, err
		}
		session = s
		return session, nil
	}
	defer func() {
		if session != nil {
			if err := session.Close(); err != nil {
				log.Printf("[pipeline] browser close: %v", err)
			}
		}
	}()

	// When both sides come from URLs, scrape them concurrently in two tabs.
	if in.JobPDF == "" && in.CompanyPDF == "" && in.JobURL != "" && in.CompanyURL != "" {
		s, err := startSession()
		if err != nil {
			return job, company, err
		}
		jobText, companyText, err := s.ScrapeAll(ctx, in.JobURL, in.CompanyURL)
		if err != nil {
			return job, company, err
		}
		if job, err = extract.ParseJob(jobText, in.JobURL); err != nil {
			return job, company, err
		}
		company, err = extract.ParseCompany(companyText, in.CompanyURL)
		return job, company, err
	}

	switch {
	case in.JobPDF != "":
		text, err := pdfdoc.Text(in.JobPDF)
		if err != nil {
			return job, company, fmt.Errorf("job pdf: %w", err)
		}
		job, err = extract.ParseJob(text, in.JobPDF)
		if err != nil {
			return job, company, err
		}

	case in.JobURL != "":
		s, err := startSession()
		if err != nil {
			return job, company, err
		}
		text, err := s.ScrapeJob(ctx, in.JobURL)
		if err != nil {
			return job, company, err
		}
		job, err = extract.ParseJob(text, in.JobURL)
		if err != nil {
			return job, company, err
		}

	case in.FromEmail:
		j, err := p.jobFromEmail(ctx)
		if err != nil {
			return job, company, err
		}
		job = j
	}

	switch {
	case in.CompanyPDF != "":
		text, err := pdfdoc.Text(in.CompanyPDF)
		if err != nil {
			return job, company, fmt.Errorf("company pdf: %w", err)
		}
		company, err = extract.ParseCompany(text, in.CompanyPDF)
		if err != nil {
			return job, company, err
		}

	case in.CompanyURL != "":
		s, err := startSession()
		if err != nil {
			return job, company, err
		}
		text, err := s.ScrapeCompany(ctx, in.CompanyURL)
		if err != nil {
			return job, company, err
		}
		company, err = extract.ParseCompany(text, in.CompanyURL)
		if err != nil {
			return job, company, err
		}
	}

	return job, company, nil
}

func (p *Pipeline) newSession() (*scrape.Session, error) {
	emailAddr, password, err := secrets.LinkedInCredentials()
	if err != nil {
		// A saved state file can carry a session without credentials.
		log.Printf("[pipeline] linkedin credentials unavailable, relying on saved session: %v", err)
	}

	s := scrape.NewSession(scrape.Config{
		Headless:  p.Config.Browser.Headless,
		StateFile: p.stateFilePath(),
		Email:     emailAddr,
		Password:  password,
	})
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// jobFromEmail pulls unseen alert emails and takes the newest card.
func (p *Pipeline) jobFromEmail(ctx context.Context) (domain.JobRecord, error) {
	if !p.Config.Email.Enabled {
		return domain.JobRecord{}, errors.New("email source requested but email.enabled=false in config")
	}

	password, err := secrets.IMAPPassword()
	if err != nil {
		return domain.JobRecord{}, err
	}

	jobs, err := email.FetchAlertJobs(ctx, email.Config{
		Host:        p.Config.Email.IMAPHost,
		Port:        p.Config.Email.IMAPPort,
		Username:    p.Config.Email.Username,
		Password:    password,
		Mailbox:     p.Config.Email.Mailbox,
		MaxMessages: p.Config.Email.MaxMessages,
	})
	if err != nil {
		return domain.JobRecord{}, fmt.Errorf("fetch alerts: %w", err)
	}
	if len(jobs) == 0 {
		return domain.JobRecord{}, errors.New("no job alert emails found")
	}
	if len(jobs) > 1 {
		log.Printf("[pipeline] %d alert jobs found, using the first (%q at %q)",
			len(jobs), jobs[0].Title, jobs[0].Company)
	}
	return jobs[0].Record(), nil
}

// record writes the run to local history. History failures are logged, never
// fatal: the CRM submission already happened.
func (p *Pipeline) record(ctx context.Context, rec domain.CombinedRecord, companyID, dealID string, submitted bool) {
	if p.Store == nil {
		return
	}
	source := rec.Job.Source
	if source == "" {
		source = rec.Company.Source
	}
	_, err := p.Store.RecordRun(ctx, store.Run{
		Source:      source,
		JobTitle:    rec.Job.Title,
		CompanyName: rec.Company.Name,
		CompanyID:   companyID,
		DealID:      dealID,
		Submitted:   submitted,
	})
	if err != nil {
		log.Printf("[pipeline] record run: %v", err)
	}
}

func (p *Pipeline) acquireRunLock() (func(), error) {
	dir := p.Config.App.DataDir
	if dir == "" {
		dir = "."
	}
	fl := flock.New(filepath.Join(dir, "linklead.lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("run lock: %w", err)
	}
	if !locked {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("[pipeline] release run lock: %v", err)
		}
	}, nil
}

func (p *Pipeline) stateFilePath() string {
	sf := p.Config.Browser.StateFile
	if sf == "" || filepath.IsAbs(sf) {
		return sf
	}
	if p.Config.App.DataDir == "" {
		return sf
	}
	return filepath.Join(p.Config.App.DataDir, sf)
}

// writePayload serialises the mapped payload as json or yaml by extension.
func writePayload(path string, payload mapping.Payload) error {
	var (
		b   []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err = json.MarshalIndent(payload, "", "  ")
	} else {
		b, err = yaml.Marshal(payload)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
