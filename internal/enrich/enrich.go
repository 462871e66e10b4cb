// Package enrich optionally rewrites long description fields through a local
// language model. Enrichment is an optimization: any failure falls back to
// the original text and the pipeline carries on.
package enrich

import (
	"context"
	"log"
	"strings"

	"linklead-engine/internal/domain"
)

// Section tells the enricher what kind of description it is rewriting, so it
// can pick the matching prompt.
type Section string

const (
	SectionJob     Section = "job"
	SectionCompany Section = "company"
)

// Enricher rewrites one block of text. Implementations must be safe to call
// on already-clean text.
type Enricher interface {
	Enrich(ctx context.Context, text string, section Section) (string, error)
}

// Disabled is the identity enricher used when cleanup is turned off.
type Disabled struct{}

func (Disabled) Enrich(_ context.Context, text string, _ Section) (string, error) {
	return text, nil
}

// FromConfig picks the enricher for the configured method. Disabled config
// and an unrecognized method string take the same path: identity enricher
// plus a log line, never an error.
func FromConfig(enabled bool, method, baseURL, model string) Enricher {
	if !enabled {
		return Disabled{}
	}
	switch method {
	case "", "ollama":
		return NewOllama(baseURL, model)
	default:
		log.Printf("[enrich] unsupported llm method %q, description cleanup disabled", method)
		return Disabled{}
	}
}

// Apply rewrites the job and company descriptions in place. Errors from the
// enricher are logged and the original text kept; enrichment never fails
// the run.
func Apply(ctx context.Context, e Enricher, rec *domain.CombinedRecord) {
	if e == nil {
		return
	}
	if _, off := e.(Disabled); off {
		return
	}

	rec.Job.Description = enrichOne(ctx, e, rec.Job.Description, SectionJob)
	rec.Company.Description = enrichOne(ctx, e, rec.Company.Description, SectionCompany)
}

func enrichOne(ctx context.Context, e Enricher, text string, section Section) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out, err := e.Enrich(ctx, text, section)
	if err != nil {
		log.Printf("[enrich] %s description cleanup failed, keeping original: %v", section, err)
		return text
	}
	if strings.TrimSpace(out) == "" {
		// A model that returns nothing must not blank the record.
		return text
	}
	return out
}
