package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"linklead-engine/internal/domain"
)

type stubEnricher struct {
	out string
	err error
}

func (s stubEnricher) Enrich(_ context.Context, _ string, _ Section) (string, error) {
	return s.out, s.err
}

func TestApplyRewritesDescriptions(t *testing.T) {
	rec := domain.CombinedRecord{
		Job:     domain.JobRecord{Description: "messy job text"},
		Company: domain.CompanyRecord{Description: "messy company text"},
	}

	Apply(context.Background(), stubEnricher{out: "clean"}, &rec)

	if rec.Job.Description != "clean" {
		t.Errorf("job description = %q", rec.Job.Description)
	}
	if rec.Company.Description != "clean" {
		t.Errorf("company description = %q", rec.Company.Description)
	}
}

func TestApplyKeepsOriginalOnError(t *testing.T) {
	rec := domain.CombinedRecord{
		Job: domain.JobRecord{Description: "original"},
	}

	Apply(context.Background(), stubEnricher{err: errors.New("model offline")}, &rec)

	if rec.Job.Description != "original" {
		t.Errorf("description = %q, want original kept on error", rec.Job.Description)
	}
}

func TestApplyKeepsOriginalOnEmptyOutput(t *testing.T) {
	rec := domain.CombinedRecord{
		Job: domain.JobRecord{Description: "original"},
	}

	Apply(context.Background(), stubEnricher{out: "  \n "}, &rec)

	if rec.Job.Description != "original" {
		t.Errorf("description = %q, want original kept on blank output", rec.Job.Description)
	}
}

func TestApplySkipsEmptyFields(t *testing.T) {
	rec := domain.CombinedRecord{}
	Apply(context.Background(), stubEnricher{out: "should never appear"}, &rec)
	if rec.Job.Description != "" || rec.Company.Description != "" {
		t.Errorf("empty descriptions must stay empty: %+v", rec)
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(false, "ollama", "", "").(Disabled); !ok {
		t.Error("disabled config must yield the identity enricher")
	}
	// An unrecognized method degrades the same way, it never errors.
	if _, ok := FromConfig(true, "quantum", "", "").(Disabled); !ok {
		t.Error("unknown method must yield the identity enricher")
	}
	if _, ok := FromConfig(true, "ollama", "http://x", "m").(*Ollama); !ok {
		t.Error("ollama method must yield the ollama client")
	}
}

func TestOllamaEnrich(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		json.NewEncoder(w).Encode(generateResponse{Response: " cleaned text \n"})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model")
	out, err := o.Enrich(context.Background(), "dirty", SectionJob)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out != "cleaned text" {
		t.Errorf("out = %q", out)
	}
}

func TestOllamaEnrichErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "missing")
	if _, err := o.Enrich(context.Background(), "text", SectionCompany); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
