package normalize

import (
	"reflect"
	"testing"

	"linklead-engine/internal/domain"
)

func TestCombineCrossFill(t *testing.T) {
	job := domain.JobRecord{Title: "Dev"}
	company := domain.CompanyRecord{Name: "Acme", Industry: "Tech"}

	rec := Combine(job, company)
	if rec.Job.Company != "Acme" {
		t.Errorf("job.company = %q, want cross-filled from company name", rec.Job.Company)
	}
	if rec.Job.Industry != "Tech" {
		t.Errorf("job.industry = %q, want cross-filled", rec.Job.Industry)
	}
}

func TestCombineNeverOverwrites(t *testing.T) {
	job := domain.JobRecord{Company: "Other", Industry: "Gaming"}
	company := domain.CompanyRecord{Name: "Acme", Industry: "Tech"}

	rec := Combine(job, company)
	if rec.Job.Company != "Other" {
		t.Errorf("job.company = %q, want job's own value kept", rec.Job.Company)
	}
	if rec.Job.Industry != "Gaming" {
		t.Errorf("job.industry = %q, want job's own value kept", rec.Job.Industry)
	}
}

func TestCombineIsOneDirectional(t *testing.T) {
	job := domain.JobRecord{Company: "Acme", Industry: "Tech"}
	rec := Combine(job, domain.CompanyRecord{})
	if rec.Company.Name != "" || rec.Company.Industry != "" {
		t.Errorf("company half must never be filled from the job: %+v", rec.Company)
	}
}

func TestCombineEmptyInputs(t *testing.T) {
	rec := Combine(domain.JobRecord{}, domain.CompanyRecord{})
	if !rec.Job.IsZero() || !rec.Company.IsZero() {
		t.Errorf("combining empties must stay empty: %+v", rec)
	}
}

func TestCleanText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hello   world  ", "hello world"},
		{"non\u00a0breaking\u00a0space", "non breaking space"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanAll(t *testing.T) {
	rec := domain.CombinedRecord{
		Job: domain.JobRecord{
			Title:            "  Senior\u00a0Engineer ",
			Company:          " Acme  Corp ",
			Description:      "line one\nline two",
			Responsibilities: []string{" a ", "", "  ", "b"},
		},
		Company: domain.CompanyRecord{
			Name:        "Acme\tCorp",
			Specialties: []string{"x ", " "},
		},
	}

	CleanAll(&rec)

	if rec.Job.Title != "Senior Engineer" {
		t.Errorf("title = %q", rec.Job.Title)
	}
	if rec.Job.Company != "Acme Corp" {
		t.Errorf("company = %q", rec.Job.Company)
	}
	// Descriptions keep their line structure for the enricher and CRM.
	if rec.Job.Description != "line one\nline two" {
		t.Errorf("description = %q, want untouched", rec.Job.Description)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(rec.Job.Responsibilities, want) {
		t.Errorf("responsibilities = %#v", rec.Job.Responsibilities)
	}
	if rec.Company.Name != "Acme Corp" {
		t.Errorf("name = %q", rec.Company.Name)
	}
	if want := []string{"x"}; !reflect.DeepEqual(rec.Company.Specialties, want) {
		t.Errorf("specialties = %#v", rec.Company.Specialties)
	}
}
