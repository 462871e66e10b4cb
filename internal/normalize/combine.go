// Package normalize merges per-source records into the combined record the
// mapper consumes.
package normalize

import (
	"strings"

	"linklead-engine/internal/domain"
)

// Combine joins a job and a company record. Gaps in the job half are filled
// from the company half, never the other way around, and never over a value
// the job already has. Total over all inputs, including two empty records.
func Combine(job domain.JobRecord, company domain.CompanyRecord) domain.CombinedRecord {
	if job.Company == "" && company.Name != "" {
		job.Company = company.Name
	}
	if job.Industry == "" && company.Industry != "" {
		job.Industry = company.Industry
	}
	return domain.CombinedRecord{Job: job, Company: company}
}

// CleanText collapses whitespace runs (including non-breaking spaces) into
// single spaces and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// CleanAll tidies every scalar text field in place. List items are cleaned
// individually; empties produced by cleaning are dropped.
func CleanAll(rec *domain.CombinedRecord) {
	j := &rec.Job
	j.Title = CleanText(j.Title)
	j.Company = CleanText(j.Company)
	j.Location = CleanText(j.Location)
	j.EmploymentType = CleanText(j.EmploymentType)
	j.SeniorityLevel = CleanText(j.SeniorityLevel)
	j.Industry = CleanText(j.Industry)
	j.Salary = CleanText(j.Salary)
	j.Responsibilities = cleanList(j.Responsibilities)
	j.Requirements = cleanList(j.Requirements)

	c := &rec.Company
	c.Name = CleanText(c.Name)
	c.Website = CleanText(c.Website)
	c.Industry = CleanText(c.Industry)
	c.Size = CleanText(c.Size)
	c.Headquarters = CleanText(c.Headquarters)
	c.Founded = CleanText(c.Founded)
	c.Specialties = cleanList(c.Specialties)
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = CleanText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
