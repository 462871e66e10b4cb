// Package extract turns raw page or PDF text into job and company records
// using a small table of label-anchored rules. Extraction is best-effort:
// a field that doesn't match simply stays empty. The only hard failure is a
// record that comes out without its identity fields.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"linklead-engine/internal/domain"
)

// ErrMissingEssentialField is returned when extraction cannot establish a
// record's identity: title+company for a job, name for a company.
var ErrMissingEssentialField = errors.New("missing essential field")

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

func compileRules(rules []Rule) []compiledRule {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, compiledRule{Rule: r, re: r.compile()})
	}
	return out
}

var (
	jobMatchers     = compileRules(jobRules)
	companyMatchers = compileRules(companyRules)
)

// ParseJob extracts a JobRecord from raw text. source is recorded verbatim
// (file path or URL). Returns ErrMissingEssentialField when neither a usable
// title nor company could be found.
func ParseJob(text, source string) (domain.JobRecord, error) {
	rec := domain.JobRecord{Source: source}

	rec.Title, rec.Company = titleAndCompany(text)

	fields := applyRules(jobMatchers, text)
	rec.Location = fields.scalar["location"]
	rec.Description = fields.scalar["description"]
	rec.Responsibilities = fields.lists["responsibilities"]
	rec.Requirements = fields.lists["requirements"]
	rec.EmploymentType = fields.scalar["employment_type"]
	rec.SeniorityLevel = fields.scalar["seniority_level"]
	rec.Industry = fields.scalar["industry"]
	rec.Salary = fields.scalar["salary"]

	if rec.Title == "" || rec.Company == "" {
		return rec, fmt.Errorf("job %s: title/company not found: %w", source, ErrMissingEssentialField)
	}
	return rec, nil
}

// ParseCompany extracts a CompanyRecord from raw text. Returns
// ErrMissingEssentialField when no company name could be found.
func ParseCompany(text, source string) (domain.CompanyRecord, error) {
	rec := domain.CompanyRecord{Source: source}

	rec.Name = companyName(text)

	fields := applyRules(companyMatchers, text)
	rec.Website = fields.scalar["website"]
	rec.Industry = fields.scalar["industry"]
	rec.Size = fields.scalar["size"]
	rec.Headquarters = fields.scalar["headquarters"]
	rec.Founded = fields.scalar["founded"]
	rec.Description = fields.scalar["description"]
	rec.Specialties = fields.lists["specialties"]

	if rec.Name == "" {
		return rec, fmt.Errorf("company %s: name not found: %w", source, ErrMissingEssentialField)
	}
	return rec, nil
}

type fieldSet struct {
	scalar map[string]string
	lists  map[string][]string
}

func applyRules(matchers []compiledRule, text string) fieldSet {
	fs := fieldSet{
		scalar: make(map[string]string),
		lists:  make(map[string][]string),
	}
	for _, m := range matchers {
		got := m.re.FindStringSubmatch(text)
		if got == nil {
			continue
		}
		block := strings.TrimSpace(got[1])
		if block == "" {
			continue
		}
		if m.List {
			if items := m.splitItems(block); len(items) > 0 {
				fs.lists[m.Field] = items
			}
			continue
		}
		fs.scalar[m.Field] = block
	}
	return fs
}

// titleAndCompany scans for the first "X at Y" line anywhere in the text.
// Headings in exported pages and scraped top cards both use this shape.
func titleAndCompany(text string) (title, company string) {
	for _, line := range strings.Split(text, "\n") {
		if m := titleAtCompany.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	return "", ""
}

// companyName looks for the "<Name> on LinkedIn" page heading. The scraper
// emits its bundles in this shape too, so both inputs resolve the same way.
func companyName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := companyHeading.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
