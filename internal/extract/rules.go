package extract

import (
	"regexp"
	"strings"
)

// Rule describes how one field is pulled out of unstructured page text.
// A rule with Terminators captures a whole section: everything between one of
// its labels and the next known section label (or end of text). A rule
// without Terminators captures the remainder of the label's own line.
// Label matching is case-insensitive either way.
type Rule struct {
	Field       string
	Labels      []string
	Terminators []string // empty => single-line value
	List        bool     // split captured block on bullet markers
	CommaSplit  bool     // additionally split list items on commas
}

var jobRules = []Rule{
	{
		Field:  "location",
		Labels: []string{"Location", "office"},
	},
	{
		Field:       "description",
		Labels:      []string{"About the job", "Job description"},
		Terminators: []string{"Responsibilities", "Requirements", "Qualifications", "About the company"},
	},
	{
		Field:       "responsibilities",
		Labels:      []string{"Responsibilities", "What you'll do"},
		Terminators: []string{"Requirements", "Qualifications", "About the company", "Benefits"},
		List:        true,
	},
	{
		Field:       "requirements",
		Labels:      []string{"Requirements", "Qualifications"},
		Terminators: []string{"Nice to have", "Preferred", "Benefits", "About the company"},
		List:        true,
	},
	{
		Field:  "employment_type",
		Labels: []string{"Job Type", "Employment Type"},
	},
	{
		Field:  "seniority_level",
		Labels: []string{"Seniority Level"},
	},
	{
		Field:  "industry",
		Labels: []string{"Industry"},
	},
	{
		Field:  "salary",
		Labels: []string{"Salary", "Compensation"},
	},
}

var companyRules = []Rule{
	{
		Field:  "website",
		Labels: []string{"Website", "Homepage"},
	},
	{
		Field:  "industry",
		Labels: []string{"Industry"},
	},
	{
		Field:  "size",
		Labels: []string{"Company size", "Employees"},
	},
	{
		Field:  "headquarters",
		Labels: []string{"Headquarters", "Location"},
	},
	{
		Field:  "founded",
		Labels: []string{"Founded"},
	},
	{
		Field:       "description",
		Labels:      []string{"About us", "About", "Overview"},
		Terminators: []string{"Specialties", "Founded", "Website", "Industry"},
	},
	{
		Field:       "specialties",
		Labels:      []string{"Specialties"},
		Terminators: []string{"Website", "Industry", "Company size", "Headquarters"},
		List:        true,
		CommaSplit:  true,
	},
}

// titleAtCompany picks the job title and company name off a single "X at Y"
// line. Case-sensitive " at " on purpose: lowercase "at" inside sentences is
// common enough that an insensitive match would grab prose. Company names
// containing " at " still mislead this; that is a known limitation of the
// pattern, not something we try to outsmart.
var titleAtCompany = regexp.MustCompile(`^\s*(.+?)\s+at\s+(.+?)\s*$`)

// companyHeading matches the "<Name> on LinkedIn" page heading.
var companyHeading = regexp.MustCompile(`(?i)^\s*(.+?)\s+on LinkedIn\b`)

// bulletSplit separates list blocks on bullet chars, leading dashes/stars,
// and "1."-style enumeration.
var bulletSplit = regexp.MustCompile(`•|\n\s*-|\n\s*\*|\n\s*\d+\.`)

// compile turns a Rule into its matching regexp. Section rules capture
// lazily up to the nearest terminator label or end of text; line rules
// capture to end of line.
func (r Rule) compile() *regexp.Regexp {
	labels := make([]string, len(r.Labels))
	for i, l := range r.Labels {
		labels[i] = regexp.QuoteMeta(l)
	}
	alt := strings.Join(labels, "|")

	if len(r.Terminators) == 0 {
		return regexp.MustCompile(`(?i)\b(?:` + alt + `)\b[ \t]*:?[ \t]*([^\n]+)`)
	}

	terms := make([]string, len(r.Terminators))
	for i, t := range r.Terminators {
		terms[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(
		`(?is)\b(?:` + alt + `)\b[ \t]*[:\n]\s*(.+?)(?:\n[ \t]*(?:` + strings.Join(terms, "|") + `)\b|$)`,
	)
}

// splitItems breaks a captured list block into trimmed non-empty items.
func (r Rule) splitItems(block string) []string {
	parts := bulletSplit.Split(block, -1)
	if r.CommaSplit {
		var expanded []string
		for _, p := range parts {
			expanded = append(expanded, strings.Split(p, ",")...)
		}
		parts = expanded
	}
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
