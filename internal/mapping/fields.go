package mapping

import (
	"strings"

	"linklead-engine/internal/domain"
)

// FieldMap is one (HubSpot property, source field) pair. Tables are ordered
// slices so mapping output is deterministic run to run.
type FieldMap struct {
	HubSpot string
	Source  string
}

// companyFields maps flattened record fields onto standard HubSpot company
// properties.
var companyFields = []FieldMap{
	{"name", "company_name"},
	{"description", "company_description"},
	{"website", "company_website"},
	{"industry", "company_industry"},
	{"linkedin_company_page", "company_url"},
	{"city", "company_headquarters"},
	{"size", "company_size"},
	{"founded_year", "company_founded"},
	{"specialties", "company_specialties"},
}

// dealFields maps flattened record fields onto HubSpot deal properties.
var dealFields = []FieldMap{
	{"dealname", "job_title"},
	{"description", "job_description"},
	{"linkedin_job_url", "job_url"},
	{"employment_type", "job_employment_type"},
	{"experience_level", "job_experience_level"},
	{"location", "job_location"},
	{"salary_range", "job_salary"},
	{"industry", "job_industry"},
}

// Well-known defaults keys set unconditionally on deals, exempt from the
// generic deal_ prefix pass.
const (
	keyDealStage    = "deal_stage_id"
	keyDealPipeline = "deal_pipeline_id"
	keyDealOwner    = "deal_owner_id"
)

// flatten projects a combined record into the flat, prefixed field names the
// mapping tables reference. Lists are joined; emptiness is preserved (the
// mapper filters it).
func flatten(rec domain.CombinedRecord) map[string]string {
	return map[string]string{
		"job_title":            rec.Job.Title,
		"job_company":          rec.Job.Company,
		"job_description":      rec.Job.Description,
		"job_url":              urlOnly(rec.Job.Source),
		"job_location":         rec.Job.Location,
		"job_employment_type":  rec.Job.EmploymentType,
		"job_experience_level": rec.Job.SeniorityLevel,
		"job_industry":         rec.Job.Industry,
		"job_salary":           rec.Job.Salary,
		"job_responsibilities": joinList(rec.Job.Responsibilities),
		"job_requirements":     joinList(rec.Job.Requirements),

		"company_name":         rec.Company.Name,
		"company_description":  rec.Company.Description,
		"company_website":      rec.Company.Website,
		"company_industry":     rec.Company.Industry,
		"company_url":          urlOnly(rec.Company.Source),
		"company_headquarters": rec.Company.Headquarters,
		"company_size":         rec.Company.Size,
		"company_founded":      rec.Company.Founded,
		"company_specialties":  joinList(rec.Company.Specialties),
	}
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}

// urlOnly keeps http(s) sources and drops file paths; the linkedin_* page
// properties only make sense for scraped inputs.
func urlOnly(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return ""
}
