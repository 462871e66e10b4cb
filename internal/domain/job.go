package domain

// JobRecord is a parsed job posting. Every field defaults to empty: absence
// of a value is a normal state, callers branch on emptiness, never on
// key presence.
type JobRecord struct {
	Title            string
	Company          string
	Location         string
	Description      string
	Responsibilities []string
	Requirements     []string
	EmploymentType   string
	SeniorityLevel   string
	Industry         string
	Salary           string
	Source           string // origin path or URL
}

// IsZero reports whether nothing at all was extracted.
func (j JobRecord) IsZero() bool {
	return j.Title == "" && j.Company == "" && j.Location == "" &&
		j.Description == "" && len(j.Responsibilities) == 0 &&
		len(j.Requirements) == 0 && j.EmploymentType == "" &&
		j.SeniorityLevel == "" && j.Industry == "" && j.Salary == ""
}
