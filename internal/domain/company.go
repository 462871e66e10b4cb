package domain

// CompanyRecord is a parsed company page. Name is the record's identity;
// everything else is optional.
type CompanyRecord struct {
	Name         string
	Website      string
	Industry     string
	Size         string // free text, e.g. "51-200 employees"
	Headquarters string
	Founded      string
	Specialties  []string
	Description  string
	Source       string // origin path or URL
}

// IsZero reports whether nothing at all was extracted.
func (c CompanyRecord) IsZero() bool {
	return c.Name == "" && c.Website == "" && c.Industry == "" &&
		c.Size == "" && c.Headquarters == "" && c.Founded == "" &&
		len(c.Specialties) == 0 && c.Description == ""
}

// CombinedRecord is the unit the pipeline carries from normalization through
// mapping. Cross-fill between the two halves is done by normalize.Combine.
type CombinedRecord struct {
	Job     JobRecord
	Company CompanyRecord
}
