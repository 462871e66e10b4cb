package extract

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseJobFullPosting(t *testing.T) {
	text := "Senior Engineer at Acme Corp\n" +
		"Location: Remote\n" +
		"About the job: Build things.\n" +
		"Responsibilities: • Write code\n" +
		"• Ship it\n" +
		"Requirements: 5 years experience"

	rec, err := ParseJob(text, "job.pdf")
	if err != nil {
		t.Fatalf("ParseJob: %v", err)
	}

	if rec.Title != "Senior Engineer" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Company != "Acme Corp" {
		t.Errorf("company = %q", rec.Company)
	}
	if rec.Location != "Remote" {
		t.Errorf("location = %q, want just the line remainder", rec.Location)
	}
	if rec.Description != "Build things." {
		t.Errorf("description = %q", rec.Description)
	}
	if want := []string{"Write code", "Ship it"}; !reflect.DeepEqual(rec.Responsibilities, want) {
		t.Errorf("responsibilities = %#v, want %#v", rec.Responsibilities, want)
	}
	if want := []string{"5 years experience"}; !reflect.DeepEqual(rec.Requirements, want) {
		t.Errorf("requirements = %#v, want %#v", rec.Requirements, want)
	}
	if rec.Source != "job.pdf" {
		t.Errorf("source = %q", rec.Source)
	}
}

func TestParseJobMissingIdentity(t *testing.T) {
	_, err := ParseJob("Location: Berlin\nSome unrelated text without the magic line.", "x")
	if !errors.Is(err, ErrMissingEssentialField) {
		t.Fatalf("err = %v, want ErrMissingEssentialField", err)
	}
}

func TestParseJobTitleLineIsCaseSensitive(t *testing.T) {
	// "At" with a capital must not be treated as the separator.
	_, err := ParseJob("Senior Engineer At Acme Corp\nno other content here", "x")
	if !errors.Is(err, ErrMissingEssentialField) {
		t.Fatalf("err = %v, want ErrMissingEssentialField", err)
	}
}

func TestParseJobLabelSynonyms(t *testing.T) {
	text := "Platform Engineer at Initech\n" +
		"Job Type: Full-time\n" +
		"Seniority Level: Mid-Senior\n" +
		"Job description:\nKeep the mainframe alive.\n" +
		"Qualifications: • COBOL\n• Patience"

	rec, err := ParseJob(text, "x")
	if err != nil {
		t.Fatalf("ParseJob: %v", err)
	}
	if rec.EmploymentType != "Full-time" {
		t.Errorf("employment type = %q", rec.EmploymentType)
	}
	if rec.SeniorityLevel != "Mid-Senior" {
		t.Errorf("seniority = %q", rec.SeniorityLevel)
	}
	if rec.Description != "Keep the mainframe alive." {
		t.Errorf("description = %q", rec.Description)
	}
	if want := []string{"COBOL", "Patience"}; !reflect.DeepEqual(rec.Requirements, want) {
		t.Errorf("requirements = %#v", rec.Requirements)
	}
}

func TestParseCompanyBundle(t *testing.T) {
	text := "Acme Corp on LinkedIn\n" +
		"Website: https://acme.example\n" +
		"Industry: Software Development\n" +
		"Company size: 51-200 employees\n" +
		"Headquarters: Berlin, Germany\n" +
		"Founded: 2012\n" +
		"About us:\nWe make everything.\n" +
		"Specialties: anvils, rockets, tunnels"

	rec, err := ParseCompany(text, "https://linkedin.com/company/acme")
	if err != nil {
		t.Fatalf("ParseCompany: %v", err)
	}

	if rec.Name != "Acme Corp" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Website != "https://acme.example" {
		t.Errorf("website = %q", rec.Website)
	}
	if rec.Size != "51-200 employees" {
		t.Errorf("size = %q", rec.Size)
	}
	if rec.Headquarters != "Berlin, Germany" {
		t.Errorf("headquarters = %q", rec.Headquarters)
	}
	if rec.Founded != "2012" {
		t.Errorf("founded = %q", rec.Founded)
	}
	if rec.Description != "We make everything." {
		t.Errorf("description = %q", rec.Description)
	}
	if want := []string{"anvils", "rockets", "tunnels"}; !reflect.DeepEqual(rec.Specialties, want) {
		t.Errorf("specialties = %#v", rec.Specialties)
	}
}

func TestParseCompanyMissingName(t *testing.T) {
	_, err := ParseCompany("Industry: Software\nWebsite: https://x.example", "x")
	if !errors.Is(err, ErrMissingEssentialField) {
		t.Fatalf("err = %v, want ErrMissingEssentialField", err)
	}
}

func TestMissingFieldsStayEmpty(t *testing.T) {
	rec, err := ParseJob("Baker at Bread & Co", "x")
	if err != nil {
		t.Fatalf("ParseJob: %v", err)
	}
	if rec.Location != "" || rec.Description != "" || rec.Salary != "" {
		t.Errorf("expected unmatched fields to stay empty: %+v", rec)
	}
	if rec.Responsibilities != nil || rec.Requirements != nil {
		t.Errorf("expected nil lists, got %#v / %#v", rec.Responsibilities, rec.Requirements)
	}
}
