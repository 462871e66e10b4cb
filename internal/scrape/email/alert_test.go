package email

import (
	"testing"
)

const alertHTML = `
<html><body>
<table>
  <tr>
    <td>
      <a href="https://www.linkedin.com/comm/jobs/view/4001?trk=logo"><img src="logo.png"/></a>
      <a href="https://www.linkedin.com/comm/jobs/view/4001?trk=title">Senior Backend Engineer</a>
      <p>Acme Corp · Berlin, Germany</p>
      <p>$120,000 - $150,000 / year</p>
      <p>Actively recruiting</p>
    </td>
  </tr>
</table>
<table>
  <tr>
    <td>
      <a href="https://www.linkedin.com/jobs/view/4002/">Platform Engineer</a>
      <p>Initech · Remote</p>
    </td>
  </tr>
</table>
<a href="https://www.linkedin.com/psettings/unsubscribe">Unsubscribe</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	jobs, err := ParseAlertHTML(alertHTML)
	if err != nil {
		t.Fatalf("ParseAlertHTML: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len = %d, want anchors merged per job id: %+v", len(jobs), jobs)
	}

	first := jobs[0]
	if first.Title != "Senior Backend Engineer" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Company != "Acme Corp" {
		t.Errorf("company = %q", first.Company)
	}
	if first.Location != "Berlin, Germany" {
		t.Errorf("location = %q", first.Location)
	}
	if first.Salary != "$120,000 - $150,000 / year" {
		t.Errorf("salary = %q", first.Salary)
	}
	if first.URL == "" {
		t.Error("url missing")
	}

	second := jobs[1]
	if second.Title != "Platform Engineer" || second.Company != "Initech" || second.Location != "Remote" {
		t.Errorf("second = %+v", second)
	}
	if second.Salary != "" {
		t.Errorf("salary = %q, want empty", second.Salary)
	}
}

func TestParseAlertHTMLIgnoresNonJobAnchors(t *testing.T) {
	jobs, err := ParseAlertHTML(`<a href="https://www.linkedin.com/feed/">Feed</a>
<a href="https://example.com/jobs/view/9">elsewhere</a>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Errorf("jobs = %+v, want none", jobs)
	}
}

func TestParseAlertHTMLUnwrapsTracking(t *testing.T) {
	body := `<a href="https://www.linkedin.com/comm/jobs/view/55?url=https%3A%2F%2Fwww.linkedin.com%2Fjobs%2Fview%2F55">Data Engineer</a>`
	jobs, err := ParseAlertHTML(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len = %d", len(jobs))
	}
	if jobs[0].URL != "https://www.linkedin.com/jobs/view/55" {
		t.Errorf("url = %q", jobs[0].URL)
	}
}

func TestTitleCandidateRejectsJunk(t *testing.T) {
	cases := []string{
		"Unsubscribe",
		"Acme · Berlin",
		"$100,000 / year",
		"see all jobs",
		"https://example.com",
		"abc",
	}
	for _, c := range cases {
		if got := titleCandidate(c); got != "" {
			t.Errorf("titleCandidate(%q) = %q, want rejected", c, got)
		}
	}
	if got := titleCandidate("Senior Engineer Easy Apply"); got != "Senior Engineer" {
		t.Errorf("badge strip: got %q", got)
	}
}

func TestAlertJobRecord(t *testing.T) {
	rec := AlertJob{
		Title:    "Dev",
		Company:  "Acme",
		Location: "Remote",
		Salary:   "$1 / year",
		URL:      "https://www.linkedin.com/jobs/view/7",
	}.Record()

	if rec.Title != "Dev" || rec.Company != "Acme" || rec.Location != "Remote" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Source != "https://www.linkedin.com/jobs/view/7" {
		t.Errorf("source = %q", rec.Source)
	}
}

func TestLooksLikeJobAlert(t *testing.T) {
	if !looksLikeJobAlert("jobalerts-noreply@linkedin.com", "whatever", "") {
		t.Error("sender match must win")
	}
	if !looksLikeJobAlert("other@x.com", "Your job alert", `<a href="https://www.linkedin.com/jobs/view/1">x</a>`) {
		t.Error("subject + body match")
	}
	if looksLikeJobAlert("other@x.com", "Your job alert", "<p>no job links</p>") {
		t.Error("subject without job links must not match")
	}
	if looksLikeJobAlert("friend@x.com", "lunch?", "") {
		t.Error("ordinary mail must not match")
	}
}
