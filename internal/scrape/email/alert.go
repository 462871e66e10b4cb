package email

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"linklead-engine/internal/domain"
)

// AlertJob is one job card lifted out of an alert email.
type AlertJob struct {
	Title    string
	Company  string
	Location string
	Salary   string
	URL      string
}

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*year`)
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
)

// ParseAlertHTML pulls job cards out of an alert email body. The same job id
// appears behind several anchors (logo, title, apply button), so anchors are
// merged by id and the best title among them wins.
func ParseAlertHTML(htmlBody string) ([]AlertJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*AlertJob{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lh := strings.ToLower(href)
		if href == "" || !strings.Contains(lh, "linkedin.com") {
			return
		}
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := unwrapTracking(href)
		if jobURL == "" {
			return
		}

		key := jobURL
		if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
			key = m[1]
		}

		j, ok := byID[key]
		if !ok {
			j = &AlertJob{URL: jobURL}
			byID[key] = j
			order = append(order, key)
		}

		if t := titleCandidate(a.Text()); betterTitle(t, j.Title) {
			j.Title = t
		}

		// The card is usually a nested table; fall back outward.
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := collapse(p.Text())
			if t == "" {
				return
			}
			// "Company · Location" line
			if j.Company == "" && j.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = strings.TrimSpace(parts[1])
				return
			}
			if t2 := titleCandidate(t); betterTitle(t2, j.Title) {
				j.Title = t2
			}
		})

		if j.Salary == "" {
			if m := reSalary.FindString(collapse(card.Text())); m != "" {
				j.Salary = strings.TrimSpace(m)
			}
		}
	})

	out := make([]AlertJob, 0, len(byID))
	for _, key := range order {
		j := byID[key]
		if j.Title == "" {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

// Record converts the alert card into the pipeline's job record shape.
func (j AlertJob) Record() domain.JobRecord {
	return domain.JobRecord{
		Title:    j.Title,
		Company:  j.Company,
		Location: j.Location,
		Salary:   j.Salary,
		Source:   j.URL,
	}
}

// unwrapTracking resolves redirect wrappers that carry the real URL in a
// query parameter.
func unwrapTracking(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}
	if u.Host != "" {
		return u.String()
	}
	return href
}

// badgeJunk is template text that gets glued onto anchor titles.
var badgeJunk = []string{"Actively recruiting", "Easy Apply", "Promoted"}

// titleCandidate cleans an anchor/paragraph text into a possible job title,
// or "" when it clearly is not one.
func titleCandidate(s string) string {
	s = collapse(s)
	for _, b := range badgeJunk {
		s = strings.TrimSpace(strings.ReplaceAll(s, b, ""))
	}
	if s == "" {
		return ""
	}
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "unsubscribe"),
		strings.Contains(l, "see all jobs"),
		strings.Contains(l, "http://"), strings.Contains(l, "https://"),
		strings.Contains(s, " · "),
		reSalary.MatchString(s):
		return ""
	}
	if n := len([]rune(s)); n < 4 || n > 140 {
		return ""
	}
	return collapse(s)
}

// betterTitle prefers the longer plausible candidate; alert templates put
// the full title on the main anchor and truncated fragments elsewhere.
func betterTitle(candidate, current string) bool {
	if candidate == "" {
		return false
	}
	return len(candidate) > len(current)
}

func collapse(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
