package scrape

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// The bundle builders turn a rendered page into the label-anchored text the
// extractor's rule tables understand. A bundle is just lines: a heading line
// the extractor recognises, then "Label: value" lines, then prose sections.

var sanitizer = bluemonday.UGCPolicy()

func newConverter() *md.Converter {
	return md.NewConverter(md.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	))
}

// htmlToMarkdown sanitises a fragment and converts it to markdown prose.
func htmlToMarkdown(fragment, pageURL string) (string, error) {
	clean := sanitizer.Sanitize(fragment)
	out, err := newConverter().ConvertString(clean, md.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// readableText runs readability extraction over the whole page. Used when
// the expected containers are missing, which happens every time linkedin
// shuffles its markup.
func readableText(html, pageURL string) (title, content string) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), u)
	if err != nil {
		return "", ""
	}
	body, err := htmlToMarkdown(article.Content, pageURL)
	if err != nil {
		body = strings.TrimSpace(article.TextContent)
	}
	return strings.TrimSpace(article.Title), body
}

// jobBundle builds the extractor input for a job page:
//
//	<title> at <company>
//	Location: ...
//	Seniority Level: ...
//	About the job:
//	<description markdown>
func jobBundle(html, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse job page: %w", err)
	}

	title := firstText(doc,
		"h1.top-card-layout__title",
		".job-details-jobs-unified-top-card__job-title",
		"h1")
	company := firstText(doc,
		".job-details-jobs-unified-top-card__company-name",
		"a.topcard__org-name-link",
		`a[href*="/company/"]`)
	location := firstText(doc,
		".job-details-jobs-unified-top-card__primary-description-container .tvm__text",
		".top-card-layout__location",
		".topcard__flavor--bullet")

	descHTML := firstHTML(doc,
		"#job-details",
		".jobs-description__content",
		".description__text")

	description := ""
	if descHTML != "" {
		description, err = htmlToMarkdown(descHTML, pageURL)
		if err != nil {
			log.Printf("[scrape] job description conversion: %v", err)
		}
	}
	if description == "" {
		rTitle, rBody := readableText(html, pageURL)
		if title == "" {
			title = rTitle
		}
		description = rBody
	}
	if title == "" || company == "" {
		return "", fmt.Errorf("job page %s: title or company element not found", pageURL)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s\n", oneLine(title), oneLine(company))
	writeLabel(&b, "Location", location)
	for _, c := range jobCriteria(doc) {
		writeLabel(&b, c.label, c.value)
	}
	if description != "" {
		fmt.Fprintf(&b, "About the job:\n%s\n", description)
	}
	return b.String(), nil
}

// companyBundle builds the extractor input for a company about page:
//
//	<name> on LinkedIn
//	Website: ...
//	Industry: ...
//	About us:
//	<description markdown>
//	Specialties: a, b, c
func companyBundle(html, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse company page: %w", err)
	}

	name := firstText(doc,
		"h1.org-top-card-summary__title",
		"h1.top-card-layout__title",
		"h1")
	if name == "" {
		name, _ = readableText(html, pageURL)
	}
	if name == "" {
		return "", fmt.Errorf("company page %s: name element not found", pageURL)
	}

	facts := companyFacts(doc)

	descHTML := firstHTML(doc,
		`section[data-test-id="about-us__container"] p`,
		"p.org-about-us-organization-description__text",
		".core-section-container__content p")
	description := ""
	if descHTML != "" {
		description, err = htmlToMarkdown(descHTML, pageURL)
		if err != nil {
			log.Printf("[scrape] company description conversion: %v", err)
		}
	}
	if description == "" {
		_, description = readableText(html, pageURL)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s on LinkedIn\n", oneLine(name))
	writeLabel(&b, "Website", facts["website"])
	writeLabel(&b, "Industry", facts["industry"])
	writeLabel(&b, "Company size", facts["company size"])
	writeLabel(&b, "Headquarters", facts["headquarters"])
	writeLabel(&b, "Founded", facts["founded"])
	if description != "" {
		fmt.Fprintf(&b, "About us:\n%s\n", description)
	}
	// Specialties last: its capture runs to end of text.
	writeLabel(&b, "Specialties", facts["specialties"])
	return b.String(), nil
}

type criterion struct {
	label, value string
}

// jobCriteria harvests the "Seniority level / Employment type / Industries"
// facts block on job pages, normalising labels to what the rule table knows.
func jobCriteria(doc *goquery.Document) []criterion {
	var out []criterion
	doc.Find(".description__job-criteria-item, li.job-criteria__item").Each(func(_ int, s *goquery.Selection) {
		label := oneLine(s.Find("h3, .job-criteria__subheader").First().Text())
		value := oneLine(s.Find("span").First().Text())
		if label == "" || value == "" {
			return
		}
		switch strings.ToLower(label) {
		case "seniority level":
			out = append(out, criterion{"Seniority Level", value})
		case "employment type":
			out = append(out, criterion{"Employment Type", value})
		case "industries", "industry":
			out = append(out, criterion{"Industry", value})
		}
	})
	return out
}

// companyFacts walks the about-page definition list (dt label, dd value).
func companyFacts(doc *goquery.Document) map[string]string {
	facts := make(map[string]string)
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		label := strings.ToLower(oneLine(dt.Text()))
		if label == "" {
			return
		}
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		value := oneLine(dd.Text())
		// The website entry shows a display string; the href has the real URL.
		if label == "website" {
			if href, ok := dd.Find("a[href]").First().Attr("href"); ok {
				value = strings.TrimSpace(href)
			}
		}
		if value == "" {
			return
		}
		if _, seen := facts[label]; !seen {
			facts[label] = value
		}
	})

	// Website is often a tracked link rather than a dl entry.
	if facts["website"] == "" {
		if href, ok := doc.Find(`a[data-tracking-control-name="org-about-us-website-link"], dd a[href^="http"]`).First().Attr("href"); ok {
			facts["website"] = href
		}
	}
	if facts["website"] != "" {
		facts["website"] = unwrapRedirect(facts["website"])
	}
	return facts
}

// unwrapRedirect resolves linkedin's /redir/redirect?url=... wrapper.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "linkedin.com/redir/redirect") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return href
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := oneLine(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func firstHTML(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if h, err := goquery.OuterHtml(node); err == nil && strings.TrimSpace(h) != "" {
			return h
		}
	}
	return ""
}

func writeLabel(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

// oneLine collapses all whitespace runs to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
