package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"vastucraft/internal/domain"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Audience selects which side of a submission an email is written for.
type Audience string

const (
	// Submitter is the person who filled in the form.
	Submitter Audience = "submitter"
	// Operator is the site owner who gets notified of new submissions.
	Operator Audience = "operator"
)

type page struct {
	subject string
	title   string
	accent  template.CSS
}

var pages = map[domain.Kind]map[Audience]page{
	domain.KindContact: {
		Submitter: {subject: "Thanks for Contacting {{.Brand}}", title: "{{.Brand}}", accent: "#f56015,#ff8a3d"},
		Operator:  {subject: "New Contact Request from {{.Record.Name}}", title: "{{.Brand}}", accent: "#1f1f1f,#444444"},
	},
	domain.KindInquiry: {
		Submitter: {subject: "Thanks for your Inquiry", title: "{{.Brand}}", accent: "#f56015,#ff8a3d"},
		Operator:  {subject: "New Inquiry from {{.Record.Name}}", title: "{{.Brand}}", accent: "#1f1f1f,#444444"},
	},
	domain.KindNewsletter: {
		Submitter: {subject: "Welcome to {{.Brand}} Newsletter", title: "Welcome to {{.Brand}}", accent: "#f56015,#ff8a3d"},
		Operator:  {subject: "New Newsletter Subscription", title: "New Subscriber", accent: "#1f1f1f,#444444"},
	},
}

// Rendered is a subject with HTML and plain-text bodies ready to be sent.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer turns a stored submission into the emails sent for it.
type Renderer struct {
	brand   string
	website string
	html    *template.Template
	plain   *texttemplate.Template
	text    *texttemplate.Template
	now     func() time.Time
}

// NewRenderer parses the embedded templates.
func NewRenderer(brand, website string) (*Renderer, error) {
	html, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}
	plain, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse plain-text mail templates: %w", err)
	}

	text := texttemplate.New("subjects")
	for kind, audiences := range pages {
		for audience, p := range audiences {
			name := templateName(kind, audience)
			if _, err := text.New(name + ".subject").Parse(p.subject); err != nil {
				return nil, fmt.Errorf("failed to parse subject for %s: %w", name, err)
			}
			if _, err := text.New(name + ".title").Parse(p.title); err != nil {
				return nil, fmt.Errorf("failed to parse title for %s: %w", name, err)
			}
			if html.Lookup(name+".html") == nil {
				return nil, fmt.Errorf("missing mail template %s.html", name)
			}
			if plain.Lookup(name+".txt") == nil {
				return nil, fmt.Errorf("missing mail template %s.txt", name)
			}
		}
	}

	return &Renderer{brand: brand, website: website, html: html, plain: plain, text: text, now: time.Now}, nil
}

// Render builds the email for sub addressed to audience.
func (r *Renderer) Render(sub domain.Submission, audience Audience) (Rendered, error) {
	p, ok := pages[sub.Kind()][audience]
	if !ok {
		return Rendered{}, fmt.Errorf("no %s template for %s submissions", audience, sub.Kind())
	}
	name := templateName(sub.Kind(), audience)

	data := struct {
		Brand   string
		Website string
		Title   string
		Accent  template.CSS
		Footer  string
		Record  domain.Submission
	}{
		Brand:   r.brand,
		Website: r.website,
		Accent:  p.accent,
		Footer:  fmt.Sprintf("© %d %s. All rights reserved.", r.now().Year(), r.brand),
		Record:  sub,
	}

	subject, err := r.execText(name+".subject", data)
	if err != nil {
		return Rendered{}, err
	}
	if data.Title, err = r.execText(name+".title", data); err != nil {
		return Rendered{}, err
	}

	var body bytes.Buffer
	if err := r.html.ExecuteTemplate(&body, name+".html", data); err != nil {
		return Rendered{}, fmt.Errorf("failed to render %s: %w", name, err)
	}
	var text bytes.Buffer
	if err := r.plain.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return Rendered{}, fmt.Errorf("failed to render %s.txt: %w", name, err)
	}
	return Rendered{Subject: subject, HTML: body.String(), Text: strings.TrimSpace(text.String()) + "\n"}, nil
}

func (r *Renderer) execText(name string, data any) (string, error) {
	var b strings.Builder
	if err := r.text.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	// Header values must stay on one line.
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func templateName(kind domain.Kind, audience Audience) string {
	return string(kind) + "_" + string(audience)
}
