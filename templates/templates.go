// Package templates generates LaTeX resumes from structured data.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Categories a template can belong to.
const (
	CategoryModern       = "modern"
	CategoryMinimalist   = "minimalist"
	CategoryCreative     = "creative"
	CategoryProfessional = "professional"
)

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Education struct {
	School     string `json:"school"`
	Degree     string `json:"degree"`
	Field      string `json:"field"`
	Graduation string `json:"graduation"`
	GPA        string `json:"gpa,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type Project struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
}

// ResumeData is the input every template is filled from. Descriptions and
// the summary may contain Markdown.
type ResumeData struct {
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	Summary        string          `json:"summary,omitempty"`
	Skills         []string        `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
}

// Template is a named LaTeX resume layout.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`

	tmpl *template.Template
}

// Generate fills the template with data.
func (t *Template) Generate(data *ResumeData) (string, error) {
	if data == nil {
		return "", errors.New("templates: nil resume data")
	}
	var b strings.Builder
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to generate %s resume: %w", t.ID, err)
	}
	return b.String(), nil
}

var funcs = template.FuncMap{
	"tex": Escape,
	"md":  MarkdownToLatex,
	"join": func(items []string, sep string) string {
		escaped := make([]string, len(items))
		for i, s := range items {
			escaped[i] = Escape(s)
		}
		return strings.Join(escaped, sep)
	},
}

func define(id, name, description, category, source string) *Template {
	return &Template{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		tmpl:        template.Must(template.New(id).Delims("<<", ">>").Funcs(funcs).Parse(source)),
	}
}

var registry = map[string]*Template{}

func register(t *Template) { registry[t.ID] = t }

func init() {
	register(define(CategoryModern, "Modern",
		"Contemporary design with clean layout and modern aesthetics", CategoryModern, modernSource))
	register(define(CategoryMinimalist, "Minimalist",
		"Simple and elegant design for maximum ATS compatibility", CategoryMinimalist, minimalistSource))
	register(define(CategoryCreative, "Creative",
		"Eye-catching design perfect for creative and tech roles", CategoryCreative, creativeSource))
	register(define(CategoryProfessional, "Professional",
		"Corporate formal design for business positions", CategoryProfessional, professionalSource))
}

var order = map[string]int{
	CategoryModern:       0,
	CategoryMinimalist:   1,
	CategoryCreative:     2,
	CategoryProfessional: 3,
}

// All returns every registered template in display order.
func All() []*Template {
	out := make([]*Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].ID] < order[out[j].ID] })
	return out
}

// Get looks a template up by id.
func Get(id string) (*Template, error) {
	t, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// SampleData returns a filled-in resume for previews.
func SampleData() *ResumeData {
	return &ResumeData{
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Phone:    "+1 (555) 123-4567",
		Location: "San Francisco, CA",
		Summary: "Experienced software engineer with 5+ years in full-stack development. " +
			"Passionate about creating scalable applications and mentoring junior developers.",
		Skills: []string{"React", "Node.js", "TypeScript", "AWS", "MongoDB", "Docker", "GraphQL", "Git"},
		Experience: []Experience{
			{
				Company:  "Tech Company Inc.",
				Position: "Senior Software Engineer",
				Duration: "2022 - Present",
				Description: "Led development of microservices architecture handling 1M+ daily transactions. " +
					"Mentored 3 junior developers.",
			},
			{
				Company:     "Previous Corp",
				Position:    "Full Stack Developer",
				Duration:    "2020 - 2022",
				Description: "Built responsive web applications using React and Node.js. Improved performance by 40%.",
			},
		},
		Education: []Education{
			{
				School:     "University of Technology",
				Degree:     "Bachelor of Science",
				Field:      "Computer Science",
				Graduation: "2020",
				GPA:        "3.8",
			},
		},
		Certifications: []Certification{
			{Name: "AWS Solutions Architect", Issuer: "Amazon Web Services", Date: "2023"},
		},
		Projects: []Project{
			{
				Name:         "E-Commerce Platform",
				Description:  "Built a full-stack e-commerce solution with payment integration",
				Technologies: "React, Node.js, MongoDB, Stripe",
			},
		},
	}
}
