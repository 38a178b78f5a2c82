package handlers

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const comingSoonTemplate = "coming_soon.html"

// Link is a navigation target on a page.
type Link struct {
	Href  string
	Label string
}

// ComingSoonPage holds the parameters of a placeholder page for an unreleased feature.
type ComingSoonPage struct {
	Path        string
	Title       string
	Description string
	Icon        string
	Features    []string
	Timeline    string
	BackLink    Link
}

// GovernancePages are the placeholder pages of the governance product.
var GovernancePages = []ComingSoonPage{
	{
		Path:        "/governance/proposals",
		Title:       "Governance Proposals",
		Description: "Submit and review proposals that shape how Veritas verifies and ranks published work.",
		Icon:        "📜",
		Features: []string{
			"Draft proposals with on-chain provenance",
			"Community review and discussion threads",
			"Transparent proposal history per author",
		},
		Timeline: "Q3 2025",
		BackLink: Link{Href: "/", Label: "Back to home"},
	},
	{
		Path:        "/governance/voting",
		Title:       "On-chain Voting",
		Description: "Vote on proposals with your wallet and follow results as they are tallied.",
		Icon:        "🗳️",
		Features: []string{
			"Wallet-signed ballots",
			"Live tallies and quorum tracking",
			"Delegation to trusted reviewers",
		},
		Timeline: "Q4 2025",
		BackLink: Link{Href: "/", Label: "Back to home"},
	},
}

// TemplateRenderer renders the embedded html templates for echo.
type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// ComingSoon returns a handler rendering page.
func ComingSoon(page ComingSoonPage) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, comingSoonTemplate, page)
	}
}
