package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"smart-chatbot/internal/domain"
)

// WelcomeMessage is shown when the page has no turns to render.
const WelcomeMessage = "👋 Hi! I’m your chatbot. Ask me anything — I’ll try to find an answer."

// Bot replies shown on the page when a submitted message is rejected.
const (
	EmptyMessageReply = "✏️ Please type a message first."
	TooLongReply      = "✂️ That message is too long. Please shorten it and try again."
)

//go:embed templates/page.html.tmpl
var templatesFS embed.FS

type pageData struct {
	Turns []domain.Turn
}

type pageView struct {
	Turns   []domain.Turn
	Welcome string
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("handler: parse page template: %w", err)
	}
	return &pageRenderer{tmpl: tmpl}, nil
}

func (p *pageRenderer) render(data pageData) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, pageView{Turns: data.Turns, Welcome: WelcomeMessage}); err != nil {
		return "", fmt.Errorf("handler: render page: %w", err)
	}
	return buf.String(), nil
}
