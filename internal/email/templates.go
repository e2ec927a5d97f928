package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"sync"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type callbackReminderEmailData struct {
	baseEmailData
	CallbackReminder
}

// rendered is one message in both MIME flavours.
type rendered struct {
	HTML string
	Text string
}

var (
	templateMu sync.Mutex
	htmlCache  = map[string]*htmltemplate.Template{}
	textCache  = map[string]*texttemplate.Template{}
)

func htmlTemplate(name string) (*htmltemplate.Template, error) {
	templateMu.Lock()
	defer templateMu.Unlock()
	if t, ok := htmlCache[name]; ok {
		return t, nil
	}
	t, err := htmltemplate.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
	if err != nil {
		return nil, fmt.Errorf("parse email template %s: %w", name, err)
	}
	htmlCache[name] = t
	return t, nil
}

func textTemplate(name string) (*texttemplate.Template, error) {
	templateMu.Lock()
	defer templateMu.Unlock()
	if t, ok := textCache[name]; ok {
		return t, nil
	}
	file := name + ".txt"
	t, err := texttemplate.New(file).ParseFS(templateFS, "templates/"+file)
	if err != nil {
		return nil, fmt.Errorf("parse text template %s: %w", name, err)
	}
	textCache[name] = t
	return t, nil
}

// renderEmail executes the HTML layout and the plain-text twin of name.
func renderEmail(name string, data any) (rendered, error) {
	ht, err := htmlTemplate(name)
	if err != nil {
		return rendered{}, err
	}
	tt, err := textTemplate(name)
	if err != nil {
		return rendered{}, err
	}

	var html, text bytes.Buffer
	if err := ht.ExecuteTemplate(&html, "email", data); err != nil {
		return rendered{}, fmt.Errorf("execute email template %s: %w", name, err)
	}
	if err := tt.Execute(&text, data); err != nil {
		return rendered{}, fmt.Errorf("execute text template %s: %w", name, err)
	}
	return rendered{HTML: html.String(), Text: text.String()}, nil
}
