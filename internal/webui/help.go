// ABOUTME: Help page rendered from the embedded markdown document
// ABOUTME: Only trusted, embedded content goes through goldmark

package webui

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var helpMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

func (s *Server) handleHelp(w http.ResponseWriter, _ *http.Request) {
	s.helpOnce.Do(func() {
		s.helpHTML = s.convertHelp()
	})
	s.renderHelp(w, s.helpHTML)
}

func (s *Server) convertHelp() template.HTML {
	mdContent, err := helpFS.ReadFile("docs/help.md")
	if err != nil {
		s.logger.Error("failed to read help document", "error", err)
		mdContent = []byte("# Not Found\n\nThe help document could not be found.")
	}

	var htmlBuf bytes.Buffer
	if err := helpMarkdown.Convert(mdContent, &htmlBuf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return template.HTML("<p>Failed to render help content.</p>")
	}
	return template.HTML(htmlBuf.String())
}
