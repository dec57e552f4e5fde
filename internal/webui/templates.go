// ABOUTME: Template data types and rendering for the chat page
// ABOUTME: Converts store snapshots into view models; assistant text goes through markup

package webui

import (
	"html/template"
	"net/http"

	"github.com/2389/coven-chat/internal/agent"
	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/markup"
)

const (
	appName    = "Coven Chat"
	timeLayout = "15:04"
	dateLayout = "Jan 2, 2006"
)

type conversationItem struct {
	ID     string
	Title  string
	Active bool
}

type messageView struct {
	ID        string
	Role      string
	Content   string
	HTML      template.HTML
	Time      string
	Retryable bool
}

type pageData struct {
	Title          string
	AppName        string
	Conversations  []conversationItem
	ActiveID       string
	HasActive      bool
	HeaderTitle    string
	HeaderTime     string
	Messages       []messageView
	ShowWelcome    bool
	Prompts        []string
	Sending        bool
	AgentName      string
	AgentActive    bool
	SampleEnabled  bool
	ShowingSample  bool
	IdempotencyKey string
	Draft          string
	Sender         string
}

type helpData struct {
	Title   string
	Content template.HTML
}

func parseTemplates() (page, help *template.Template) {
	page = template.Must(template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/page.html"))
	help = template.Must(template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/help.html"))
	return page, help
}

// buildPage snapshots the service state into pageData.
func (s *Server) buildPage() pageData {
	store := s.svc.Store()
	active, hasActive := store.ActiveConversation()

	data := pageData{
		Title:          appName,
		AppName:        appName,
		HeaderTitle:    chat.PlaceholderTitle,
		Prompts:        chat.SuggestedPrompts,
		Sending:        s.svc.IsSending(),
		AgentName:      agent.AgentName,
		AgentActive:    s.svc.ActiveAgent() == agent.AgentID,
		SampleEnabled:  store.SampleViewEnabled(),
		ShowingSample:  store.ShowingSample(),
		IdempotencyKey: s.ids.New(),
		Draft:          s.svc.Draft(),
		Sender:         s.sender,
	}

	for _, c := range store.VisibleConversations() {
		data.Conversations = append(data.Conversations, conversationItem{
			ID:     c.ID,
			Title:  c.Title,
			Active: hasActive && c.ID == active.ID,
		})
	}

	if hasActive {
		data.HasActive = true
		data.ActiveID = active.ID
		if active.Title != "" {
			data.HeaderTitle = active.Title
		}
		if len(active.Messages) > 0 {
			data.HeaderTime = active.LastActivity().Format(timeLayout)
		} else {
			data.HeaderTime = s.now().Format(dateLayout)
		}
		for _, m := range active.Messages {
			data.Messages = append(data.Messages, newMessageView(m))
		}
	}
	data.ShowWelcome = !hasActive || len(active.Messages) == 0

	return data
}

func newMessageView(m chat.Message) messageView {
	v := messageView{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Time:      m.Timestamp.Format(timeLayout),
		Retryable: m.Retryable(),
	}
	if m.Role == chat.RoleAssistant {
		v.HTML = markup.HTML(m.Content)
	}
	return v
}

// renderPage renders the chat page
func (s *Server) renderPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pageTmpl.ExecuteTemplate(w, "base", s.buildPage()); err != nil {
		s.logger.Error("failed to render chat page", "error", err)
	}
}

// renderHelp renders the help page
func (s *Server) renderHelp(w http.ResponseWriter, content template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := helpData{Title: appName + " Help", Content: content}
	if err := s.helpTmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("failed to render help page", "error", err)
	}
}

