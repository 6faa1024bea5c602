package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"wxpush/internal/channel"
)

//go:embed templates/detail.html
var templateFS embed.FS

var detailTmpl = template.Must(template.ParseFS(templateFS, "templates/detail.html"))

type detailData struct {
	Title   string
	Content string
	Time    string
}

// Detail handles GET /detail: a small HTML page rendering a pushed
// message's title and content, used as the default link target for
// template messages sent without a base_url.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := q.Get("title")
	content := q.Get("content")
	if title == "" || content == "" {
		writeError(w, http.StatusUnprocessableEntity, channel.CodeValidation, "title and content are required")
		return
	}

	displayTime := q.Get("time")
	if displayTime == "" {
		displayTime = time.Now().Format("2006-01-02 15:04:05")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := detailTmpl.Execute(w, detailData{Title: title, Content: content, Time: displayTime}); err != nil {
		h.log.Error().Err(err).Msg("render detail page")
	}
}
