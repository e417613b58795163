package common

import (
	"bytes"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// announcements are written by the admin only, but raw HTML is still not passed through
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

func RenderMarkdown(source string) string {
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		logrus.Warnf("markdown render failed: %v", err)
		return template.HTMLEscapeString(source)
	}
	return buf.String()
}

// TemplateFuncs is shared by the server and by handler tests that load views.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"now": func() time.Time {
			return time.Now()
		},
		"markdown": func(s string) template.HTML {
			return template.HTML(RenderMarkdown(s))
		},
	}
}
