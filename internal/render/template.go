package render

import (
	"strings"
	"text/template"
)

// DefaultName is the base name used when a render is not given one.
const DefaultName = "temp"

// documentTemplate is a standalone-class document with the body inside a
// CJK environment (UTF8 encoding, gbsn font).
const documentTemplate = `\documentclass[preview]{standalone}
\usepackage{CJK}
\begin{document}
\begin{CJK}{UTF8}{gbsn}%
{{.Body}}
\end{CJK}
\end{document}
`

var docTmpl = template.Must(template.New("tex").Parse(documentTemplate))

type documentData struct {
	Body string
}

// Document returns the complete .tex source for body. The body is inserted
// verbatim exactly once; no LaTeX escaping is applied.
func Document(body string) string {
	var sb strings.Builder
	// Executing a parsed template into a strings.Builder with a plain string
	// field cannot fail.
	_ = docTmpl.Execute(&sb, documentData{Body: body})
	return sb.String()
}
