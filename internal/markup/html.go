// ABOUTME: HTML writer for rendered markup blocks
// ABOUTME: Escapes every fragment and emits only a fixed set of tags

package markup

import (
	"bytes"
	"html/template"
	"io"

	"github.com/yuin/goldmark/util"
)

// WriteHTML writes blocks as HTML. Headings map to h2-h4 so that agent
// replies never outrank the page title.
func WriteHTML(w io.Writer, blocks []Block) error {
	var buf bytes.Buffer
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			tag := headingTag(b.Level)
			buf.WriteString("<" + tag + ">")
			writeInlineHTML(&buf, b.Fragments)
			buf.WriteString("</" + tag + ">\n")
		case BlockBulletItem:
			buf.WriteString(`<li class="bullet">`)
			writeInlineHTML(&buf, b.Fragments)
			buf.WriteString("</li>\n")
		case BlockNumberedItem:
			buf.WriteString(`<li class="numbered">`)
			writeInlineHTML(&buf, b.Fragments)
			buf.WriteString("</li>\n")
		case BlockSpacer:
			buf.WriteString(`<div class="spacer"></div>` + "\n")
		default:
			buf.WriteString("<p>")
			writeInlineHTML(&buf, b.Fragments)
			buf.WriteString("</p>\n")
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// HTML renders text and returns it as trusted template HTML.
func HTML(text string) template.HTML {
	var buf bytes.Buffer
	_ = WriteHTML(&buf, Render(text))
	// Every fragment was escaped by WriteHTML.
	return template.HTML(buf.String())
}

func headingTag(level int) string {
	switch level {
	case 1:
		return "h2"
	case 2:
		return "h3"
	default:
		return "h4"
	}
}

func writeInlineHTML(buf *bytes.Buffer, frags []Fragment) {
	for _, f := range frags {
		text := util.EscapeHTML([]byte(f.Text))
		switch f.Kind {
		case FragmentCode:
			buf.WriteString("<code>")
			buf.Write(text)
			buf.WriteString("</code>")
		case FragmentStrong:
			buf.WriteString("<strong>")
			buf.Write(text)
			buf.WriteString("</strong>")
		default:
			buf.Write(text)
		}
	}
}
