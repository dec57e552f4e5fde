// ABOUTME: Terminal writer for rendered markup blocks
// ABOUTME: Styles headings, list items and inline spans with ANSI colours

package markup

import (
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	h1Style     = color.New(color.FgCyan, color.Bold, color.Underline)
	h2Style     = color.New(color.FgCyan, color.Bold)
	h3Style     = color.New(color.Bold)
	codeStyle   = color.New(color.FgYellow)
	strongStyle = color.New(color.Bold)
	bulletStyle = color.New(color.FgHiBlack)
)

// WriteTerminal writes blocks as styled terminal lines indented by indent.
// Consecutive numbered items are numbered from 1; any other block restarts
// the count. Styling follows color.NoColor, so output is plain text when
// stdout is not a terminal.
func WriteTerminal(w io.Writer, blocks []Block, indent string) error {
	var sb strings.Builder
	number := 0
	for _, b := range blocks {
		if b.Kind != BlockNumberedItem {
			number = 0
		}
		switch b.Kind {
		case BlockSpacer:
			sb.WriteString("\n")
			continue
		case BlockHeading:
			style := h3Style
			switch b.Level {
			case 1:
				style = h1Style
			case 2:
				style = h2Style
			}
			sb.WriteString(indent)
			sb.WriteString(style.Sprint(b.PlainText()))
		case BlockBulletItem:
			sb.WriteString(indent + "  " + bulletStyle.Sprint("•") + " ")
			writeInlineTerminal(&sb, b.Fragments)
		case BlockNumberedItem:
			number++
			sb.WriteString(indent + "  " + bulletStyle.Sprint(strconv.Itoa(number)+".") + " ")
			writeInlineTerminal(&sb, b.Fragments)
		default:
			sb.WriteString(indent)
			writeInlineTerminal(&sb, b.Fragments)
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeInlineTerminal(sb *strings.Builder, frags []Fragment) {
	for _, f := range frags {
		switch f.Kind {
		case FragmentCode:
			sb.WriteString(codeStyle.Sprint(f.Text))
		case FragmentStrong:
			sb.WriteString(strongStyle.Sprint(f.Text))
		default:
			sb.WriteString(f.Text)
		}
	}
}
