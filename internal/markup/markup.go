// ABOUTME: Restricted markdown renderer for agent replies
// ABOUTME: Classifies lines by prefix and splits inline code and strong spans

package markup

import (
	"regexp"
	"strings"
)

// BlockKind identifies how a line is displayed.
type BlockKind string

const (
	BlockHeading      BlockKind = "heading"
	BlockBulletItem   BlockKind = "bullet_item"
	BlockNumberedItem BlockKind = "numbered_item"
	BlockSpacer       BlockKind = "spacer"
	BlockParagraph    BlockKind = "paragraph"
)

// FragmentKind identifies inline formatting.
type FragmentKind string

const (
	FragmentText   FragmentKind = "text"
	FragmentCode   FragmentKind = "code"
	FragmentStrong FragmentKind = "strong"
)

// Fragment is a run of inline text with a single format.
type Fragment struct {
	Kind FragmentKind
	Text string
}

// Block is one rendered line.
type Block struct {
	Kind      BlockKind
	Level     int // 1-3 for headings, 0 otherwise
	Fragments []Fragment
}

// PlainText returns the block's text without formatting.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, f := range b.Fragments {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

var numberedPrefix = regexp.MustCompile(`^\d+\.\s`)

// Render converts agent markup into display blocks. It is total: any input,
// including unterminated markers, yields a block sequence. Empty input yields
// no blocks.
func Render(text string) []Block {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, renderLine(strings.TrimSuffix(line, "\r")))
	}
	return blocks
}

func renderLine(line string) Block {
	switch {
	case strings.HasPrefix(line, "### "):
		return Block{Kind: BlockHeading, Level: 3, Fragments: Inline(line[4:])}
	case strings.HasPrefix(line, "## "):
		return Block{Kind: BlockHeading, Level: 2, Fragments: Inline(line[3:])}
	case strings.HasPrefix(line, "# "):
		return Block{Kind: BlockHeading, Level: 1, Fragments: Inline(line[2:])}
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return Block{Kind: BlockBulletItem, Fragments: Inline(line[2:])}
	}

	if loc := numberedPrefix.FindStringIndex(line); loc != nil {
		return Block{Kind: BlockNumberedItem, Fragments: Inline(line[loc[1]:])}
	}
	if strings.TrimSpace(line) == "" {
		return Block{Kind: BlockSpacer}
	}
	return Block{Kind: BlockParagraph, Fragments: Inline(line)}
}

// Inline splits a line into text, code and strong fragments. Code spans are
// matched first; strong spans are only recognised outside code.
func Inline(text string) []Fragment {
	var out []Fragment
	for _, f := range splitCode(text) {
		if f.Kind == FragmentCode {
			out = appendFragment(out, f)
			continue
		}
		for _, sf := range splitStrong(f.Text) {
			out = appendFragment(out, sf)
		}
	}
	return out
}

// splitCode matches `span` pairs with non-empty content. A backtick that
// cannot open a span is literal.
func splitCode(text string) []Fragment {
	var out []Fragment
	var plain strings.Builder
	for i := 0; i < len(text); {
		if text[i] != '`' {
			plain.WriteByte(text[i])
			i++
			continue
		}
		end := strings.IndexByte(text[i+1:], '`')
		if end <= 0 {
			// unterminated, or an empty `` pair
			plain.WriteByte('`')
			i++
			continue
		}
		if plain.Len() > 0 {
			out = append(out, Fragment{Kind: FragmentText, Text: plain.String()})
			plain.Reset()
		}
		out = append(out, Fragment{Kind: FragmentCode, Text: text[i+1 : i+1+end]})
		i += end + 2
	}
	if plain.Len() > 0 {
		out = append(out, Fragment{Kind: FragmentText, Text: plain.String()})
	}
	return out
}

// splitStrong matches the shortest **span** pairs.
func splitStrong(text string) []Fragment {
	var out []Fragment
	for {
		start := strings.Index(text, "**")
		if start < 0 {
			break
		}
		end := strings.Index(text[start+2:], "**")
		if end < 0 {
			break
		}
		out = append(out, Fragment{Kind: FragmentText, Text: text[:start]})
		out = append(out, Fragment{Kind: FragmentStrong, Text: text[start+2 : start+2+end]})
		text = text[start+2+end+2:]
	}
	return append(out, Fragment{Kind: FragmentText, Text: text})
}

// appendFragment drops empty fragments and merges adjacent plain text.
func appendFragment(out []Fragment, f Fragment) []Fragment {
	if f.Text == "" {
		return out
	}
	if n := len(out); n > 0 && f.Kind == FragmentText && out[n-1].Kind == FragmentText {
		out[n-1].Text += f.Text
		return out
	}
	return append(out, f)
}
