// ABOUTME: Tests for the restricted markdown renderer
// ABOUTME: Covers line classification, inline spans, and totality on malformed input

package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_LineClassification(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		kind  BlockKind
		level int
		text  string
	}{
		{"h3", "### Key Concepts", BlockHeading, 3, "Key Concepts"},
		{"h2", "## Research", BlockHeading, 2, "Research"},
		{"h1", "# Title", BlockHeading, 1, "Title"},
		{"dash bullet", "- item", BlockBulletItem, 0, "item"},
		{"star bullet", "* item", BlockBulletItem, 0, "item"},
		{"numbered", "12. twelfth", BlockNumberedItem, 0, "twelfth"},
		{"numbered tab", "3.\tthird", BlockNumberedItem, 0, "third"},
		{"paragraph", "plain words", BlockParagraph, 0, "plain words"},
		{"hash without space", "#hashtag", BlockParagraph, 0, "#hashtag"},
		{"number without space", "3.14 is pi", BlockParagraph, 0, "3.14 is pi"},
		{"four hashes", "#### deep", BlockParagraph, 0, "#### deep"},
		{"indented bullet", "  - nested", BlockParagraph, 0, "  - nested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Render(tt.line)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.kind, blocks[0].Kind)
			assert.Equal(t, tt.level, blocks[0].Level)
			assert.Equal(t, tt.text, blocks[0].PlainText())
		})
	}
}

func TestRender_WhitespaceLineIsSpacer(t *testing.T) {
	blocks := Render("a\n   \nb")
	require.Len(t, blocks, 3)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, BlockSpacer, blocks[1].Kind)
	assert.Empty(t, blocks[1].Fragments)
	assert.Equal(t, BlockParagraph, blocks[2].Kind)
}

func TestRender_EmptyInput(t *testing.T) {
	assert.Empty(t, Render(""))
}

func TestRender_NoCodeFencing(t *testing.T) {
	blocks := Render("```\n# not a comment\n```")
	require.Len(t, blocks, 3)
	assert.Equal(t, BlockHeading, blocks[1].Kind)
	assert.Equal(t, "not a comment", blocks[1].PlainText())
}

func TestRender_CRLF(t *testing.T) {
	blocks := Render("## Title\r\n- item\r\n")
	require.Len(t, blocks, 3)
	assert.Equal(t, "Title", blocks[0].PlainText())
	assert.Equal(t, "item", blocks[1].PlainText())
	assert.Equal(t, BlockSpacer, blocks[2].Kind)
}

func TestRender_Strong(t *testing.T) {
	blocks := Render("**a**")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, []Fragment{{Kind: FragmentStrong, Text: "a"}}, blocks[0].Fragments)
}

func TestRender_Code(t *testing.T) {
	blocks := Render("`a`")
	require.Len(t, blocks, 1)
	assert.Equal(t, []Fragment{{Kind: FragmentCode, Text: "a"}}, blocks[0].Fragments)
}

func TestRender_UnterminatedStrongIsLiteral(t *testing.T) {
	blocks := Render("**a")
	require.Len(t, blocks, 1)
	assert.Equal(t, []Fragment{{Kind: FragmentText, Text: "**a"}}, blocks[0].Fragments)
}

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Fragment
	}{
		{
			name: "mixed",
			in:   "use `go test` for **all** packages",
			want: []Fragment{
				{FragmentText, "use "},
				{FragmentCode, "go test"},
				{FragmentText, " for "},
				{FragmentStrong, "all"},
				{FragmentText, " packages"},
			},
		},
		{
			name: "strong inside code stays code",
			in:   "`**x**`",
			want: []Fragment{{FragmentCode, "**x**"}},
		},
		{
			name: "unmatched trailing backtick",
			in:   "a `b` c`",
			want: []Fragment{{FragmentText, "a "}, {FragmentCode, "b"}, {FragmentText, " c`"}},
		},
		{
			name: "empty backtick pair is literal",
			in:   "``x",
			want: []Fragment{{FragmentText, "``x"}},
		},
		{
			name: "empty pair then span",
			in:   "``a`",
			want: []Fragment{{FragmentText, "`"}, {FragmentCode, "a"}},
		},
		{
			name: "shortest strong match",
			in:   "**a** and **b**",
			want: []Fragment{{FragmentStrong, "a"}, {FragmentText, " and "}, {FragmentStrong, "b"}},
		},
		{
			name: "odd asterisks",
			in:   "**a** **b",
			want: []Fragment{{FragmentStrong, "a"}, {FragmentText, " **b"}},
		},
		{
			name: "single asterisks are literal",
			in:   "2 * 3 * 4",
			want: []Fragment{{FragmentText, "2 * 3 * 4"}},
		},
		{
			name: "empty strong dropped",
			in:   "a****b",
			want: []Fragment{{FragmentText, "ab"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inline(tt.in))
		})
	}
}

func TestRender_IsTotal(t *testing.T) {
	inputs := []string{
		"`", "``", "```", "*", "**", "***", "****", "`**`**`",
		"**`", "`**", "# ", "## ", "### ", "- ", "* ", "1. ", "\n\n\n",
		"\x00", "日本語 **太字** `コード`", "<script>alert(1)</script>",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Render(in) }, "input %q", in)
	}
}

func TestRender_Deterministic(t *testing.T) {
	text := "## Plan\n1. **first** step\n- `cmd`\n\nDone"
	assert.Equal(t, Render(text), Render(text))
}
