// Package markup interprets the lightweight markup produced by the chat agent.
//
// # Overview
//
// Agent replies use a small, line-oriented subset of markdown. Render turns
// a reply into a flat sequence of display blocks; the writers in this package
// turn blocks into terminal output or HTML. Render never fails and never
// interprets anything outside the fixed token set, so untrusted agent text
// cannot inject markup of its own.
//
// # Line Grammar
//
// Each line is classified by its prefix, first match wins:
//
//	### text     heading level 3
//	## text      heading level 2
//	# text       heading level 1
//	- text       bullet item (also "* text")
//	12. text     numbered item (the number is discarded)
//	(blank)      spacer
//	anything     paragraph
//
// There is no block-level code fencing: a "# " line inside what looks like a
// code block is still a heading.
//
// # Inline Formatting
//
// Inside a block, `code` spans are matched first and **strong** spans second.
// Unmatched backticks and asterisks are literal text.
//
// # Writers
//
//	markup.WriteTerminal(os.Stdout, markup.Render(reply))
//	markup.WriteHTML(&buf, markup.Render(reply))
//
// WriteHTML escapes every fragment and only emits its own fixed tag set.
package markup
