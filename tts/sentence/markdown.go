package sentence

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// PlainText renders markdown to the text a listener should hear. Code
// blocks, raw HTML and images are dropped; links keep their label. Block
// elements are separated by blank lines, and headings and list items that
// lack a terminator get a period so they segment as their own sentence.
func PlainText(markdown string) (string, error) {
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	var (
		out   strings.Builder
		block bytes.Buffer
	)
	flush := func(terminate bool) {
		s := strings.Join(strings.Fields(block.String()), " ")
		block.Reset()
		if s == "" {
			return
		}
		if terminate && !strings.ContainsAny(s[len(s)-1:], ".!?") {
			s += "."
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(s)
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if !entering {
				flush(true)
			}
		case *ast.Paragraph, *ast.TextBlock:
			if !entering {
				_, inList := node.Parent().(*ast.ListItem)
				flush(inList)
			}
		case *extast.TableCell:
			if !entering {
				block.WriteByte(' ')
			}
		case *extast.TableRow, *extast.TableHeader:
			if !entering {
				flush(true)
			}
		case *ast.Text:
			if entering {
				block.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					block.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				block.Write(node.Value)
			}
		case *ast.CodeSpan:
			if entering {
				for c := node.FirstChild(); c != nil; c = c.NextSibling() {
					if t, ok := c.(*ast.Text); ok {
						block.Write(t.Segment.Value(source))
					}
				}
				return ast.WalkSkipChildren, nil
			}
		case *ast.AutoLink:
			if entering {
				block.Write(node.Label(source))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	flush(false)

	return out.String(), nil
}
