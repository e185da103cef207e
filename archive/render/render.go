// Package render converts article markdown to HTML.
package render

import (
	"bytes"
	"encoding/hex"
	"fmt"

	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/zeebo/blake3"

	"github.com/Kush-Singh-26/lectern/archive/config"
)

// Renderer turns raw markdown into HTML using the extension set selected in
// the configuration. It is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	minifier *minify.M
}

// New builds a Renderer from the configured markdown extension flags.
func New(cfg *config.Config) *Renderer {
	var exts []goldmark.Extender

	if cfg.Extensions.Strikethrough {
		exts = append(exts, extension.Strikethrough)
	}
	if cfg.Extensions.Table {
		exts = append(exts, extension.Table)
	}
	if cfg.Extensions.Autolink {
		exts = append(exts, extension.Linkify)
	}
	if cfg.Extensions.Tasklist {
		exts = append(exts, extension.TaskList)
	}
	if cfg.Extensions.Footnotes {
		exts = append(exts, extension.Footnote)
	}
	if cfg.Extensions.DescriptionLists {
		exts = append(exts, extension.DefinitionList)
	}
	if cfg.Extensions.Math {
		exts = append(exts, passthrough.New(passthrough.Config{
			InlineDelimiters: []passthrough.Delimiters{{Open: "$", Close: "$"}, {Open: "\\(", Close: "\\)"}},
			BlockDelimiters:  []passthrough.Delimiters{{Open: "$$", Close: "$$"}, {Open: "\\[", Close: "\\]"}},
		}))
	}
	if cfg.Extensions.Highlighting {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle("nord"),
			highlighting.WithFormatOptions(
				chroma_html.WithClasses(true),
			),
		))
	}

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}

	if cfg.MinifyHTML {
		m := minify.New()
		m.AddFunc("text/html", mhtml.Minify)
		r.minifier = m
	}

	return r
}

// Render converts markdown source to an HTML string.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	if r.minifier == nil {
		return buf.String(), nil
	}

	var min bytes.Buffer
	if err := r.minifier.Minify("text/html", &min, &buf); err != nil {
		// Minification failing is not worth dropping the article over.
		return buf.String(), nil
	}
	return min.String(), nil
}

// ETag returns a strong validator for the rendered content, suitable for the
// HTTP ETag header.
func ETag(content string) string {
	sum := blake3.Sum256([]byte(content))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
