package util

import (
	"bytes"
	"context"
	"crypto/sha256"
	"io"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	hl "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// -----------------------------------------------------------------------------
// tiny cache so each distinct document is converted once per process
// -----------------------------------------------------------------------------
var cache sync.Map // map[[32]byte]string

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		hl.NewHighlighting(hl.WithStyle("github-dark")), // inline colours
	),
)

// Markdown converts src to ready-to-embed HTML.
//
// The returned templ.Component is either safe HTML (templ.Raw) or an error.
// Raw HTML inside src is escaped by goldmark's default renderer.
func Markdown(src []byte) templ.Component {
	key := sha256.Sum256(src)
	if v, ok := cache.Load(key); ok {
		return templ.Raw(v.(string))
	}

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error { return err })
	}

	htmlStr := buf.String()
	cache.Store(key, htmlStr)
	return templ.Raw(htmlStr)
}
