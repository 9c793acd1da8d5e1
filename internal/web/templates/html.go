// Package templates renders the HTML pages and fragments of the web UI.
//
// Components are plain templ.Component values so handlers can render them
// the same way whether they serve a full page or an HTMX fragment.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and escaped text, keeping the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) textf(format string, args ...any) {
	h.text(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// component adapts a body function to templ.Component.
func component(body func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		body(ctx, h)
		return h.err
	})
}

// Layout wraps content in the page shell.
func Layout(title string, content templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="he" dir="rtl"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(pageStyle)
		h.raw(`</style></head><body><main>`)
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.render(ctx, content)
		h.raw(`</main></body></html>`)
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
main{max-width:960px;margin:0 auto;padding:24px}
form,section{background:#fff;border:1px solid #d9dee4;border-radius:6px;padding:16px;margin-bottom:16px}
label{display:block;margin:8px 0}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #e4e7eb;padding:6px;text-align:start}
.alert-error{background:#fdecea;border:1px solid #f5c2c0;border-radius:6px;padding:12px}
.ok{color:#1b7f3b}.failed{color:#b42318}`
