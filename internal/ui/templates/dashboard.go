package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.5/bundles/datastar.js"

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
header{padding:24px 32px;background:#1f2933;color:#fff}
header p{margin:4px 0 0;opacity:.7}
main{display:grid;grid-template-columns:repeat(auto-fit,minmax(420px,1fr));gap:20px;padding:24px 32px}
section{background:#fff;border-radius:8px;padding:16px 20px;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.modern-table{width:100%;border-collapse:collapse;font-size:14px}
.modern-table th,.modern-table td{padding:6px 8px;border-bottom:1px solid #e4e7eb;text-align:left}
.category-badge{background:#e0f2fe;border-radius:4px;padding:2px 6px}
.kpi-value{font-size:36px;font-weight:600;display:block}
.kpi-label{opacity:.7}
img{max-width:100%}`

// Dashboard is the single-page viewer. Every panel starts with a loading
// placeholder and is patched by /sse/refresh-all once the page loads.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>E-commerce Analytics Dashboard</title>`)
		w.raw(`<script type="module" src="` + datastarScript + `"></script>`)
		w.raw(`<style>` + styles + `</style></head>`)
		w.raw(`<body data-on-load="@get('/sse/refresh-all')">`)
		w.raw(`<header><h1>E-commerce Analytics Dashboard</h1><p>Aggregates over the master dataset</p></header><main>`)
		panel(w, "Average Order Value", "aov-content", "/sse/refresh-all")
		panel(w, "Top Customers by Revenue", "customers-content", "/sse/top-customers")
		panel(w, "Sales by Product Category", "categories-content", "/sse/category-sales")
		panel(w, "Monthly Revenue Trend", "monthly-content", "/sse/monthly-sales")
		w.raw(`</main></body></html>`)
		return w.err
	})
}

func panel(w *writer, title, id, refresh string) {
	w.raw("<section><h2>")
	w.text(title)
	w.raw(`</h2><button data-on-click="@get('`)
	w.text(refresh)
	w.raw(`')">Refresh</button><div id="`)
	w.text(id)
	w.raw(`">Loading…</div></section>`)
}
