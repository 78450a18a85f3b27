package ui

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/maximuthking/csv-viewer/internal/dashboard"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// The UI is server-rendered: every state change re-renders the #app shell
// and patches it over SSE. Markup is built with plain string building; all
// dynamic content goes through esc.

func esc(s string) string {
	return html.EscapeString(s)
}

// fmtValue renders a cell value. Nil prints as an empty-set marker so it is
// distinguishable from an empty string.
func fmtValue(v any) string {
	if v == nil {
		return "∅"
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func action(path string, params url.Values) string {
	target := "/actions/" + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return fmt.Sprintf("@post('%s')", target)
}

// renderPage renders the full HTML document served on GET /.
func renderPage(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>csvviewer</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0; display: flex; }
nav { width: 240px; padding: 1rem; border-right: 1px solid #ddd; min-height: 100vh; }
section { padding: 1rem; }
table { border-collapse: collapse; font-size: 0.85rem; }
th, td { border: 1px solid #ddd; padding: 0.25rem 0.5rem; text-align: left; }
th { cursor: pointer; background: #f5f5f5; }
.error { color: #b00020; }
.loading { color: #666; font-style: italic; }
.highlight-row { background: #fff3bf; }
.selected { font-weight: bold; }
button { cursor: pointer; }
</style>
</head>
<body>
<div data-on-load="@get('/updates')">
`)
	b.WriteString(appShellHTML(st))
	b.WriteString("\n</div>\n</body>\n</html>\n")
	return b.String()
}

// appShellHTML renders the morph target patched on every update.
func appShellHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<main id="app" style="display: flex; width: 100%">`)
	b.WriteString(sidebarHTML(st))
	b.WriteString(`<div style="flex: 1">`)
	b.WriteString(previewHTML(st))
	b.WriteString(summaryHTML(st))
	b.WriteString(chartHTML(st))
	b.WriteString(`</div></main>`)
	return b.String()
}

func sidebarHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<nav><h2>Datasets</h2>`)
	b.WriteString(fmt.Sprintf(`<button data-on-click="%s">Reload</button>`, action("reload", nil)))
	if st.SelectedPath != "" {
		b.WriteString(fmt.Sprintf(` <button data-on-click="%s">Refresh</button>`, action("refresh", nil)))
	}

	if st.CatalogError != "" {
		b.WriteString(`<p class="error">` + esc(st.CatalogError) + `</p>`)
	}
	b.WriteString(`<ul>`)
	for _, ds := range st.Datasets {
		class := ""
		if ds.Path == st.SelectedPath {
			class = ` class="selected"`
		}
		b.WriteString(fmt.Sprintf(`<li%s><a href="#" data-on-click="%s">%s</a> <small>%s</small></li>`,
			class,
			esc(action("select", url.Values{"path": {ds.Path}})),
			esc(ds.Name),
			esc(formatSize(ds.SizeBytes))))
	}
	b.WriteString(`</ul>`)

	if len(st.Recent) > 0 {
		b.WriteString(`<h3>Recent</h3><ul>`)
		for _, path := range st.Recent {
			b.WriteString(fmt.Sprintf(`<li><a href="#" data-on-click="%s">%s</a></li>`,
				esc(action("select", url.Values{"path": {path}})), esc(path)))
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</nav>`)
	return b.String()
}

func previewHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<section id="preview"><h2>Preview</h2>`)

	if st.SelectedPath == "" {
		b.WriteString(`<p class="loading">no dataset selected</p></section>`)
		return b.String()
	}

	p := st.Preview
	if p.IsLoading {
		b.WriteString(`<p class="loading">loading…</p>`)
	}
	if p.Error != "" {
		b.WriteString(`<p class="error">` + esc(p.Error) + `</p></section>`)
		return b.String()
	}

	b.WriteString(searchFormHTML(st))
	b.WriteString(filterFormHTML(st))
	b.WriteString(previewTableHTML(st))
	b.WriteString(paginationHTML(st))
	b.WriteString(`</section>`)
	return b.String()
}

func searchFormHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<form data-on-submit="@post('/actions/search', {contentType: 'form'})">
<input name="column" placeholder="column">
<input name="value" placeholder="value">
<select name="mode"><option value="contains">contains</option><option value="exact">exact</option></select>
<button type="submit">Find row</button>
<button type="button" data-on-click="%s">Clear</button>
</form>`, action("search/clear", nil)))

	if st.Preview.SearchError != "" {
		b.WriteString(`<p class="error">` + esc(st.Preview.SearchError) + `</p>`)
	}
	return b.String()
}

func filterFormHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<form data-on-submit="@post('/actions/filter', {contentType: 'form'})">
<input name="column" placeholder="filter column">
<select name="operator">`)
	for _, op := range []core.FilterOperator{
		core.FilterEq, core.FilterNe, core.FilterLt, core.FilterLte,
		core.FilterGt, core.FilterGte, core.FilterContains,
	} {
		b.WriteString(fmt.Sprintf(`<option value="%s">%s</option>`, op, op))
	}
	b.WriteString(`</select>
<input name="value" placeholder="value">
<button type="submit">Filter</button>
</form>`)

	if len(st.Preview.Filters) > 0 {
		b.WriteString(`<p>active filters: `)
		for i, f := range st.Preview.Filters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(esc(fmt.Sprintf("%s %s %v", f.Column, f.Operator, f.Value)))
		}
		b.WriteString(fmt.Sprintf(` <button data-on-click="%s">clear</button></p>`, action("filter", nil)))
	}
	return b.String()
}

func previewTableHTML(st dashboard.State) string {
	p := st.Preview
	if len(p.Columns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<table><thead><tr>`)
	for _, col := range p.Columns {
		marker := ""
		next := core.SortAsc
		for _, s := range p.Sort {
			if s.Column == col {
				if s.Direction == core.SortAsc {
					marker, next = " ▲", core.SortDesc
				} else {
					marker, next = " ▼", ""
				}
			}
		}
		params := url.Values{"column": {col}}
		if next != "" {
			params.Set("direction", string(next))
		}
		b.WriteString(fmt.Sprintf(`<th data-on-click="%s">%s%s</th>`,
			esc(action("sort", params)), esc(col), marker))
	}
	b.WriteString(`</tr></thead><tbody>`)

	for i, row := range p.Rows {
		attrs := ""
		if h := p.Highlight; h != nil && h.Page == p.Page && h.RowInPage == i {
			attrs = fmt.Sprintf(` class="highlight-row" data-highlight-token="%d"`, h.Token)
		}
		b.WriteString(`<tr` + attrs + `>`)
		for _, col := range p.Columns {
			b.WriteString(`<td>` + esc(fmtValue(row[col])) + `</td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

func paginationHTML(st dashboard.State) string {
	p := st.Preview
	totalPages := int64(1)
	if p.TotalRows > 0 && p.PageSize > 0 {
		totalPages = (p.TotalRows + int64(p.PageSize) - 1) / int64(p.PageSize)
	}

	var b strings.Builder
	b.WriteString(`<p>`)
	if p.Page > 1 {
		b.WriteString(fmt.Sprintf(`<button data-on-click="%s">‹ prev</button> `,
			esc(action("page", url.Values{"page": {strconv.Itoa(p.Page - 1)}}))))
	}
	b.WriteString(fmt.Sprintf(`page %d of %d (%d rows)`, p.Page, totalPages, p.TotalRows))
	if int64(p.Page) < totalPages {
		b.WriteString(fmt.Sprintf(` <button data-on-click="%s">next ›</button>`,
			esc(action("page", url.Values{"page": {strconv.Itoa(p.Page + 1)}}))))
	}

	b.WriteString(` page size: `)
	for _, size := range []int{20, 50, 100, 200} {
		if size == p.PageSize {
			b.WriteString(fmt.Sprintf(`<b>%d</b> `, size))
			continue
		}
		b.WriteString(fmt.Sprintf(`<button data-on-click="%s">%d</button> `,
			esc(action("page-size", url.Values{"size": {strconv.Itoa(size)}})), size))
	}
	b.WriteString(`</p>`)
	return b.String()
}

func summaryHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<section id="summary"><h2>Summary</h2>`)

	s := st.Summary
	if s.IsLoading {
		b.WriteString(`<p class="loading">loading…</p>`)
	}
	if s.Error != "" {
		b.WriteString(`<p class="error">` + esc(s.Error) + `</p></section>`)
		return b.String()
	}
	if len(s.Data) == 0 {
		return b.String() + `</section>`
	}

	b.WriteString(`<table><thead><tr><th>column</th><th>dtype</th><th>nulls</th><th>distinct</th><th>min</th><th>max</th><th>mean</th><th>stddev</th></tr></thead><tbody>`)
	for _, col := range s.Data {
		b.WriteString(fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			esc(col.Column), esc(col.Dtype), col.NullCount, col.DistinctCount,
			esc(fmtValue(col.MinValue)), esc(fmtValue(col.MaxValue)),
			esc(fmtFloatPtr(col.MeanValue)), esc(fmtFloatPtr(col.StddevValue))))
	}
	b.WriteString(`</tbody></table>`)
	return b.String() + `</section>`
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return "–"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func chartHTML(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<section id="chart"><h2>Chart</h2>`)

	c := st.Chart
	b.WriteString(chartOptionsHTML(st))
	if c.IsLoading {
		b.WriteString(`<p class="loading">loading…</p>`)
	}
	if c.Error != "" {
		b.WriteString(`<p class="error">` + esc(c.Error) + `</p>`)
	}

	if len(c.Data) > 0 {
		b.WriteString(`<table><thead><tr>`)
		for _, col := range c.Columns {
			b.WriteString(`<th>` + esc(col) + `</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range c.Data {
			b.WriteString(`<tr>`)
			for _, col := range c.Columns {
				b.WriteString(`<td>` + esc(fmtValue(row[col])) + `</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
	}
	b.WriteString(`</section>`)
	return b.String()
}

func chartOptionsHTML(st dashboard.State) string {
	opts := st.Chart.Options

	var b strings.Builder
	b.WriteString(`<form data-on-submit="@post('/actions/chart', {contentType: 'form'})">`)

	b.WriteString(`<select name="chart_type">`)
	for _, t := range []core.ChartType{core.ChartLine, core.ChartBar, core.ChartScatter} {
		b.WriteString(optionHTML(string(t), string(opts.ChartType)))
	}
	b.WriteString(`</select>`)

	b.WriteString(`<select name="time_column"><option value="">time column</option>`)
	for _, col := range st.Schema {
		if core.IsTemporalDtype(col.Dtype) {
			b.WriteString(optionHTML(col.Name, opts.TimeColumn))
		}
	}
	b.WriteString(`</select>`)

	b.WriteString(fmt.Sprintf(`<input name="value_columns" placeholder="value columns" value="%s">`,
		esc(strings.Join(opts.ValueColumns, ","))))

	b.WriteString(`<select name="time_bucket">`)
	for _, bucket := range core.TimeBuckets {
		b.WriteString(optionHTML(bucket, opts.TimeBucket))
	}
	b.WriteString(`</select>`)

	b.WriteString(`<select name="interpolation">`)
	for _, i := range []core.Interpolation{
		core.InterpolationNone, core.InterpolationFfill,
		core.InterpolationBfill, core.InterpolationLinear,
	} {
		b.WriteString(optionHTML(string(i), string(opts.Interpolation)))
	}
	b.WriteString(`</select>`)

	b.WriteString(`<button type="submit">Apply</button></form>`)
	return b.String()
}

func optionHTML(value, current string) string {
	selected := ""
	if value == current {
		selected = ` selected`
	}
	return fmt.Sprintf(`<option value="%s"%s>%s</option>`, esc(value), selected, esc(value))
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
