// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package kulturhaus

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kulturhaus/kulturhaus/src/dashboard/fetch"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/reports"
	"github.com/kulturhaus/kulturhaus/src/server"
	"github.com/kulturhaus/kulturhaus/src/tools/format"
)

// SummaryReportID is the ID of the printable dashboard summary
const SummaryReportID = "kulturhaus_dashboard.summary"

const summaryTemplate = `<!DOCTYPE html>
<html lang="{{ .Lang }}">
<head><meta charset="utf-8"><title>{{ t .Lang "dashboard.title" }}</title></head>
<body>
<h1>{{ t .Lang "dashboard.title" }}</h1>
{{ with .Snapshot }}
<h2>{{ t $.Lang "section.members" }}</h2>
<p>{{ t $.Lang "members.active" }}: {{ count .Members.Active $.Lang }} ({{ .Members.Delta }})</p>
<table>
{{ range .Members.QuarterlyChurn }}<tr><td>{{ .Quarter }}</td><td>+{{ .New }}</td><td>-{{ .Lost }}</td><td>{{ .Net }}</td></tr>
{{ end }}</table>
<h2>{{ t $.Lang "section.sepa" }}</h2>
<p>{{ t $.Lang "sepa.next_date" }}: {{ date .Sepa.NextDate }}</p>
<p>{{ t $.Lang "sepa.amount" }}: {{ euro .Sepa.Amount }}</p>
<p>{{ t $.Lang "sepa.status" }}: {{ t $.Lang (printf "sepa.status.%s" .Sepa.Status) }}</p>
<h2>{{ t $.Lang "section.events" }}</h2>
<p>{{ t $.Lang "events.next" }}: {{ .Events.NextEvent }} {{ datetime .Events.EventDate }}</p>
<p>{{ t $.Lang "events.tickets" }}: {{ .Events.TicketsSold }} / {{ .Events.Capacity }}</p>
<p>{{ t $.Lang "events.revenue" }}: {{ euro .Events.MonthlyRevenue }}</p>
{{ end }}
</body>
</html>
`

// summaryReport returns the dashboard summary report computed by h
func summaryReport(h *Handlers) *reports.TextReport {
	return &reports.TextReport{
		Id:        SummaryReportID,
		Name:      "Kulturhaus Dashboard",
		ModelName: fetch.DashboardModel,
		MimeType:  reports.MimeHTML,
		Filename:  "dashboard.html",
		Template:  summaryTemplate,
		Funcs: map[string]interface{}{
			"t": func(lang, key string) string {
				return i18n.T(lang, key)
			},
			"count": func(n int, lang string) string {
				return format.Count(int64(n), lang)
			},
			"euro":     format.Euro,
			"date":     format.Date,
			"datetime": format.DateTime,
		},
		DataFunc: func(ctx context.Context, ids []int64, data reports.Data) (reports.Data, error) {
			snap, err := h.Provider.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			lang, _ := data["lang"].(string)
			if lang == "" {
				lang = h.Lang
			}
			return reports.Data{
				"Lang":     lang,
				"Snapshot": snap,
			}, nil
		},
		OpenInNewTab: true,
	}
}

// Report renders the report given in the URL for the given record ids
func (h *Handlers) Report(c *server.Context) {
	report, ok := reports.Registry.Get(c.Param("name"))
	if !ok || report.Type().Format() != c.Param("format") {
		c.String(http.StatusNotFound, "Report not found")
		return
	}
	ids, err := reports.ParseIDs(c.Param("ids"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	data := make(reports.Data)
	if opts := c.Query("options"); opts != "" {
		if err := jsonAPI.UnmarshalFromString(opts, &data); err != nil {
			c.String(http.StatusBadRequest, "Invalid report options")
			return
		}
	}
	var reportCtx reports.Data
	if rc := c.Query("context"); rc != "" {
		if err := jsonAPI.UnmarshalFromString(rc, &reportCtx); err != nil {
			c.String(http.StatusBadRequest, "Invalid report context")
			return
		}
	}
	if _, ok := data["lang"]; !ok {
		if lang, ok := reportCtx["lang"].(string); ok {
			data["lang"] = lang
		} else {
			data["lang"] = h.lang(c)
		}
	}
	doc, err := report.Render(c.Request.Context(), ids, data)
	if err != nil {
		log.Error("Unable to render report", "report", report.ID(), "error", err)
		c.String(http.StatusInternalServerError, i18n.T(h.lang(c), "dashboard.failed"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.MimeType+"; charset=utf-8", doc.Content)
}
