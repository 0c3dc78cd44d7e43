// Copyright 2020 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry is the report collection of the application
var Registry *Collection

// A Type is the output type of a report
type Type string

// Report types
const (
	QWebPDF  Type = "qweb-pdf"
	QWebHTML Type = "qweb-html"
	QWebText Type = "qweb-text"
)

// Format returns the URL element of the report type, e.g. "pdf"
func (t Type) Format() string {
	switch t {
	case QWebPDF:
		return "pdf"
	case QWebHTML:
		return "html"
	case QWebText:
		return "text"
	}
	return ""
}

// A Collection is a collection of reports
type Collection struct {
	sync.RWMutex
	reports map[string]Report
}

// NewCollection returns a pointer to a new
// Collection instance
func NewCollection() *Collection {
	res := Collection{
		reports: make(map[string]Report),
	}
	return &res
}

// Add adds the given report to our Collection
func (rr *Collection) Add(r Report) {
	if err := rr.add(r, false); err != nil {
		log.Panic("error while registering a report", "name", r, "ID", r.ID(), "error", err.Error())
	}
}

// Replace the given report in our Collection
func (rr *Collection) Replace(r Report) {
	if err := rr.add(r, true); err != nil {
		log.Panic("error while replacing a report", "name", r, "ID", r.ID(), "error", err.Error())
	}
}

// add or replace a report in the registry
func (rr *Collection) add(r Report, replace bool) error {
	if err := r.Init(); err != nil {
		return err
	}
	rr.Lock()
	defer rr.Unlock()
	_, ok := rr.reports[r.ID()]
	switch {
	case ok && !replace:
		return errors.New("trying to register a report that already exists")
	case !ok && replace:
		return errors.New("trying to replace a report that doesn't exist")
	}
	rr.reports[r.ID()] = r
	return nil
}

// Get returns the Report with the given id
func (rr *Collection) Get(id string) (Report, bool) {
	rr.RLock()
	defer rr.RUnlock()
	r, ok := rr.reports[id]
	return r, ok
}

// MustGet returns the Report with the given id.
// It panics if the record doesn't exist.
func (rr *Collection) MustGet(id string) Report {
	r, ok := rr.Get(id)
	if !ok {
		log.Panic("Report doesn't exist", "ID", id)
	}
	return r
}

// IDs returns the sorted IDs of all the reports of the collection
func (rr *Collection) IDs() []string {
	rr.RLock()
	defer rr.RUnlock()
	res := make([]string, 0, len(rr.reports))
	for id := range rr.reports {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

// Data holds the item specific data used to render a report.
type Data map[string]interface{}

// A Document is the result of rendering a report
type Document struct {
	// Content is the binary content of the rendered report
	Content []byte
	// MimeType of the content
	MimeType string
	// Filename for the document
	Filename string
}

// A Report is bound to a model and can render a report for records of this model.
type Report interface {
	fmt.Stringer
	// ID returns the unique identifying code of this report
	ID() string
	// Model that this report is bound to.
	Model() string
	// Render this report for the records with the given ids.
	Render(ctx context.Context, ids []int64, additionalData Data) (*Document, error)
	// Init checks the report. Init is called at registration.
	Init() error
	// Type returns the output type of the report
	Type() Type
	// NewTab returns true if the report must be opened in another tab
	NewTab() bool
}

// Register add the given report to the registry
func Register(r Report) {
	Registry.Add(r)
}

// An Action asks the client to print a report
type Action struct {
	Name               string `json:"name"`
	Model              string `json:"model"`
	ReportName         string `json:"report_name"`
	ReportType         Type   `json:"report_type"`
	Context            Data   `json:"context,omitempty"`
	Data               Data   `json:"data,omitempty"`
	OpenWithAnotherTab bool   `json:"open_with_another_tab"`
}

// GetAction returns an action for the report with the given reportID for the records
// with the given ids and optional additionalData.
func GetAction(reportID string, ids []int64, additionalData Data) *Action {
	report := Registry.MustGet(reportID)
	return &Action{
		Name:               report.String(),
		Model:              report.Model(),
		ReportName:         reportID,
		ReportType:         report.Type(),
		Context:            Data{"active_ids": ids},
		Data:               additionalData,
		OpenWithAnotherTab: report.NewTab(),
	}
}
