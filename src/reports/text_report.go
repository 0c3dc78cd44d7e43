// Copyright 2020 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	html "html/template"
	text "text/template"
)

// Mime types supported by TextReport
const (
	MimeText = "text/plain"
	MimeHTML = "text/html"
)

// A TextReport is a simple text or html report.
//
// It uses the html/template package if the report's mime type is text/html
// and text/template if the mimetype is text/plain.
type TextReport struct {
	Id           string
	Name         string
	ModelName    string
	MimeType     string
	Filename     string
	Template     string
	Funcs        map[string]interface{}
	DataFunc     func(context.Context, []int64, Data) (Data, error)
	OpenInNewTab bool
}

// Render this report for the given ids.
func (r *TextReport) Render(ctx context.Context, ids []int64, additionalData Data) (*Document, error) {
	data, err := r.DataFunc(ctx, ids, additionalData)
	if err != nil {
		return nil, err
	}
	var res bytes.Buffer
	switch r.MimeType {
	case MimeText:
		template, err := text.New("").Funcs(r.Funcs).Parse(r.Template)
		if err != nil {
			return nil, err
		}
		if err := template.Execute(&res, data); err != nil {
			return nil, err
		}
	default:
		template, err := html.New("").Funcs(r.Funcs).Parse(r.Template)
		if err != nil {
			return nil, err
		}
		if err := template.Execute(&res, data); err != nil {
			return nil, err
		}
	}
	return &Document{
		Content:  res.Bytes(),
		MimeType: r.MimeType,
		Filename: r.Filename,
	}, nil
}

// Init checks the report. Init is called at registration.
func (r *TextReport) Init() error {
	if r.MimeType != MimeHTML && r.MimeType != MimeText {
		return fmt.Errorf("unsupported mime type '%s' for TextReport", r.MimeType)
	}
	if r.DataFunc == nil {
		return errors.New("incomplete TextReport: DataFunc is not set")
	}
	if r.Filename == "" {
		return errors.New("incomplete TextReport: Filename is not set")
	}
	_, err := text.New("").Funcs(r.Funcs).Parse(r.Template)
	if err != nil {
		return fmt.Errorf("error while loading TextReport template: %s", err)
	}
	return nil
}

func (r *TextReport) String() string {
	return r.Name
}

// ID returns the unique identifying code of this report
func (r *TextReport) ID() string {
	return r.Id
}

// Model returns the name of the model that this report is bound to.
func (r *TextReport) Model() string {
	return r.ModelName
}

// Type of the report: qweb-html or qweb-text depending on the mime type
func (r *TextReport) Type() Type {
	if r.MimeType == MimeHTML {
		return QWebHTML
	}
	return QWebText
}

// NewTab returns true if the report is opened in another tab
func (r *TextReport) NewTab() bool {
	return r.OpenInNewTab
}
