// Copyright 2020 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reports

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// An Opener opens a URL, for instance in a new browser tab
type Opener interface {
	Open(url string) error
}

// OpenerFunc is a function that implements Opener
type OpenerFunc func(url string) error

// Open calls f
func (f OpenerFunc) Open(url string) error {
	return f(url)
}

// Handles returns true if the action must be opened in another tab.
// Only PDF and HTML reports flagged for it are.
func Handles(action *Action) bool {
	if action == nil || !action.OpenWithAnotherTab {
		return false
	}
	return action.ReportType == QWebPDF || action.ReportType == QWebHTML
}

// URL returns the URL of the report of the given action.
//
// The context of the action is merged with the user context, the latter
// taking precedence. If the action has data, it is passed as options
// with the context. Otherwise the active ids are appended to the path,
// and an active_ids value that is not made of integer ids is an error.
func URL(action *Action, userContext Data) (string, error) {
	format := action.ReportType.Format()
	if format == "" {
		return "", errors.Errorf("unsupported report type %q", action.ReportType)
	}
	merged := make(Data, len(action.Context)+len(userContext))
	for k, v := range action.Context {
		merged[k] = v
	}
	for k, v := range userContext {
		merged[k] = v
	}
	ctxJSON, err := jsonAPI.Marshal(merged)
	if err != nil {
		return "", errors.Wrap(err, "unable to marshal report context")
	}
	res := fmt.Sprintf("/report/%s/%s", format, action.ReportName)
	if len(action.Data) > 0 {
		options, err := jsonAPI.Marshal(action.Data)
		if err != nil {
			return "", errors.Wrap(err, "unable to marshal report options")
		}
		return res + "?options=" + encodeComponent(string(options)) + "&context=" + encodeComponent(string(ctxJSON)), nil
	}
	ids, err := joinIDs(merged["active_ids"])
	if err != nil {
		return "", err
	}
	if ids != "" {
		res += "/" + ids
	}
	return res + "?context=" + encodeComponent(string(ctxJSON)), nil
}

// Open opens the report of the action with opener if the action must be
// opened in another tab. It returns false if the action is not handled.
func Open(opener Opener, action *Action, userContext Data) (bool, error) {
	if !Handles(action) {
		return false, nil
	}
	u, err := URL(action, userContext)
	if err != nil {
		return false, err
	}
	log.Debug("Opening report in another tab", "report", action.ReportName, "url", u)
	if err := opener.Open(u); err != nil {
		return false, errors.Wrapf(err, "unable to open report %s", action.ReportName)
	}
	return true, nil
}

// ParseIDs parses a comma separated list of record ids
func ParseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	res := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid record id %q", p)
		}
		res[i] = id
	}
	return res, nil
}

// joinIDs returns the comma separated list of the given ids value.
// ids may be nil, a single id or a slice of ids of any integer type.
// Floats are accepted if they hold an integer, as decoded from JSON.
func joinIDs(ids interface{}) (string, error) {
	if ids == nil {
		return "", nil
	}
	v := reflect.ValueOf(ids)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		id, ok := recordID(v)
		if !ok {
			return "", errors.Errorf("invalid active_ids value %v of type %T", ids, ids)
		}
		return id, nil
	}
	parts := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		id, ok := recordID(v.Index(i))
		if !ok {
			return "", errors.Errorf("invalid record id %v in active_ids", v.Index(i))
		}
		parts[i] = id
	}
	return strings.Join(parts, ","), nil
}

// recordID formats v if it is an integer record id
func recordID(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatInt(int64(f), 10), true
	}
	return "", false
}

// encodeComponent escapes s like a URI component, spaces included
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
