// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package mentions provides the group mentions of task threads.
//
// On project.task threads, "@all" notifies all the followers of the task
// and "@Vorstand" notifies the board members among them.
package mentions

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kulturhaus/kulturhaus/src/i18n"
)

// TaskModel is the only model whose threads get group mentions
const TaskModel = "project.task"

// Group mention names
const (
	AllName   = "all"
	BoardName = "Vorstand"
)

var (
	allPattern   = regexp.MustCompile(`(?i)@all\b`)
	boardPattern = regexp.MustCompile(`(?i)@vorstand\b`)
)

// A Suggestion is an entry of the mention suggestion list of the composer
type Suggestion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Special     bool   `json:"special,omitempty"`
}

// Mention returns the text inserted for this suggestion
func (s Suggestion) Mention() string {
	return "@" + s.Name
}

// groupSuggestions returns the group mentions in the given language
func groupSuggestions(lang string) []Suggestion {
	return []Suggestion{
		{
			ID:          "mention_all",
			Name:        AllName,
			DisplayName: i18n.T(lang, "mention.all"),
			Description: i18n.T(lang, "mention.all_help"),
			Icon:        "fa-users",
			Special:     true,
		},
		{
			ID:          "mention_vorstand",
			Name:        BoardName,
			DisplayName: i18n.T(lang, "mention.board"),
			Description: i18n.T(lang, "mention.board_help"),
			Icon:        "fa-user-tie",
			Special:     true,
		},
	}
}

// Suggest returns the suggestions for term on a thread of model.
//
// On task threads, the group mentions whose name starts with term are
// put before the regular suggestions. Other threads get the regular
// suggestions only.
func Suggest(model, term, lang string, regular []Suggestion) []Suggestion {
	if model != TaskModel {
		return regular
	}
	term = strings.ToLower(strings.TrimPrefix(term, "@"))
	var res []Suggestion
	for _, s := range groupSuggestions(lang) {
		if strings.HasPrefix(strings.ToLower(s.Name), term) {
			res = append(res, s)
		}
	}
	return append(res, regular...)
}

// Insert replaces the mention being typed before cursor in text by the
// given suggestion followed by a space. cursor and the returned cursor
// are counted in characters. If there is no '@' before cursor, text is
// returned unchanged.
func Insert(text string, cursor int, s Suggestion) (string, int) {
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		cursor = len(runes)
	}
	before := string(runes[:cursor])
	at := strings.LastIndex(before, "@")
	if at < 0 {
		return text, cursor
	}
	head := before[:at] + s.Mention() + " "
	return head + string(runes[cursor:]), utf8.RuneCountInString(head)
}

// Notice returns the message shown when a group mention is selected
func Notice(s Suggestion, lang string) string {
	return i18n.T(lang, "mention.notice", s.Mention(), s.DisplayName)
}

// Mentions tells which group mentions a message contains
type Mentions struct {
	All   bool
	Board bool
}

// Any returns true if at least one group is mentioned
func (m Mentions) Any() bool {
	return m.All || m.Board
}

// Extract returns the group mentions of the given message body
func Extract(body string) Mentions {
	return Mentions{
		All:   allPattern.MatchString(body),
		Board: boardPattern.MatchString(body),
	}
}

// Highlight wraps the group mentions of body in badges
func Highlight(body string, m Mentions) string {
	if m.All {
		body = allPattern.ReplaceAllString(body, `<span class="o_mail_mention_all badge text-bg-info">@all</span>`)
	}
	if m.Board {
		body = boardPattern.ReplaceAllString(body, `<span class="o_mail_mention_vorstand badge text-bg-warning">@Vorstand</span>`)
	}
	return body
}

// A Follower is a partner following a task
type Follower struct {
	PartnerID int64
	Function  string
	Board     bool
}

// IsBoardMember returns true if the follower is flagged as board member
// or if its job title mentions the board.
func (f Follower) IsBoardMember() bool {
	return f.Board || strings.Contains(strings.ToLower(f.Function), "vorstand")
}

// Recipients returns the partners to notify for a message with the given
// mentions: the explicit recipients, then all the followers for @all and
// the board members for @Vorstand. Duplicates are removed, order is kept.
func Recipients(m Mentions, followers []Follower, explicit []int64) []int64 {
	seen := make(map[int64]bool)
	var res []int64
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	for _, id := range explicit {
		add(id)
	}
	for _, f := range followers {
		if m.All || (m.Board && f.IsBoardMember()) {
			add(f.PartnerID)
		}
	}
	return res
}
