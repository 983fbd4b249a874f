package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/tasks"
)

var _ list.Item = candidateItem{}

// candidateItem wraps one search result to implement [list.Item]. It keeps
// the item's callback token so selecting it drives the same path a chat
// button press does.
type candidateItem struct {
	candidate models.Candidate
	item      tasks.SearchItem
}

func (i candidateItem) FilterValue() string { return i.candidate.Title }
func (i candidateItem) Title() string       { return i.candidate.Title }
func (i candidateItem) Description() string {
	desc := i.candidate.Artist
	if i.candidate.PreviewURL != "" {
		desc += " • preview available"
	}
	return desc
}
