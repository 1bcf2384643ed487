package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/lamarqs/aria/internal/mood"
	"github.com/lamarqs/aria/internal/services"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps a classified track to implement [list.Item].
type trackItem struct {
	track services.Track
	mood  mood.Mood
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := string(i.mood)
	if len(i.track.Artists) > 0 {
		desc = fmt.Sprintf("%s • %s", i.track.Artists[0].Name, desc)
	}
	return desc
}
