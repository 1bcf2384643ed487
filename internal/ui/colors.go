package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lamarqs/aria/internal/mood"
)

var styles = NewPalette("#1DB954", "#04B575", "#FF0000", "#FFA500", "#626262")

// moodColors maps each mood to its display color.
var moodColors = map[mood.Mood]lipgloss.Style{
	mood.Hype:   NewBold("#FF5F87"),
	mood.Happy:  NewBold("#FFD75F"),
	mood.Sad:    NewBold("#5F87FF"),
	mood.Mellow: NewBold("#87D7AF"),
	mood.Mixed:  NewBold("#AFAFAF"),
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// paintMood renders a mood name in its display color.
func paintMood(m mood.Mood) string {
	if style, ok := moodColors[m]; ok {
		return style.Render(string(m))
	}
	return string(m)
}
