package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/notexe/remind/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	BorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")) // Soft blue border
)

// Colors per display status.
var statusColors = map[reminder.DisplayStatus]lipgloss.Color{
	reminder.DisplayPending: lipgloss.Color("222"),
	reminder.DisplayDone:    lipgloss.Color("114"),
	reminder.DisplayMissed:  lipgloss.Color("203"),
}

const timeLayout = "2006-01-02 15:04:05"

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

// FormatScheduled renders the confirmation printed after scheduling.
func (f *Formatter) FormatScheduled(s *reminder.Scheduled) string {
	label := func(l string) string { return f.render(LabelStyle, l) }

	lines := []string{
		f.render(SuccessStyle, "✅ Reminder set!"),
		label("ID:  ") + s.Record.ID,
		label("Msg: ") + s.Record.Message,
		label("At:  ") + s.FireAt().Local().Format("15:04:05"),
	}
	if s.Record.Repeat > 1 {
		lines = append(lines, label("Repeat: ")+fmt.Sprintf("%d times", s.Record.Repeat))
	}
	if s.Record.Permanent {
		lines = append(lines, label("Permanent: ")+"yes")
	}
	return strings.Join(lines, "\n")
}

// FormatList renders reminders as a table, or a single line when there are
// none.
func (f *Formatter) FormatList(entries []reminder.Entry) string {
	if len(entries) == 0 {
		return f.render(DimStyle, "No reminders.")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.ID),
			string(e.Display),
			FormatTime(e.TargetTime),
			formatRepeat(e.Repeat),
			formatFlags(e.Record),
			e.Message,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "STATUS", "TARGET", "REPEAT", "FLAGS", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if !f.colored {
				return base
			}
			if row == table.HeaderRow {
				return base.Inherit(HeaderStyle)
			}
			if col == 1 && row >= 0 && row < len(entries) {
				return base.Foreground(statusColors[entries[row].Display])
			}
			return base
		})
	if f.colored {
		t = t.BorderStyle(BorderStyle)
	}

	return t.String()
}

// FormatTime renders t in local time the way the list does.
func FormatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRepeat(n int) string {
	if n <= 1 {
		return "1"
	}
	return fmt.Sprintf("%dx", n)
}

func formatFlags(r reminder.Record) string {
	var flags []string
	if r.Mute {
		flags = append(flags, "mute")
	}
	if r.Permanent {
		flags = append(flags, "permanent")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
