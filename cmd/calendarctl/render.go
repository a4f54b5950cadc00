package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lomoval/personal-calendar/internal/calendar"
	"github.com/lomoval/personal-calendar/internal/storage"
)

const (
	cellWidth       = 16
	cellHeight      = 4
	eventsPerCell   = cellHeight - 1
	daysInWeek      = 7
	monthTitleLayout = "January 2006"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Width(cellWidth * daysInWeek).Align(lipgloss.Center)
	weekdayStyle = lipgloss.NewStyle().Bold(true).Width(cellWidth).Align(lipgloss.Center)
	cellStyle    = lipgloss.NewStyle().Width(cellWidth).Height(cellHeight).PaddingLeft(1)
	fillerStyle  = cellStyle.Faint(true)
	todayStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

// renderMonth draws the month as a week by week grid.
func renderMonth(m calendar.Month, today time.Time) string {
	rows := []string{titleStyle.Render(m.First.Format(monthTitleLayout)), weekdayHeader(m.WeekStart)}

	week := make([]string, 0, daysInWeek)
	for cell := range m.Cells() {
		week = append(week, renderCell(cell, today))
		if len(week) == daysInWeek {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
			week = week[:0]
		}
	}
	if len(week) > 0 {
		for len(week) < daysInWeek {
			week = append(week, cellStyle.Render(""))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func weekdayHeader(start time.Weekday) string {
	names := make([]string, 0, daysInWeek)
	for i := 0; i < daysInWeek; i++ {
		day := time.Weekday((int(start) + i) % daysInWeek)
		names = append(names, weekdayStyle.Render(day.String()[:3]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, names...)
}

func renderCell(cell calendar.Cell, today time.Time) string {
	day := fmt.Sprintf("%2d", cell.Date.Day())
	if cell.Filler {
		return fillerStyle.Render(day)
	}
	if sameDay(cell.Date, today) {
		day = todayStyle.Render(day)
	}

	lines := []string{day}
	for i, e := range cell.Events {
		if i == eventsPerCell-1 && len(cell.Events) > eventsPerCell {
			lines = append(lines, fmt.Sprintf("+%d more", len(cell.Events)-i))
			break
		}
		lines = append(lines, eventLine(e))
	}
	return cellStyle.Render(strings.Join(lines, "\n"))
}

func eventLine(e storage.Event) string {
	title := []rune(e.Title)
	if limit := cellWidth - 2; len(title) > limit {
		title = append(title[:limit-1], '…')
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render(string(title))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func renderEvents(events []storage.Event) string {
	if len(events) == 0 {
		return "no events"
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %s", marker, e))
	}
	return strings.Join(lines, "\n")
}
