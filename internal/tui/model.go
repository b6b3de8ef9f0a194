// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bigcabalworks/sitebatch/internal/progress"
	"github.com/bigcabalworks/sitebatch/internal/runbatch"
	"github.com/bigcabalworks/sitebatch/internal/site"
)

// rowStatus is the display state of one site row.
type rowStatus int

const (
	rowPending rowStatus = iota
	rowRunning
	rowSuccess
	rowFailed
	rowCanceled
)

const durationRounding = 100 * time.Millisecond

// siteRow is one line of the progress display, keyed by batch index so
// duplicate site IDs get independent rows.
type siteRow struct {
	id       site.ID
	status   rowStatus
	started  time.Time
	elapsed  time.Duration
	errMsg   string
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title    lipgloss.Style
	Pending  lipgloss.Style
	Running  lipgloss.Style
	Success  lipgloss.Style
	Failed   lipgloss.Style
	Canceled lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Canceled: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// Model is the bubbletea model for batch progress.
type Model struct {
	rows      []*siteRow
	byIndex   map[int]*siteRow
	total     int
	spinner   spinner.Model
	styles    *Styles
	width     int
	completed bool
	quitting  bool
	results   runbatch.Results
	runErr    error
}

// EventMsg wraps a progress event for the tea framework.
type EventMsg struct {
	Event progress.Event
}

// BatchDoneMsg indicates the batch has finished executing.
type BatchDoneMsg struct {
	Results runbatch.Results
	Err     error
}

// NewModel creates a new TUI model.
func NewModel() *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		byIndex: make(map[int]*siteRow),
		spinner: sp,
		styles:  NewStyles(),
	}
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case BatchDoneMsg:
		m.completed = true
		m.results = msg.Results
		m.runErr = msg.Err

		return m, nil
	}

	return m, nil
}

// applyEvent folds one progress event into the row table.
func (m *Model) applyEvent(event progress.Event) {
	if event.Type == progress.EventBatchCompleted {
		return
	}

	m.total = event.Total

	row, ok := m.byIndex[event.Index]
	if !ok {
		row = &siteRow{id: event.SiteID}
		m.byIndex[event.Index] = row
		m.rows = append(m.rows, row)
	}

	switch event.Type {
	case progress.EventSiteStarted:
		row.status = rowRunning
		row.started = event.Timestamp
	case progress.EventSiteCompleted:
		row.status = rowSuccess
		row.elapsed = event.Timestamp.Sub(row.started)
	case progress.EventSiteFailed:
		row.status = rowFailed
		if !row.started.IsZero() {
			row.elapsed = event.Timestamp.Sub(row.started)
		}

		if event.Err != nil {
			row.errMsg = event.Err.Error()
		}
	case progress.EventSiteCanceled:
		row.status = rowCanceled
	}
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("sitebatch"))
	b.WriteString("\n")

	for _, row := range m.rows {
		m.renderRow(&b, row)
	}

	if m.completed {
		b.WriteString("\n")

		switch {
		case m.runErr != nil:
			b.WriteString(m.styles.Failed.Render(fmt.Sprintf("Batch aborted: %s", m.runErr)))
		case m.results.HasError():
			b.WriteString(m.styles.Failed.Render("Batch completed with failures"))
		default:
			b.WriteString(m.styles.Success.Render("Batch completed successfully"))
		}

		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("'q' to quit and return to terminal"))
	} else {
		b.WriteString(m.styles.Help.Render("'q' to abandon the display (the batch keeps running)"))
	}

	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderRow(b *strings.Builder, row *siteRow) {
	var icon, name string

	switch row.status {
	case rowPending:
		icon = " "
		name = m.styles.Pending.Render(row.id.String())
	case rowRunning:
		icon = m.spinner.View()
		name = m.styles.Running.Render(row.id.String())
	case rowSuccess:
		icon = m.styles.Success.Render("✓")
		name = m.styles.Success.Render(row.id.String())
	case rowFailed:
		icon = m.styles.Failed.Render("✗")
		name = m.styles.Failed.Render(row.id.String())
	case rowCanceled:
		icon = m.styles.Canceled.Render("~")
		name = m.styles.Canceled.Render(row.id.String())
	}

	b.WriteString(fmt.Sprintf("%s %s", icon, name))

	if row.elapsed > 0 {
		b.WriteString(m.styles.Pending.Render(fmt.Sprintf(" (%s)", row.elapsed.Round(durationRounding))))
	}

	if row.errMsg != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.Error.Render(row.errMsg))
	}

	b.WriteString("\n")
}
