// Package ui is the interactive terminal front end: pick inputs, pick a
// target format, watch the batch run, read the summary.
package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pic2any/batch"
	"pic2any/config"
	"pic2any/contracts"
	"pic2any/files_manager"
	"pic2any/formats"
)

type phase int

const (
	phasePick phase = iota
	phaseFormat
	phaseIconSize
	phaseConverting
	phaseDone
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type batchEventMsg contracts.Event

type batchDoneMsg struct {
	summary contracts.BatchSummary
	err     error
}

type Model struct {
	cfg config.Config
	log *slog.Logger

	phase    phase
	picker   filepicker.Model
	files    []string
	formats  []string
	cursor   int
	format   string
	iconSize int

	prog    progress.Model
	events  chan contracts.Event
	done    chan batchDoneMsg
	status  string
	doneN   int
	totalN  int
	summary contracts.BatchSummary
	runErr  error

	canceled bool
	width    int
}

func NewModel(cfg config.Config, logger *slog.Logger) Model {
	fp := filepicker.New()
	fp.AllowedTypes = formats.InputExtensions()
	fp.DirAllowed = true
	fp.FileAllowed = true
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	return Model{
		cfg:     cfg,
		log:     logger,
		phase:   phasePick,
		picker:  fp,
		formats: formats.Tokens(),
		prog:    progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return m.picker.Init()
}

// waitActivity bridges the orchestrator's channels into tea messages,
// one event per command.
func (m Model) waitActivity() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return batchEventMsg(ev)
		case res := <-m.done:
			return res
		}
	}
}

func (m Model) startBatch() (Model, tea.Cmd) {
	m.phase = phaseConverting
	m.totalN = len(m.files)
	m.events = make(chan contracts.Event, 64)
	m.done = make(chan batchDoneMsg, 1)

	req := contracts.ConversionRequest{
		Files:    m.files,
		Format:   m.format,
		IconSize: m.iconSize,
	}
	if m.cfg.OutputDirName != batch.DefaultOutputDirName {
		req.OutputDir = filepath.Join(filepath.Dir(m.files[0]), m.cfg.OutputDirName)
	}
	o := batch.New(m.cfg.Workers, m.log, m.events)
	go func() {
		summary, err := o.Run(req)
		m.done <- batchDoneMsg{summary: summary, err: err}
	}()
	return m, m.waitActivity()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.prog.Width = min(msg.Width-6, 60)
		return m, nil

	case tea.KeyMsg:
		switch m.phase {
		case phaseFormat, phaseIconSize:
			return m.updateMenu(msg)
		case phaseDone:
			return m, tea.Quit
		case phaseConverting:
			// batch is not interruptible mid-file; ignore keys
			return m, nil
		}
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.canceled = true
			return m, tea.Quit
		}

	case batchEventMsg:
		ev := contracts.Event(msg)
		if ev.Stage == contracts.StageRecorded {
			m.doneN = ev.Done
			if ev.Outcome != nil && !ev.Outcome.OK {
				m.status = failStyle.Render("failed: " + ev.Path)
			} else {
				m.status = ev.Path
			}
		} else {
			m.status = fmt.Sprintf("%s %s", ev.Stage, ev.Path)
		}
		return m, m.waitActivity()

	case batchDoneMsg:
		m.phase = phaseDone
		m.summary = msg.summary
		m.runErr = msg.err
		return m, nil
	}

	if m.phase == phasePick {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			files, err := files_manager.ExpandInputs([]string{path})
			if err != nil {
				m.status = failStyle.Render(err.Error())
				return m, cmd
			}
			m.files = files
			m.phase = phaseFormat
			m.cursor = 0
			m.status = ""
			return m, nil
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menuItems()

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "enter":
		if m.phase == phaseFormat {
			m.format = items[m.cursor]
			if m.format == "ico" {
				m.phase = phaseIconSize
				m.cursor = 0
				return m, nil
			}
			return m.startBatch()
		}
		// icon size menu: first entry keeps the source dimensions
		if m.cursor == 0 {
			m.iconSize = 0
		} else {
			m.iconSize = formats.IconSizes[m.cursor-1]
		}
		return m.startBatch()
	}
	return m, nil
}

func (m Model) menuItems() []string {
	if m.phase == phaseFormat {
		return m.formats
	}
	items := []string{"original size"}
	for _, s := range formats.IconSizes {
		items = append(items, strconv.Itoa(s)+"x"+strconv.Itoa(s))
	}
	return items
}

func (m Model) View() string {
	var b strings.Builder

	switch m.phase {
	case phasePick:
		b.WriteString(titleStyle.Render("pic2any") + "  " + dimStyle.Render("select a file or folder") + "\n\n")
		b.WriteString(m.picker.View())
		if m.status != "" {
			b.WriteString("\n" + m.status)
		}

	case phaseFormat, phaseIconSize:
		header := "convert to"
		if m.phase == phaseIconSize {
			header = "icon size"
		}
		b.WriteString(titleStyle.Render(header) + "  " + dimStyle.Render(fmt.Sprintf("%d file(s)", len(m.files))) + "\n\n")
		for i, item := range m.menuItems() {
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> "+item) + "\n")
			} else {
				b.WriteString("  " + item + "\n")
			}
		}
		b.WriteString("\n" + dimStyle.Render("enter select · esc cancel"))

	case phaseConverting:
		percent := 0.0
		if m.totalN > 0 {
			percent = float64(m.doneN) / float64(m.totalN)
		}
		b.WriteString(titleStyle.Render("converting") + "\n\n")
		b.WriteString(m.prog.ViewAs(percent) + "\n")
		b.WriteString(fmt.Sprintf("%d/%d  %s", m.doneN, m.totalN, dimStyle.Render(m.status)))

	case phaseDone:
		if m.runErr != nil {
			b.WriteString(failStyle.Render("batch failed to start: "+m.runErr.Error()) + "\n")
			break
		}
		b.WriteString(titleStyle.Render("done") + "\n\n")
		b.WriteString(okStyle.Render(fmt.Sprintf("%d converted", m.summary.Succeeded)))
		if m.summary.Failed > 0 {
			b.WriteString("  " + failStyle.Render(fmt.Sprintf("%d failed", m.summary.Failed)))
		}
		b.WriteString("\n" + dimStyle.Render("output: "+m.summary.OutputRoot))
		for _, out := range m.summary.Outcomes {
			if !out.OK {
				b.WriteString("\n" + failStyle.Render("  ✗ "+out.Input+": "+out.Err))
			}
		}
		b.WriteString("\n\n" + dimStyle.Render("press any key to exit"))
	}

	b.WriteString("\n")
	return b.String()
}

// Run drives the interactive session to completion.
func Run(cfg config.Config, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(cfg, logger), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.canceled {
		fmt.Println("Conversion canceled.")
	}
	return nil
}
