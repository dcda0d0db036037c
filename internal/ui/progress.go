package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/cosinequanon/ufmt/internal/driver"
)

// progressModel renders one line per file plus an overall progress bar
// while pipeline events stream in. The channel closing ends the run.
type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path    string
	status  string
	stage   driver.Stage
	elapsed time.Duration
	failed  bool
}

type eventMsg driver.Event
type doneMsg struct{}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewProgressModel returns a Bubble Tea model that renders formatting progress.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle

	prog := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))

	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file, status: "queued"}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

// listenForEvent waits for the next pipeline event; a closed channel
// means the run finished.
func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// applyEvent folds one pipeline event into the table and nudges the
// progress bar.
func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	switch ev.Status {
	case driver.StatusDone:
		item.elapsed = ev.Elapsed
	case driver.StatusError:
		item.elapsed = ev.Elapsed
		item.failed = true
	}
	return m.prog.SetPercent(m.fraction())
}

// fraction estimates run completion, crediting finished files in full
// and in-flight ones by how deep in the pipeline they are.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 1.0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case "done", "error":
			total += 1.0
		default:
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}

	finished, failed := 0, 0
	for _, item := range m.items {
		if item.status == "done" || item.status == "error" {
			finished++
		}
		if item.failed {
			failed++
		}
	}

	var b strings.Builder
	if m.done {
		b.WriteString(headerStyle.Render(fmt.Sprintf("done: %s [%d/%d]", m.title, finished, len(m.items))))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s [%d/%d]", m.title, finished, len(m.items))))
	}
	if failed > 0 {
		b.WriteString(" ")
		b.WriteString(failStyle.Render(fmt.Sprintf("(%d failed)", failed)))
	}
	b.WriteString("\n\n")

	statusWidth := 10
	nameWidth := m.width - statusWidth - 16
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		b.WriteString("  ")
		b.WriteString(statusStyle(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status)))
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(truncate(item.path, nameWidth), nameWidth))
		if item.elapsed > 0 {
			b.WriteString(" ")
			b.WriteString(elapsedStyle.Render(item.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func progressFromStage(stage driver.Stage) float64 {
	switch stage {
	case driver.StageConfig:
		return 0.1
	case driver.StageSort:
		return 0.4
	case driver.StageStyle:
		return 0.7
	case driver.StageWrite:
		return 0.9
	default:
		return 0.0
	}
}

// statusLabel names what a file is doing right now. Working stages get
// verb labels; terminal states keep their own names.
func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusDone:
		return "done"
	case driver.StatusError:
		return "error"
	case driver.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageConfig:
		return "resolving"
	case driver.StageSort:
		return "sorting"
	case driver.StageStyle:
		return "styling"
	case driver.StageWrite:
		return "writing"
	default:
		return ""
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "done":
		return okStyle
	case "error":
		return failStyle
	case "queued":
		return idleStyle
	default:
		return busyStyle
	}
}

func truncate(path string, width int) string {
	if width <= 0 {
		return path
	}
	if runewidth.StringWidth(path) <= width {
		return path
	}
	if width <= 3 {
		return runewidth.Truncate(path, width, "")
	}
	return runewidth.Truncate(path, width-3, "...")
}
