package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andreiashu/citysuggest"
)

// progressInterval is how often the status line refreshes while loading.
const progressInterval = 250 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(progressInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Widget is the autocomplete input with its result list.
// It draws whatever state the session publishes; all navigation logic lives
// in the session.
type Widget struct {
	session     *citysuggest.Session
	load        *citysuggest.Initialization // nil when the data is already loaded
	input       textinput.Model
	state       citysuggest.State
	styles      Styles
	chosen      string
	unsubscribe func()
}

// NewWidget creates a widget over session. load may be nil.
func NewWidget(session *citysuggest.Session, load *citysuggest.Initialization) *Widget {
	ti := textinput.New()
	ti.Placeholder = "Start typing a city..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	w := &Widget{
		session: session,
		load:    load,
		input:   ti,
		state:   session.State(),
		styles:  DefaultStyles(),
	}
	w.unsubscribe = session.Subscribe(func(st citysuggest.State) { w.state = st })
	return w
}

// Chosen returns the committed city name, or "" if the user quit without choosing.
func (w *Widget) Chosen() string {
	return w.chosen
}

// Close detaches the widget from its session.
func (w *Widget) Close() {
	w.unsubscribe()
}

// Init starts the cursor blink and, while loading, the progress ticker.
func (w *Widget) Init() tea.Cmd {
	if w.load == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, tick())
}

// Update handles messages.
func (w *Widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.load == nil {
			return w, nil
		}
		if _, done := w.load.Report(); !done {
			return w, tick()
		}
		return w, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return w, tea.Quit
		case "up", "down":
			w.session.Key(msg.String())
			return w, nil
		case "enter":
			if w.session.Key("enter") {
				w.chosen = w.state.Value
				w.input.SetValue(w.state.Query)
				w.input.CursorEnd()
				return w, tea.Quit
			}
			return w, nil
		case "esc":
			// First esc closes the list, the second leaves.
			if w.state.Open {
				w.session.Key("esc")
				return w, nil
			}
			return w, tea.Quit
		}
	}

	before := w.input.Value()
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	if v := w.input.Value(); v != before {
		w.session.SetQuery(v)
	}
	return w, cmd
}

// View renders the widget.
func (w *Widget) View() string {
	var b strings.Builder

	b.WriteString(w.styles.Title.Render("City"))
	b.WriteString("\n")
	b.WriteString(w.input.View())
	b.WriteString("\n")

	if w.state.Open {
		sel := w.state.Selection
		for i, m := range w.state.Matches {
			if sel.Active && i == sel.Index {
				b.WriteString("› " + w.styles.Active.Render(m.Label()))
			} else {
				b.WriteString("  " + w.styles.Item.Render(m.Label()))
			}
			b.WriteString("\n")
		}
	} else if w.chosen != "" {
		b.WriteString(w.styles.Selected.Render("Chosen: " + w.chosen))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(w.statusLine())
	b.WriteString("\n")
	b.WriteString(w.styles.Status.Render("↑/↓ move · enter choose · esc close · ctrl+c quit"))
	b.WriteString("\n")
	return b.String()
}

func (w *Widget) statusLine() string {
	if w.load == nil {
		return ""
	}
	report, done := w.load.Report()
	if !done {
		settled, total := w.load.Progress()
		return w.styles.Status.Render(fmt.Sprintf("loading partitions %d/%d", settled, total))
	}
	if report.Failed > 0 {
		return w.styles.Warning.Render(fmt.Sprintf("%d cities loaded, %d of %d partitions failed",
			report.Records, report.Failed, report.Total))
	}
	return w.styles.Status.Render(fmt.Sprintf("%d cities loaded", report.Records))
}
