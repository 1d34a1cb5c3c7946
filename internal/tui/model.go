// Package tui provides the BubbleTea-based home screen of the platepix app.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/config"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/theme"
	"github.com/jmylchreest/platepix/internal/widget"
)

// maxCardWidth caps automatic card width on wide terminals.
const maxCardWidth = 64

// dayCheckInterval bounds the wait between day checks. Timers stall while
// the machine is suspended, so a single tick to midnight can fire late.
const dayCheckInterval = time.Minute

// Options configures the TUI.
type Options struct {
	Provider *widget.Provider
	Service  *selection.Service
	// Namespace holds app settings and is watched for changes made by
	// other processes. May be nil when the shared store is unavailable.
	Namespace store.Namespace
	Config    *config.Config
	Now       func() time.Time
	Logger    *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	provider *widget.Provider
	svc      *selection.Service
	ns       store.Namespace
	cfg      *config.Config
	now      func() time.Time
	logger   *slog.Logger

	keys     KeyMap
	help     help.Model
	showHelp bool

	entries  []widget.Entry
	settings *store.Settings
	themeID  string

	width  int
	height int
	ready  bool

	statusMsg string
	statusErr bool

	// changes receives a value whenever the shared namespace changes.
	changes <-chan struct{}
}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := help.New()
	h.ShowAll = false

	return Model{
		provider: opts.Provider,
		svc:      opts.Service,
		ns:       opts.Namespace,
		cfg:      opts.Config,
		now:      opts.Now,
		logger:   opts.Logger,
		keys:     DefaultKeyMap(),
		help:     h,
		showHelp: opts.Config.TUI.ShowHelp,
		themeID:  opts.Provider.ThemeID(),
	}
}

type entriesMsg struct {
	entries  []widget.Entry
	settings *store.Settings
	themeID  string
}

// dayCheckMsg carries the local day the check was armed on.
type dayCheckMsg struct {
	day time.Time
}

type namespaceChangedMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.load,
		m.recordTheme(m.themeID),
		m.waitForDayChange(),
		m.watchForChanges,
	)
}

// load resolves today's entries and the app settings.
func (m Model) load() tea.Msg {
	now := m.now()
	themeID := m.provider.ThemeID()

	var entries []widget.Entry
	for _, set := range m.provider.Sets() {
		e, err := m.provider.Snapshot(set, now)
		if err != nil {
			m.logger.Warn("failed to resolve entry", "set", set, "error", err)
			e = m.provider.Placeholder(set)
		}
		entries = append(entries, e)
	}

	settings := store.DefaultSettings()
	if m.ns != nil {
		if s, err := store.LoadSettings(m.ns); err == nil {
			settings = s
		} else {
			m.logger.Warn("failed to load settings", "error", err)
		}
	}

	return entriesMsg{entries: entries, settings: settings, themeID: themeID}
}

// recordTheme stores the displayed theme for the widget process.
func (m Model) recordTheme(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if svc != nil {
			svc.RecordDisplayedTheme(id)
		}
		return nil
	}
}

// waitForDayChange fires at the next local midnight or after
// dayCheckInterval, whichever comes first.
func (m Model) waitForDayChange() tea.Cmd {
	now := m.now()
	day := selection.StartOfDay(now, m.provider.Location())
	return tea.Tick(m.dayCheckDelay(now), func(time.Time) tea.Msg {
		return dayCheckMsg{day: day}
	})
}

func (m Model) dayCheckDelay(now time.Time) time.Duration {
	next := selection.NextDay(now, m.provider.Location())
	return max(min(next.Sub(now), dayCheckInterval), 0)
}

// watchForChanges waits for the shared namespace to change.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return namespaceChangedMsg{}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case entriesMsg:
		m.entries = msg.entries
		m.settings = msg.settings
		m.themeID = msg.themeID
		return m, nil

	case dayCheckMsg:
		if selection.SameDay(msg.day, m.now(), m.provider.Location()) {
			return m, m.waitForDayChange()
		}
		return m, tea.Batch(m.load, m.waitForDayChange())

	case namespaceChangedMsg:
		return m, tea.Batch(m.load, m.watchForChanges)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status(m.text("tui.copied"), false)
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.NextTheme):
		m.themeID = theme.Next(m.themeID)
		for i := range m.entries {
			m.entries[i].ThemeID = m.themeID
		}
		name := theme.LoadOrDefault(m.themeID).Name
		return m, tea.Batch(
			m.recordTheme(m.themeID),
			status(fmt.Sprintf(m.text("tui.theme"), name), false),
		)

	case key.Matches(msg, m.keys.ToggleReminder):
		return m, m.toggleReminder()

	case key.Matches(msg, m.keys.Copy):
		if e, ok := m.entry(catalog.SetMotivations); ok {
			return m, m.copyToClipboard(e.Text)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load
	}

	return m, nil
}

// toggleReminder flips the reminder preference and reloads.
func (m Model) toggleReminder() tea.Cmd {
	if m.ns == nil || m.settings == nil {
		return status(m.text("tui.offline"), true)
	}
	next := *m.settings
	if err := next.SetReminder(!next.ReminderEnabled, "", "tui"); err != nil {
		return status(err.Error(), true)
	}
	ns, load := m.ns, m.load
	return func() tea.Msg {
		if err := store.SaveSettings(ns, &next); err != nil {
			return statusMsg{text: "Failed to save settings: " + err.Error(), isErr: true}
		}
		return load()
	}
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.cfg.Clipboard.Command
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, command)}
	}
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// entry returns the loaded entry for set.
func (m Model) entry(set catalog.Set) (widget.Entry, bool) {
	for _, e := range m.entries {
		if e.Set == set {
			return e, true
		}
	}
	return widget.Entry{}, false
}

// ThemeID returns the theme the screen is rendered with.
func (m Model) ThemeID() string {
	return m.themeID
}

func (m Model) text(key string) string {
	return m.provider.Bundle().Lookup(key, widget.TitleTable)
}

func (m Model) cardWidth() int {
	if m.cfg.TUI.Width > 0 {
		return m.cfg.TUI.Width
	}
	if m.width > 0 {
		return min(m.width, maxCardWidth)
	}
	return widget.DefaultWidth
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	styles := theme.LoadOrDefault(m.themeID).Styles()

	var b strings.Builder
	b.WriteString(styles.Accent.Bold(true).Render("platepix"))
	b.WriteString("  ")
	b.WriteString(styles.Muted.Render(m.now().Format("Monday, 2 January 2006")))
	b.WriteString("\n\n")

	if m.svc != nil && !m.svc.Available() {
		b.WriteString(styles.Muted.Render(m.text("tui.offline")))
		b.WriteString("\n\n")
	}

	for _, e := range m.entries {
		b.WriteString(widget.Render(e, m.cardWidth()))
		b.WriteString("\n")
		if e.Set == catalog.SetReminders && m.settings != nil {
			b.WriteString(styles.Muted.Render(m.reminderLine()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		b.WriteString(statusStyle.Render(m.statusMsg))
	} else if m.showHelp {
		b.WriteString(m.help.View(m.keys))
	}

	return b.String()
}

func (m Model) reminderLine() string {
	if m.settings.ReminderEnabled {
		return fmt.Sprintf(m.text("tui.reminder_on"), m.settings.ReminderTime)
	}
	return m.text("tui.reminder_off")
}

// Run starts the TUI with the given options.
func Run(opts Options) error {
	m := New(opts)

	var watcher *store.Watcher
	if opts.Namespace != nil {
		changes := make(chan struct{}, 1)
		w, err := store.NewWatcher(opts.Namespace, func(string) {
			select {
			case changes <- struct{}{}:
			default:
			}
		}, m.logger)
		if err == nil {
			if err := w.Start(); err != nil {
				m.logger.Warn("failed to start namespace watcher", "error", err)
			} else {
				watcher = w
				m.changes = changes
			}
		} else {
			m.logger.Debug("namespace not watchable", "error", err)
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	if watcher != nil {
		_ = watcher.Stop()
	}

	return err
}
