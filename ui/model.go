package ui

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type AppState int

const (
	MainMenuState AppState = iota
	RunningState
	CompletionState
)

// Runner executes one named action and returns a one-line summary for
// the completion screen.
type Runner func(action string) (string, error)

const (
	ActionCrawl     = "Crawl the gallery"
	ActionDownload  = "Download images"
	ActionImport    = "Import snapshot into database"
	ActionTranslate = "Translate prompts to English"
	ActionMigrate   = "Migrate database to PocketBase"
	ActionServe     = "Serve the view-count API"
	ActionQuit      = "Quit"
)

type MainModel struct {
	version   string
	quit      bool
	cursorPos int
	selected  string
	options   []string
	state     AppState
	keys      keyMap
	help      help.Model
	width     int
	height    int
	message   string
	runErr    error
	runner    Runner
}

type runCompleteMsg struct {
	summary string
	err     error
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Help   key.Binding
	Quit   key.Binding
	Back   key.Binding
	Select key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Back},
		{k.Help, k.Quit},
	}
}

var defaultKeyMap = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back to menu"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
}

func NewMainModel(runner Runner, version string) *MainModel {
	return &MainModel{
		version: version,
		options: []string{
			ActionCrawl,
			ActionDownload,
			ActionImport,
			ActionTranslate,
			ActionMigrate,
			ActionServe,
			ActionQuit,
		},
		cursorPos: 0,
		keys:      defaultKeyMap,
		help:      help.New(),
		state:     MainMenuState,
		runner:    runner,
	}
}

func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		func() tea.Msg {
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-c
				os.Exit(0)
			}()
			return nil
		},
	)
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case runCompleteMsg:
		m.state = CompletionState
		m.message = msg.summary
		m.runErr = msg.err
		return m, nil
	}

	switch m.state {
	case MainMenuState:
		return m.HandleMainMenuUpdate(msg)
	case CompletionState:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(keyMsg, m.keys.Quit):
				m.quit = true
				return m, tea.Quit
			case key.Matches(keyMsg, m.keys.Back), key.Matches(keyMsg, m.keys.Select):
				m.Reset()
				return m, nil
			}
		}
	case RunningState:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Quit) {
			m.quit = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	switch m.state {
	case RunningState:
		return m.RenderRunning()
	case CompletionState:
		return m.RenderCompletion()
	default:
		return m.RenderMainMenu()
	}
}

func (m *MainModel) Reset() {
	m.cursorPos = 0
	m.selected = ""
	m.message = ""
	m.runErr = nil
	m.state = MainMenuState
}
