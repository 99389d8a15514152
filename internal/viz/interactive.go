package viz

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/ripple/internal/config"
)

type presetItem struct {
	name, desc string
}

func (i presetItem) Title() string       { return i.name }
func (i presetItem) Description() string { return i.desc }
func (i presetItem) FilterValue() string { return i.name }

// BuildFunc creates the live view for a preset.
type BuildFunc func(preset string) (Model, error)

// App starts on a preset menu and switches to the live view once one is picked.
type App struct {
	menu          list.Model
	live          *Model
	build         BuildFunc
	err           error
	width, height int
}

func NewApp(build BuildFunc) App {
	names := config.ListPresets()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, presetItem{name: name, desc: config.Presets[name].Description})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(CurrentTheme.Accent).
		BorderLeftForeground(CurrentTheme.Accent)

	l := list.New(items, delegate, 60, 20)
	l.Title = "ripple · pick a preset"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)

	return App{menu: l, build: build}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = size.Width, size.Height
		a.menu.SetSize(size.Width, size.Height-1)
	}
	if a.live != nil {
		next, cmd := a.live.Update(msg)
		live := next.(Model)
		a.live = &live
		return a, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		case "enter":
			item, ok := a.menu.SelectedItem().(presetItem)
			if !ok {
				return a, nil
			}
			live, err := a.build(item.name)
			if err != nil {
				a.err = err
				return a, nil
			}
			a.live = &live
			if a.width == 0 {
				return a, live.Init()
			}
			w, h := a.width, a.height
			return a, tea.Batch(live.Init(), func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} })
		}
	}

	var cmd tea.Cmd
	a.menu, cmd = a.menu.Update(msg)
	return a, cmd
}

func (a App) View() string {
	if a.live != nil {
		return a.live.View()
	}
	v := a.menu.View()
	if a.err != nil {
		v += "\n" + paletteFor(CurrentTheme).err.Render(a.err.Error())
	}
	return v
}
