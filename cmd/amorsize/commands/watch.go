package commands

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/amorsize/amorsize/internal/decision"
	"github.com/amorsize/amorsize/internal/workload"
	"github.com/amorsize/amorsize/pkg/amorsize"
	"github.com/amorsize/amorsize/pkg/api"
)

// NewWatchCommand builds the "watch" subcommand: re-decide whenever
// the workload profile file changes, rendering the live recommendation
// as a small TUI. Watching the profile file itself is the Go-native
// stand-in for the original's periodic re-optimization of a live
// func/data pair.
func NewWatchCommand() *cobra.Command {
	flags := &sharedFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-decide whenever the workload profile file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var shutdown api.MultiCloser
			defer shutdown.Close()

			metrics := startMetrics(flags.metricsAddr, &shutdown)

			client, err := amorsize.New(flags.cacheDir, metrics)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			shutdown.Add(watcher)

			if flags.profilePath != "" {
				if err := watcher.Add(flags.profilePath); err != nil {
					return err
				}
			}

			model := watchModel{
				client:      client,
				flags:       flags,
				watchEvents: watcher.Events,
				watchErrors: watcher.Errors,
			}
			model = model.reoptimize()

			program := tea.NewProgram(model)
			_, err = program.Run()
			return err
		},
	}

	registerSharedFlags(cmd, flags)
	return cmd
}

type reoptimizedMsg struct {
	result decision.OptimizationResult
	err    error
	at     time.Time
}

type watchModel struct {
	client      *amorsize.Client
	flags       *sharedFlags
	watchEvents <-chan fsnotify.Event
	watchErrors <-chan error

	last    decision.OptimizationResult
	lastAt  time.Time
	genOK   int
	lastErr error
}

func (m watchModel) reoptimize() watchModel {
	profile, err := m.flags.loadProfile()
	if err != nil {
		m.lastErr = err
		return m
	}

	fn, data := workload.Build(profile)
	result, err := amorsize.Optimize(m.client, fn, data, m.flags.options())
	if err != nil {
		m.lastErr = err
		return m
	}

	m.last = result
	m.lastAt = time.Now()
	m.genOK++
	m.lastErr = nil
	return m
}

func (m watchModel) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks on the fsnotify channel in a tea.Cmd goroutine,
// translating each write/create event into a reoptimizedMsg.
func (m watchModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case evt, ok := <-m.watchEvents:
				if !ok {
					return nil
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				next := m.reoptimize()
				return reoptimizedMsg{result: next.last, err: next.lastErr, at: time.Now()}
			case err, ok := <-m.watchErrors:
				if !ok {
					return nil
				}
				return reoptimizedMsg{err: err, at: time.Now()}
			}
		}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case reoptimizedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.last = msg.result
			m.lastAt = msg.at
			m.genOK++
			m.lastErr = nil
		}
		return m, m.waitForChange()
	}
	return m, nil
}

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	watchLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render("amorsize watch"))
	b.WriteString("\n")
	if m.flags.profilePath == "" {
		b.WriteString(watchLabelStyle.Render("profile: (built-in default, not file-watched)"))
	} else {
		b.WriteString(watchLabelStyle.Render(fmt.Sprintf("profile: %s", m.flags.profilePath)))
	}
	b.WriteString("\n\n")

	if m.lastErr != nil {
		b.WriteString(watchErrStyle.Render(fmt.Sprintf("error: %v", m.lastErr)))
		b.WriteString("\n\n")
	}

	if m.genOK > 0 {
		label := "SERIAL"
		if m.last.NumWorkers > 1 {
			label = "PARALLELIZE"
		}
		b.WriteString(fmt.Sprintf("decision:        %s\n", label))
		b.WriteString(fmt.Sprintf("workers:         %d\n", m.last.NumWorkers))
		b.WriteString(fmt.Sprintf("chunk_size:      %d\n", m.last.ChunkSize))
		b.WriteString(fmt.Sprintf("speedup:         %.2fx\n", m.last.EstimatedSpeedup))
		b.WriteString(fmt.Sprintf("reason:          %s\n", m.last.Reason))
		b.WriteString(fmt.Sprintf("cache_hit:       %v\n", m.last.CacheHit))
		b.WriteString(fmt.Sprintf("updated:         %s\n", m.lastAt.Format(time.RFC3339)))
		b.WriteString(fmt.Sprintf("revisions:       %d\n", m.genOK))
	} else {
		b.WriteString("waiting for first decision...\n")
	}

	b.WriteString("\n")
	b.WriteString(watchLabelStyle.Render("press q to quit"))
	b.WriteString("\n")
	return b.String()
}
