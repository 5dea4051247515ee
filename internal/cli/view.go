package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/logging"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/tui"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Interactive terminal table",
		Long: `Fetch every tracked collection and show the stats table in the terminal.
Rows appear as requests complete.

Keys:
  1-9        sort by column (again to reverse)
  space, x   select the row under the cursor
  a          select or clear all rows
  ←/→, p/n   previous / next page
  z          cycle rows per page (10, 25, 50)
  d          toggle dense rows
  w          cycle time window (24h, 7d, 30d)
  r          refresh
  q          quit

When stdout is not a terminal the first page is printed instead, as with
'nftdash list'. Logs go to the rotating log file while the table is open.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				GetLogger().Debug().Msg("stdout is not a terminal, printing the first page")
				return runList(cmd.Context(), cmd.OutOrStdout(), listOptions{page: 1})
			}
			return runView(cmd.Context())
		},
	}
	return cmd
}

func runView(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bus := events.NewEventBus(0)
	fileLogger, err := logging.NewLogger(logging.Options{
		Mode:     logging.ModeTUI,
		LogFile:  cfg.LogFilePath(),
		EventBus: bus,
	})
	if err != nil {
		return err
	}
	defer fileLogger.Close()
	previous := GetLogger()
	logger = fileLogger
	logger.Install()
	defer func() {
		logger = previous
		logger.Install()
	}()

	s, err := newSession(cfg, bus)
	if err != nil {
		return err
	}

	view, err := s.initialView()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var p *tea.Program
	batch := func() tea.Msg {
		summary := s.aggregator.Run(ctx, s.cfg.Collections, func(rows []models.Row) {
			p.Send(tui.RowsMsg{Rows: rows})
		})
		return tui.FetchDoneMsg{Summary: summary}
	}

	model := tui.New(view,
		tui.WithLoading(true),
		tui.WithRefresh(func() tea.Cmd { return batch }),
	)
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	var wg sync.WaitGroup
	failed := s.bus.Subscribe(events.EventCollectionFailed)
	notices := s.bus.Subscribe(events.EventLog)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for ev := range failed {
			if ce, ok := ev.(*events.CollectionEvent); ok {
				p.Send(tui.CollectionFailedMsg{Slug: ce.Slug, Err: ce.Error})
			}
		}
	}()
	go func() {
		defer wg.Done()
		for ev := range notices {
			if le, ok := ev.(*events.LogEvent); ok {
				p.Send(tui.NoticeMsg{Text: le.Message, Error: le.Level == events.ErrorLevel})
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Send(batch())
	}()

	_, runErr := p.Run()

	// stop the batch, then close the bus so the forwarders exit
	cancel()
	s.Close()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", runErr)
	}
	return nil
}
