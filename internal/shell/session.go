// internal/shell/session.go
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/rusenback/minios/internal/config"
	"github.com/rusenback/minios/internal/model"
	"github.com/rusenback/minios/internal/monitor"
	"github.com/rusenback/minios/internal/process"
	"github.com/rusenback/minios/internal/storage"
	"github.com/rusenback/minios/internal/tui"
	"github.com/rusenback/minios/internal/vfs"
)

const historyShown = 20

// seedProcesses are created on every boot
var seedProcesses = []struct {
	name     string
	priority int
	owner    string
}{
	{"kernel_idle", 0, "root"},
	{"system_monitor", 10, "root"},
	{"shell", 5, "user"},
	{"network_daemon", 7, "root"},
}

// Session wires the process table, filesystem and monitor together
// and dispatches command lines against them.
type Session struct {
	ID  string
	cfg *config.Config

	procs   *process.Table
	fs      *vfs.FS
	mon     *monitor.Monitor
	archive *storage.Storage

	noArchive bool

	ctx         context.Context
	in          io.Reader
	out         io.Writer
	logger      *log.Logger
	interactive bool
	newSampler  func() monitor.Sampler
	dashboard   func(ctx context.Context, m tea.Model) error

	commands map[string]command
	history  []string
	aliases  map[string]string
	running  bool
}

// Option configures a Session
type Option func(*Session)

// WithIO sets where commands read input and write output
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Session) {
		s.in = in
		s.out = out
	}
}

// WithLogger sets the lifecycle logger
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithInteractive enables the banner and prompt
func WithInteractive(v bool) Option {
	return func(s *Session) { s.interactive = v }
}

// WithSampler replaces the synthetic sampler used on every boot
func WithSampler(fn func() monitor.Sampler) Option {
	return func(s *Session) { s.newSampler = fn }
}

// WithDashboard replaces the bubbletea runner used by the monitor command
func WithDashboard(fn func(ctx context.Context, m tea.Model) error) Option {
	return func(s *Session) { s.dashboard = fn }
}

// WithoutArchive disables the sample archive
func WithoutArchive() Option {
	return func(s *Session) { s.noArchive = true }
}

// NewSession builds all subsystems, seeds the process table and starts the monitor
func NewSession(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logger := log.New("minios")
	logger.SetOutput(io.Discard)

	s := &Session{
		ID:      uuid.NewString(),
		cfg:     cfg,
		ctx:     ctx,
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  logger,
		aliases: map[string]string{"ll": "ls -l", "la": "ls -a", "cls": "clear"},
		running: true,
	}
	s.newSampler = func() monitor.Sampler { return monitor.NewRandomSampler(cfg.Seed) }
	s.dashboard = s.runProgram

	for _, opt := range opts {
		opt(s)
	}

	if !s.noArchive {
		archive, err := storage.NewStorage(storage.Config{
			Retention: cfg.ArchiveRetention,
			Logger:    s.logger,
		})
		if err != nil {
			s.logger.Warnf("sample archive disabled: %v", err)
		} else {
			s.archive = archive
		}
	}

	s.commands = builtinCommands()

	if err := s.boot(); err != nil {
		s.Close()
		return nil, err
	}
	s.logger.Infof("session %s started", s.ID)
	return s, nil
}

// boot creates fresh subsystems and starts the monitor
func (s *Session) boot() error {
	var tableOpts []process.Option
	if s.cfg.Seed != 0 {
		tableOpts = append(tableOpts, process.WithRand(rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed))))
	}
	s.procs = process.NewTable(tableOpts...)
	s.fs = vfs.New()

	monOpts := []monitor.Option{
		monitor.WithInterval(s.cfg.SampleInterval),
		monitor.WithStopTimeout(s.cfg.StopTimeout),
		monitor.WithHistorySize(s.cfg.HistorySize),
	}
	if s.archive != nil {
		archive, id := s.archive, s.ID
		monOpts = append(monOpts, monitor.WithSampleHook(func(sample model.Sample) {
			archive.Write(&storage.StatsEntry{SessionID: id, Sample: sample})
		}))
	}
	s.mon = monitor.New(s.newSampler(), monOpts...)

	for _, p := range seedProcesses {
		s.procs.CreateProcess(p.name, p.priority, p.owner)
	}

	if err := s.mon.Start(s.ctx); err != nil {
		return fmt.Errorf("start monitor: %w", err)
	}
	s.logger.Debugf("monitor started (interval %s, history %d)", s.cfg.SampleInterval, s.cfg.HistorySize)
	return nil
}

// shutdownMonitor stops the sampler, logging instead of failing on timeout
func (s *Session) shutdownMonitor() {
	if s.mon == nil {
		return
	}
	err := s.mon.Stop()
	switch {
	case err == nil:
		s.logger.Debugf("monitor stopped")
	case errors.Is(err, monitor.ErrNotStarted):
	default:
		s.logger.Warnf("monitor stop: %v", err)
	}
}

// reboot tears down and rebuilds every subsystem
func (s *Session) reboot() error {
	s.shutdownMonitor()
	if err := s.boot(); err != nil {
		return err
	}
	s.logger.Infof("session %s rebooted", s.ID)
	return nil
}

// Close stops the monitor and drops the sample archive
func (s *Session) Close() error {
	s.shutdownMonitor()
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			return fmt.Errorf("close archive: %w", err)
		}
		s.archive = nil
	}
	return nil
}

// Processes exposes the process table
func (s *Session) Processes() *process.Table { return s.procs }

// FS exposes the virtual filesystem
func (s *Session) FS() *vfs.FS { return s.fs }

// Monitor exposes the resource monitor
func (s *Session) Monitor() *monitor.Monitor { return s.mon }

// History returns a copy of every executed command line
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Running reports whether exit has not been requested
func (s *Session) Running() bool { return s.running }

// Execute runs one command line
func (s *Session) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	s.history = append(s.history, line)

	fields := strings.Fields(line)
	if expansion, ok := s.aliases[fields[0]]; ok {
		fields = append(strings.Fields(expansion), fields[1:]...)
	}

	name := strings.ToLower(fields[0])
	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(ctx, s, fields[1:])
}

// Run reads command lines until exit, end of input or ctx is done
func (s *Session) Run(ctx context.Context) error {
	if s.interactive {
		s.printBanner()
	}

	scanner := bufio.NewScanner(s.in)
	type scanResult struct {
		line string
		ok   bool
	}

	for s.running {
		if s.interactive {
			fmt.Fprint(s.out, s.prompt())
		}

		// One outstanding Scan at a time so the dashboard can own the input
		results := make(chan scanResult, 1)
		go func() {
			ok := scanner.Scan()
			results <- scanResult{line: scanner.Text(), ok: ok}
		}()

		var res scanResult
		select {
		case res = <-results:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !res.ok {
			if s.interactive {
				fmt.Fprintln(s.out)
			}
			return scanner.Err()
		}

		if err := s.Execute(ctx, res.line); err != nil {
			s.printError(err)
		}
	}
	return nil
}

func (s *Session) prompt() string {
	return tui.RunningStyle.Bold(true).Render("MiniOS") + ":" +
		tui.PathStyle.Render(s.fs.Pwd()) + "$ "
}

func (s *Session) printBanner() {
	fmt.Fprintln(s.out, tui.BannerStyle.Render("MiniOS Enhanced Shell v2.0 - All Systems Online"))
	fmt.Fprintln(s.out, tui.RunningStyle.Render("Welcome to MiniOS Enhanced Shell!"))
	fmt.Fprintf(s.out, "Type %s for available commands.\n\n", tui.HelpStyle.Render("'help'"))
}

func (s *Session) printError(err error) {
	fmt.Fprintln(s.out, tui.ErrorStyle.Render("Error: "+err.Error()))
	if errors.Is(err, ErrUnknownCommand) {
		fmt.Fprintf(s.out, "Type %s for available commands.\n", tui.HelpStyle.Render("'help'"))
	}
}

// runProgram runs a bubbletea program on the session streams until it quits or ctx ends
func (s *Session) runProgram(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m, tea.WithInput(s.in), tea.WithOutput(s.out), tea.WithAltScreen())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	_, err := p.Run()
	return err
}
