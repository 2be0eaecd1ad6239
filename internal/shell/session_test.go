package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/minios/internal/config"
	"github.com/rusenback/minios/internal/model"
	"github.com/rusenback/minios/internal/monitor"
	"github.com/rusenback/minios/internal/tui"
	"github.com/rusenback/minios/internal/vfs"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SampleInterval = 5 * time.Millisecond
	cfg.StopTimeout = 500 * time.Millisecond
	cfg.Seed = 99
	return cfg
}

func newTestSession(t *testing.T, input string, opts ...Option) (*Session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]Option{WithIO(strings.NewReader(input), out), WithoutArchive()}, opts...)

	s, err := NewSession(context.Background(), testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, out
}

func exec(t *testing.T, s *Session, line string) error {
	t.Helper()
	return s.Execute(context.Background(), line)
}

func TestNewSession_SeedsAndStartsMonitor(t *testing.T) {
	s, _ := newTestSession(t, "")

	procs := s.Processes().List("pid")
	require.Len(t, procs, 4)
	assert.Equal(t, "kernel_idle", procs[0].Name)
	assert.Equal(t, 0, procs[0].Priority)
	assert.Equal(t, "shell", procs[2].Name)
	assert.Equal(t, "user", procs[2].Owner)
	assert.Equal(t, "network_daemon", procs[3].Name)

	assert.True(t, s.Monitor().Running())
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "/", s.FS().Pwd())
}

func TestExecute_BlankLineIgnored(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "   "))
	assert.Empty(t, s.History())
	assert.Empty(t, out.String())
}

func TestExecute_UnknownCommand(t *testing.T) {
	s, _ := newTestSession(t, "")

	err := exec(t, s, "frobnicate now")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "frobnicate")
	assert.Equal(t, []string{"frobnicate now"}, s.History())
}

func TestExecute_CommandNamesAreCaseInsensitive(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "ECHO hi"))
	assert.Equal(t, "hi\n", out.String())
}

func TestKill(t *testing.T) {
	s, out := newTestSession(t, "")

	assert.ErrorIs(t, exec(t, s, "kill"), ErrInvalidArgument)
	assert.ErrorIs(t, exec(t, s, "kill abc"), ErrInvalidArgument)
	assert.ErrorIs(t, exec(t, s, "kill 99"), ErrNotFound)

	require.NoError(t, exec(t, s, "kill 2"))
	assert.Contains(t, out.String(), "Process 2 killed")
	assert.Equal(t, 3, s.Processes().Count())

	assert.ErrorIs(t, exec(t, s, "kill 2"), ErrNotFound)
}

func TestSuspendResume(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "suspend 3"))
	require.NoError(t, exec(t, s, "suspend 3"))
	p, _ := s.Processes().Get(3)
	assert.Equal(t, model.StateSuspended, p.State)

	out.Reset()
	require.NoError(t, exec(t, s, "ps"))
	assert.Contains(t, out.String(), "suspended")

	require.NoError(t, exec(t, s, "resume 3"))
	p, _ = s.Processes().Get(3)
	assert.Equal(t, model.StateRunning, p.State)

	assert.ErrorIs(t, exec(t, s, "suspend x"), ErrInvalidArgument)
	assert.ErrorIs(t, exec(t, s, "resume 42"), ErrNotFound)
}

func TestStart(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "start editor 9"))
	assert.Contains(t, out.String(), "Started process 'editor' with PID 5")

	p, ok := s.Processes().Get(5)
	require.True(t, ok)
	assert.Equal(t, 9, p.Priority)
	assert.Equal(t, "root", p.Owner)

	require.NoError(t, exec(t, s, "start daemon"))
	p, _ = s.Processes().Get(6)
	assert.Equal(t, 5, p.Priority)

	assert.ErrorIs(t, exec(t, s, "start"), ErrInvalidArgument)
	assert.ErrorIs(t, exec(t, s, "start x high"), ErrInvalidArgument)
}

func TestPs_UnknownSortKeyFallsBackToPID(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "ps bogus"))
	text := out.String()
	assert.Contains(t, text, "PID")
	assert.Less(t, strings.Index(text, "kernel_idle"), strings.Index(text, "system_monitor"))
	assert.Less(t, strings.Index(text, "shell"), strings.Index(text, "network_daemon"))
}

func TestPs_ByName(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "ps name"))
	text := out.String()
	assert.Less(t, strings.Index(text, "kernel_idle"), strings.Index(text, "network_daemon"))
	assert.Less(t, strings.Index(text, "network_daemon"), strings.Index(text, "shell "))
}

func TestTop_DescendingCPU(t *testing.T) {
	s, out := newTestSession(t, "")

	procs := s.Processes().List("cpu_time")
	require.NoError(t, exec(t, s, "top"))
	text := out.String()

	highest := procs[len(procs)-1].Name
	lowest := procs[0].Name
	assert.Less(t, strings.Index(text, highest), strings.Index(text, lowest))
}

func TestFilesystemCommands(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "cd home"))
	require.NoError(t, exec(t, s, "mkdir alice"))
	assert.ErrorIs(t, exec(t, s, "mkdir alice"), ErrNameCollision)
	require.NoError(t, exec(t, s, "touch notes.txt"))
	assert.ErrorIs(t, exec(t, s, "touch notes.txt"), ErrNameCollision)
	assert.ErrorIs(t, exec(t, s, "mkdir .."), ErrInvalidArgument)
	assert.ErrorIs(t, exec(t, s, "mkdir"), ErrInvalidArgument)

	out.Reset()
	require.NoError(t, exec(t, s, "pwd"))
	assert.Equal(t, "/home\n", out.String())

	out.Reset()
	require.NoError(t, exec(t, s, "ls"))
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "notes.txt")

	out.Reset()
	require.NoError(t, exec(t, s, "ll /home/alice"))
	assert.Contains(t, out.String(), "(empty)")

	assert.ErrorIs(t, exec(t, s, "ls /nope"), ErrNotFound)
	assert.ErrorIs(t, exec(t, s, "ls /etc/config.sys"), ErrNotFound)

	assert.ErrorIs(t, exec(t, s, "cd /nope"), ErrNotFound)
	assert.ErrorIs(t, exec(t, s, "cd /etc/config.sys"), vfs.ErrNotDirectory)
	assert.Equal(t, "/home", s.FS().Pwd())

	require.NoError(t, exec(t, s, "cd"))
	assert.Equal(t, "/", s.FS().Pwd())
}

func TestCatAndTree(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "cat /etc/config.sys"))
	assert.Equal(t, "KERNEL_MODE=protected\n", out.String())

	assert.ErrorIs(t, exec(t, s, "cat /etc"), vfs.ErrIsDirectory)
	assert.ErrorIs(t, exec(t, s, "cat /etc/none"), ErrNotFound)

	out.Reset()
	require.NoError(t, exec(t, s, "tree /etc"))
	assert.Contains(t, out.String(), "/etc")
	assert.Contains(t, out.String(), "├── config.sys")
}

func TestAlias(t *testing.T) {
	s, out := newTestSession(t, "")

	require.NoError(t, exec(t, s, "alias greet=echo hello"))
	require.NoError(t, exec(t, s, "greet world"))
	assert.Contains(t, out.String(), "hello world\n")

	out.Reset()
	require.NoError(t, exec(t, s, "alias"))
	assert.Contains(t, out.String(), "alias greet='echo hello'")
	assert.Contains(t, out.String(), "alias ll='ls -l'")

	assert.ErrorIs(t, exec(t, s, "alias broken"), ErrInvalidArgument)
}

func TestHistoryShowsLastEntries(t *testing.T) {
	s, out := newTestSession(t, "")

	for i := 0; i < 25; i++ {
		require.NoError(t, exec(t, s, "echo x"))
	}
	out.Reset()
	require.NoError(t, exec(t, s, "history"))

	text := out.String()
	assert.Contains(t, text, "  26  history")
	assert.Contains(t, text, "   7  echo x")
	assert.NotContains(t, text, "   6  echo x")
	assert.Len(t, s.History(), 26)
}

func TestSleep(t *testing.T) {
	s, _ := newTestSession(t, "")

	require.NoError(t, exec(t, s, "sleep 0.01"))
	assert.ErrorIs(t, exec(t, s, "sleep soon"), ErrInvalidArgument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Execute(ctx, "sleep 10"), context.Canceled)
}

func TestMonitorInfoCommands(t *testing.T) {
	s, out := newTestSession(t, "")

	for _, line := range []string{"meminfo", "diskinfo", "cpu", "uptime", "info", "date", "uname -a", "about", "help"} {
		require.NoError(t, exec(t, s, line), line)
	}

	text := out.String()
	assert.Contains(t, text, "Memory Information")
	assert.Contains(t, text, "Total: 256 MiB")
	assert.Contains(t, text, "Disk Information")
	assert.Contains(t, text, "Total: 10 GiB")
	assert.Contains(t, text, "CPU Information")
	assert.Contains(t, text, "System uptime: 00:00:")
	assert.Contains(t, text, "Processes:")
	assert.Contains(t, text, "Process Management:")
	assert.Contains(t, text, "kill <pid>")
}

func TestNetstatIncreases(t *testing.T) {
	s, _ := newTestSession(t, "")

	require.NoError(t, exec(t, s, "netstat"))
	first := s.Monitor().NetworkStats()
	require.NoError(t, exec(t, s, "netstat"))
	second := s.Monitor().NetworkStats()

	assert.Greater(t, second.RxTotal, first.RxTotal)
	assert.Greater(t, second.TxTotal, first.TxTotal)
}

func TestMonitorCommandRunsDashboard(t *testing.T) {
	var got tea.Model
	s, out := newTestSession(t, "", WithDashboard(func(_ context.Context, m tea.Model) error {
		got = m
		return nil
	}))

	require.NoError(t, exec(t, s, "monitor"))
	_, ok := got.(tui.Model)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Monitor stopped.")
}

func TestTrend(t *testing.T) {
	out := &bytes.Buffer{}
	s, err := NewSession(context.Background(), testConfig(), WithIO(strings.NewReader(""), out))
	require.NoError(t, err)
	defer s.Close()

	require.Eventually(t, func() bool {
		out.Reset()
		return s.Execute(context.Background(), "trend") == nil &&
			strings.Contains(out.String(), "Load over the last 5m")
	}, 3*time.Second, 20*time.Millisecond)

	assert.ErrorIs(t, exec(t, s, "trend 1w"), ErrInvalidArgument)
	require.NoError(t, exec(t, s, "trend 1h"))
}

func TestTrend_WithoutArchive(t *testing.T) {
	s, _ := newTestSession(t, "")
	assert.ErrorIs(t, exec(t, s, "trend"), ErrNoArchive)
}

func TestReboot(t *testing.T) {
	s, _ := newTestSession(t, "")

	require.NoError(t, exec(t, s, "kill 1"))
	require.NoError(t, exec(t, s, "mkdir scratch"))
	oldMonitor := s.Monitor()

	require.NoError(t, exec(t, s, "reboot"))

	assert.Equal(t, 4, s.Processes().Count())
	_, ok := s.Processes().Get(1)
	assert.True(t, ok)
	assert.False(t, s.FS().Exists("scratch", "/"))
	assert.False(t, oldMonitor.Running())
	assert.True(t, s.Monitor().Running())
	assert.NotSame(t, oldMonitor, s.Monitor())
}

func TestRun_StopsOnExit(t *testing.T) {
	s, out := newTestSession(t, "echo one\nbogus\nexit\necho two\n")

	require.NoError(t, s.Run(context.Background()))
	assert.False(t, s.Running())

	text := out.String()
	assert.Contains(t, text, "one\n")
	assert.Contains(t, text, "Error: unknown command: bogus")
	assert.Contains(t, text, "Goodbye!")
	assert.NotContains(t, text, "two")
}

func TestRun_EndOfInput(t *testing.T) {
	s, out := newTestSession(t, "echo only\n")

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, s.Running())
	assert.Equal(t, "only\n", out.String())
}

func TestRun_InteractivePrompt(t *testing.T) {
	s, out := newTestSession(t, "cd etc\n", WithInteractive(true))

	require.NoError(t, s.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "Welcome to MiniOS Enhanced Shell!")
	assert.Contains(t, text, "MiniOS:/$ ")
	assert.Contains(t, text, "MiniOS:/etc$ ")
}

func TestRun_ContextCancelled(t *testing.T) {
	s, _ := newTestSession(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the empty input or the cancelled context ends the loop
	err := s.Run(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestClose_Idempotent(t *testing.T) {
	out := &bytes.Buffer{}
	s, err := NewSession(context.Background(), testConfig(), WithIO(strings.NewReader(""), out))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.False(t, s.Monitor().Running())
}

func TestNewSession_CustomSampler(t *testing.T) {
	s, out := newTestSession(t, "", WithSampler(func() monitor.Sampler {
		return monitor.NewRandomSampler(1)
	}))

	require.NoError(t, exec(t, s, "cpu"))
	assert.Contains(t, out.String(), "Usage:")
}
