package shell

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rusenback/minios/internal/model"
	"github.com/rusenback/minios/internal/monitor"
	"github.com/rusenback/minios/internal/process"
	"github.com/rusenback/minios/internal/storage"
	"github.com/rusenback/minios/internal/tui"
	"github.com/rusenback/minios/internal/vfs"
)

const (
	osName        = "MiniOS v2.0 Enhanced"
	kernelVersion = "1.0.0-enhanced"
	architecture  = "x86 (32-bit)"
)

type command struct {
	usage    string
	summary  string
	category string
	run      func(ctx context.Context, s *Session, args []string) error
}

// categories fixes the order of the help listing
var categories = []string{
	"System Information",
	"Process Management",
	"System Monitor",
	"Filesystem",
	"Utilities",
	"System Control",
}

func builtinCommands() map[string]command {
	return map[string]command{
		"help":   {"help", "Show this help message", "System Information", cmdHelp},
		"about":  {"about", "About MiniOS", "System Information", cmdAbout},
		"info":   {"info", "Show system information", "System Information", cmdInfo},
		"uptime": {"uptime", "Show system uptime", "System Information", cmdUptime},
		"date":   {"date", "Show current date and time", "System Information", cmdDate},
		"uname":  {"uname [-a]", "Print system information", "System Information", cmdUname},

		"ps":      {"ps [pid|cpu|mem|name]", "List all processes", "Process Management", cmdPs},
		"top":     {"top", "Display processes (sorted by CPU)", "Process Management", cmdTop},
		"kill":    {"kill <pid>", "Kill a process", "Process Management", cmdKill},
		"suspend": {"suspend <pid>", "Suspend a process", "Process Management", cmdSuspend},
		"resume":  {"resume <pid>", "Resume a process", "Process Management", cmdResume},
		"start":   {"start <name> [pri]", "Start a new process", "Process Management", cmdStart},

		"monitor":  {"monitor", "Start system monitor dashboard", "System Monitor", cmdMonitor},
		"meminfo":  {"meminfo", "Show memory information", "System Monitor", cmdMeminfo},
		"diskinfo": {"diskinfo", "Show disk information", "System Monitor", cmdDiskinfo},
		"netstat":  {"netstat", "Show network statistics", "System Monitor", cmdNetstat},
		"cpu":      {"cpu", "Show CPU information", "System Monitor", cmdCPU},
		"trend":    {"trend [5m|15m|1h|6h]", "Show archived load averages", "System Monitor", cmdTrend},

		"ls":    {"ls [path]", "List directory contents", "Filesystem", cmdLs},
		"pwd":   {"pwd", "Print working directory", "Filesystem", cmdPwd},
		"cd":    {"cd <dir>", "Change directory", "Filesystem", cmdCd},
		"mkdir": {"mkdir <name>", "Create directory", "Filesystem", cmdMkdir},
		"touch": {"touch <name>", "Create file", "Filesystem", cmdTouch},
		"tree":  {"tree [path]", "Show directory tree", "Filesystem", cmdTree},
		"cat":   {"cat <file>", "Print file content", "Filesystem", cmdCat},

		"clear":   {"clear", "Clear screen", "Utilities", cmdClear},
		"history": {"history", "Show command history", "Utilities", cmdHistory},
		"alias":   {"alias [name=cmd]", "Show/set aliases", "Utilities", cmdAlias},
		"echo":    {"echo <text>", "Print text", "Utilities", cmdEcho},
		"sleep":   {"sleep <sec>", "Sleep for seconds", "Utilities", cmdSleep},

		"reboot":   {"reboot", "Reboot system", "System Control", cmdReboot},
		"shutdown": {"shutdown", "Shutdown system", "System Control", cmdExit},
		"exit":     {"exit", "Exit shell", "System Control", cmdExit},
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func usageError(usage string) error {
	return fmt.Errorf("%w: usage: %s", ErrInvalidArgument, usage)
}

func parsePID(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, usageError(usage)
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: pid %q is not a number", ErrInvalidArgument, args[0])
	}
	return pid, nil
}

// System information

func cmdHelp(_ context.Context, s *Session, _ []string) error {
	byCategory := make(map[string][]command)
	for _, c := range s.commands {
		byCategory[c.category] = append(byCategory[c.category], c)
	}

	s.printf("\n")
	for _, cat := range categories {
		cmds := byCategory[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].usage < cmds[j].usage })

		s.printf("%s\n", tui.TitleStyle.Render(cat+":"))
		for _, c := range cmds {
			s.printf("  %s - %s\n", tui.RunningStyle.Render(fmt.Sprintf("%-20s", c.usage)), c.summary)
		}
		s.printf("\n")
	}
	return nil
}

func cmdAbout(_ context.Context, s *Session, _ []string) error {
	s.printf("\n%s\n", tui.TitleStyle.Render(osName))
	s.printf("A simulated operating system shell with a virtual process table,\n")
	s.printf("an in-memory filesystem and a synthetic resource monitor.\n\n")
	return nil
}

func cmdInfo(_ context.Context, s *Session, _ []string) error {
	mem := s.mon.CurrentMemory()
	disk := s.mon.CurrentDisk()

	row := func(label, value string) {
		s.printf("%s %s\n", tui.LabelStyle.Render(fmt.Sprintf("%-13s", label+":")), value)
	}

	s.printf("\n%s\n\n", tui.BannerStyle.Render("MiniOS System Information v2.0"))
	row("OS", osName)
	row("Host", s.cfg.Hostname)
	row("Architecture", architecture)
	row("Kernel", kernelVersion)
	row("Build Date", time.Now().Format("2006-01-02"))
	row("Uptime", s.mon.Uptime().String())
	row("Processes", strconv.Itoa(s.procs.Count()))
	row("Memory", fmt.Sprintf("%s / %s", tui.FormatBytes(mem.Used), tui.FormatBytes(mem.Total)))
	row("Disk", fmt.Sprintf("%s / %s", tui.FormatBytes(disk.Used), tui.FormatBytes(disk.Total)))
	s.printf("\n")
	return nil
}

func cmdUptime(_ context.Context, s *Session, _ []string) error {
	s.printf("System uptime: %s\n", s.mon.Uptime())
	return nil
}

func cmdDate(_ context.Context, s *Session, _ []string) error {
	s.printf("%s\n", time.Now().Format("Mon Jan _2 15:04:05 MST 2006"))
	return nil
}

func cmdUname(_ context.Context, s *Session, args []string) error {
	if len(args) > 0 && args[0] == "-a" {
		s.printf("MiniOS %s %s %s (host %s)\n", s.cfg.Hostname, kernelVersion, architecture, runtime.GOOS)
		return nil
	}
	s.printf("MiniOS\n")
	return nil
}

// Process management

func (s *Session) printProcesses(procs []model.Process) {
	header := fmt.Sprintf("%-5s %-20s %-8s %-10s %-4s %-8s %-9s %s",
		"PID", "NAME", "USER", "STATE", "PRI", "MEMORY", "CPU_TIME", "THREADS")
	s.printf("\n%s\n", tui.HeaderStyle.Render(header))
	s.printf("%s\n", strings.Repeat("─", 85))

	for _, p := range procs {
		style := tui.RunningStyle
		if p.State == model.StateSuspended {
			style = tui.SuspendedStyle
		}
		s.printf("%-5d %-20s %-8s %s %-4d %-8d %-9.2f %d\n",
			p.PID,
			tui.Truncate(p.Name, 20),
			tui.Truncate(p.Owner, 8),
			style.Render(fmt.Sprintf("%-10s", p.State)),
			p.Priority,
			p.MemoryKB,
			p.CPUTime,
			p.Threads,
		)
	}
	s.printf("\n")
}

func cmdPs(_ context.Context, s *Session, args []string) error {
	key := process.SortByPID
	if len(args) > 0 {
		// Unknown keys fall back to pid
		key, _ = process.ParseSortKey(args[0])
	}
	s.printProcesses(s.procs.List(key))
	return nil
}

func cmdTop(_ context.Context, s *Session, _ []string) error {
	procs := s.procs.List(process.SortByCPUTime)
	for i, j := 0, len(procs)-1; i < j; i, j = i+1, j-1 {
		procs[i], procs[j] = procs[j], procs[i]
	}
	s.printProcesses(procs)
	return nil
}

func cmdKill(_ context.Context, s *Session, args []string) error {
	pid, err := parsePID(args, "kill <pid>")
	if err != nil {
		return err
	}
	if !s.procs.Kill(pid) {
		return fmt.Errorf("process %d: %w", pid, ErrNotFound)
	}
	s.printf("%s\n", tui.RunningStyle.Render(fmt.Sprintf("Process %d killed", pid)))
	return nil
}

func cmdSuspend(_ context.Context, s *Session, args []string) error {
	pid, err := parsePID(args, "suspend <pid>")
	if err != nil {
		return err
	}
	if !s.procs.Suspend(pid) {
		return fmt.Errorf("process %d: %w", pid, ErrNotFound)
	}
	s.printf("%s\n", tui.SuspendedStyle.Render(fmt.Sprintf("Process %d suspended", pid)))
	return nil
}

func cmdResume(_ context.Context, s *Session, args []string) error {
	pid, err := parsePID(args, "resume <pid>")
	if err != nil {
		return err
	}
	if !s.procs.Resume(pid) {
		return fmt.Errorf("process %d: %w", pid, ErrNotFound)
	}
	s.printf("%s\n", tui.RunningStyle.Render(fmt.Sprintf("Process %d resumed", pid)))
	return nil
}

func cmdStart(_ context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		return usageError("start <name> [priority]")
	}
	priority := process.DefaultPriority
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: priority %q is not a number", ErrInvalidArgument, args[1])
		}
		priority = p
	}

	pid := s.procs.CreateProcess(args[0], priority, process.DefaultOwner)
	s.printf("%s\n", tui.RunningStyle.Render(fmt.Sprintf("Started process '%s' with PID %d", args[0], pid)))
	return nil
}

// System monitor

func cmdMonitor(ctx context.Context, s *Session, _ []string) error {
	m := tui.NewModel(s.mon, s.procs.Count, s.cfg.Hostname, s.cfg.RefreshInterval)
	if err := s.dashboard(ctx, m); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	s.printf("%s\n", tui.RunningStyle.Render("Monitor stopped."))
	return nil
}

func (s *Session) printUsage(label string, used, total, free uint64, percent float64) {
	s.printf("\n%s\n", tui.TitleStyle.Render(label))
	s.printf("  Total: %s\n", tui.FormatBytes(total))
	s.printf("  Used:  %s (%.1f%%)\n", tui.FormatBytes(used), percent)
	s.printf("  Free:  %s\n", tui.FormatBytes(free))
	s.printf("  %s\n\n", tui.ProgressBar(percent, 50))
}

func cmdMeminfo(_ context.Context, s *Session, _ []string) error {
	mem := s.mon.CurrentMemory()
	s.printUsage("Memory Information", mem.Used, mem.Total, mem.Free, mem.Percent)
	return nil
}

func cmdDiskinfo(_ context.Context, s *Session, _ []string) error {
	disk := s.mon.CurrentDisk()
	s.printUsage("Disk Information", disk.Used, disk.Total, disk.Free, disk.Percent)
	return nil
}

func cmdNetstat(_ context.Context, s *Session, _ []string) error {
	net := s.mon.NetworkStats()
	s.printf("\n%s\n", tui.TitleStyle.Render("Network Statistics"))
	s.printf("  RX: %s (%d bytes)\n", tui.FormatBytes(net.RxTotal), net.RxTotal)
	s.printf("  TX: %s (%d bytes)\n\n", tui.FormatBytes(net.TxTotal), net.TxTotal)
	return nil
}

func cmdCPU(_ context.Context, s *Session, _ []string) error {
	cpu := s.mon.CurrentCPU()
	temp := s.mon.CurrentTemperature()

	s.printf("\n%s\n", tui.TitleStyle.Render("CPU Information"))
	s.printf("  Architecture: %s\n", architecture)
	s.printf("  Usage:        %.0f%%\n", cpu)
	s.printf("  Temperature:  %.0f°C\n", temp)
	s.printf("  %s\n", tui.ProgressBar(cpu, 50))
	if hist := s.mon.History(monitor.MetricCPU); len(hist) > 0 {
		s.printf("  History (%ds): %s\n", len(hist), tui.Sparkline(hist))
	}
	s.printf("\n")
	return nil
}

func cmdTrend(_ context.Context, s *Session, args []string) error {
	if s.archive == nil {
		return ErrNoArchive
	}

	timeRange := storage.Range5Min
	if len(args) > 0 {
		r, ok := storage.ParseTimeRange(args[0])
		if !ok {
			return fmt.Errorf("%w: range %q (use 5m, 15m, 1h or 6h)", ErrInvalidArgument, args[0])
		}
		timeRange = r
	}

	s.archive.Flush()
	points, err := s.archive.Query(s.ID, timeRange)
	if err != nil {
		return fmt.Errorf("trend: %w", err)
	}
	if len(points) == 0 {
		s.printf("No samples archived in the last %s\n", timeRange)
		return nil
	}

	cpu := make([]float64, len(points))
	var sumCPU, sumMem, sumDisk float64
	for i, p := range points {
		cpu[i] = p.CPUPercent
		sumCPU += p.CPUPercent
		sumMem += p.MemoryPercent
		sumDisk += p.DiskPercent
	}
	n := float64(len(points))

	s.printf("\n%s\n", tui.TitleStyle.Render(fmt.Sprintf("Load over the last %s (%d points)", timeRange, len(points))))
	s.printf("  CPU:    avg %5.1f%%  %s\n", sumCPU/n, tui.Sparkline(cpu))
	s.printf("  Memory: avg %5.1f%%\n", sumMem/n)
	s.printf("  Disk:   avg %5.1f%%\n\n", sumDisk/n)
	return nil
}

// Filesystem

func cmdLs(_ context.Context, s *Session, args []string) error {
	path := ""
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			path = a
			break
		}
	}

	n, ok := s.fs.Resolve(path)
	if !ok || n.Kind() != vfs.KindDir {
		return fmt.Errorf("%s: %w", s.fs.Abs(path), ErrNotFound)
	}

	entries := s.fs.List(path)
	if len(entries) == 0 {
		s.printf("%s\n", tui.MutedStyle.Render("(empty)"))
		return nil
	}

	s.printf("\n")
	for _, e := range entries {
		name := fmt.Sprintf("%-30s", e.Name)
		if e.Kind == vfs.KindDir {
			name = tui.PathStyle.Render(name)
		}
		s.printf("%-4s  %s %8s\n", e.Kind, name, e.SizeString())
	}
	s.printf("\n")
	return nil
}

func cmdPwd(_ context.Context, s *Session, _ []string) error {
	s.printf("%s\n", s.fs.Pwd())
	return nil
}

func cmdCd(_ context.Context, s *Session, args []string) error {
	target := "/"
	if len(args) > 0 {
		target = args[0]
	}
	if err := s.fs.Chdir(target); err != nil {
		if errors.Is(err, vfs.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return err
	}
	return nil
}

func (s *Session) create(kind string, args []string, mk func(name, path string) bool) error {
	if len(args) == 0 {
		return usageError(kind + " <name>")
	}
	name := args[0]
	if mk(name, "") {
		return nil
	}
	if s.fs.Exists(name, "") {
		return fmt.Errorf("%s %s: %w", kind, name, ErrNameCollision)
	}
	if !vfs.ValidName(name) {
		return fmt.Errorf("%w: %s %q", ErrInvalidArgument, kind, name)
	}
	return fmt.Errorf("%s %s: %w", kind, s.fs.Pwd(), ErrNotFound)
}

func cmdMkdir(_ context.Context, s *Session, args []string) error {
	return s.create("mkdir", args, s.fs.Mkdir)
}

func cmdTouch(_ context.Context, s *Session, args []string) error {
	return s.create("touch", args, s.fs.Touch)
}

func cmdTree(_ context.Context, s *Session, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	s.printf("%s\n", tui.PathStyle.Render(s.fs.Abs(path)))
	return s.fs.Walk(path, func(depth int, name string, n vfs.Node) {
		indent := strings.Repeat("│   ", depth)
		if n.Kind() == vfs.KindDir {
			name = tui.PathStyle.Render(name + "/")
		}
		s.printf("%s├── %s\n", indent, name)
	})
}

func cmdCat(_ context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		return usageError("cat <file>")
	}
	content, err := s.fs.ReadFile(args[0])
	if err != nil {
		if errors.Is(err, vfs.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return err
	}
	s.printf("%s", content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		s.printf("\n")
	}
	return nil
}

// Utilities

func cmdClear(_ context.Context, s *Session, _ []string) error {
	s.printf("\033[2J\033[H")
	return nil
}

func cmdHistory(_ context.Context, s *Session, _ []string) error {
	start := 0
	if len(s.history) > historyShown {
		start = len(s.history) - historyShown
	}
	s.printf("\n")
	for i := start; i < len(s.history); i++ {
		s.printf("%4d  %s\n", i+1, s.history[i])
	}
	s.printf("\n")
	return nil
}

func cmdAlias(_ context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		names := make([]string, 0, len(s.aliases))
		for name := range s.aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s.printf("alias %s='%s'\n", name, s.aliases[name])
		}
		return nil
	}

	def := strings.Join(args, " ")
	name, expansion, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)
	expansion = strings.Trim(strings.TrimSpace(expansion), `'"`)
	if !ok || name == "" || expansion == "" || strings.ContainsAny(name, " \t") {
		return usageError("alias name=command")
	}
	s.aliases[name] = expansion
	return nil
}

func cmdEcho(_ context.Context, s *Session, args []string) error {
	s.printf("%s\n", strings.Join(args, " "))
	return nil
}

func cmdSleep(ctx context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		return usageError("sleep <seconds>")
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil || secs < 0 {
		return fmt.Errorf("%w: seconds %q", ErrInvalidArgument, args[0])
	}

	timer := time.NewTimer(time.Duration(secs * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// System control

func cmdReboot(_ context.Context, s *Session, _ []string) error {
	s.printf("%s\n", tui.HelpStyle.Render("Rebooting MiniOS..."))
	if err := s.reboot(); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	s.printf("%s\n", tui.RunningStyle.Render("System is back online."))
	return nil
}

func cmdExit(_ context.Context, s *Session, _ []string) error {
	s.printf("\n%s\n", tui.TitleStyle.Render("Shutting down shell..."))
	s.running = false
	s.printf("%s\n\n", tui.RunningStyle.Render("Goodbye!"))
	return nil
}
