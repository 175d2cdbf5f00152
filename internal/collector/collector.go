package collector

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/loykin/proclife/internal/registry"
)

// DefaultLowMemoryPct is the available-memory percentage under which the
// host is considered memory pressured.
const DefaultLowMemoryPct = 15.0

// CPU percent above which a process counts as active for idle tracking.
const activeCPUPercent = 1.0

const focusProbeTimeout = 400 * time.Millisecond

// DefaultServiceNames lists executables treated as system services.
var DefaultServiceNames = []string{
	"systemd", "init", "sshd", "dbus-daemon", "NetworkManager",
	"systemd-journald", "systemd-udevd", "systemd-logind", "cron", "crond",
	"rsyslogd", "polkitd",
}

// Collector answers best-effort questions about host processes. Every probe
// is fail-soft: an unreadable or vanished process yields neutral values, and
// its disappearance is picked up separately at reap time.
type Collector struct {
	procRoot     string
	lowMemoryPct float64
	services     map[string]struct{}

	// per-pid handles keep gopsutil CPU deltas meaningful between passes
	handles map[int32]*process.Process
	prevIO  map[int32]ioSample

	// injectable for tests
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	focusProbe    func() int32
}

type ioSample struct {
	read  uint64
	write uint64
}

func New(procRoot string, lowMemoryPct float64, serviceNames []string) *Collector {
	if procRoot == "" {
		procRoot = "/proc"
	}
	if lowMemoryPct <= 0 {
		lowMemoryPct = DefaultLowMemoryPct
	}
	if len(serviceNames) == 0 {
		serviceNames = DefaultServiceNames
	}
	services := make(map[string]struct{}, len(serviceNames))
	for _, n := range serviceNames {
		services[n] = struct{}{}
	}
	c := &Collector{
		procRoot:      procRoot,
		lowMemoryPct:  lowMemoryPct,
		services:      services,
		handles:       make(map[int32]*process.Process),
		prevIO:        make(map[int32]ioSample),
		virtualMemory: mem.VirtualMemory,
	}
	c.focusProbe = c.xdotoolFocus
	return c
}

// Refresh samples rec's live signals and folds them into its rolling history
// and activity timestamps.
func (c *Collector) Refresh(rec *registry.Record, now time.Time) {
	p := c.handle(rec.PID)
	if p == nil {
		return
	}

	cpuPct, _ := p.CPUPercent()
	rec.CPUHistory.Push(cpuPct)

	var memKB uint64
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		memKB = mi.RSS / 1024
	}
	rec.MemHistory.Push(memKB)

	if ppid, err := p.Ppid(); err == nil {
		rec.ParentPID = ppid
	}

	rec.IsSystemService = c.IsSystemService(rec.Name)
	rec.IsPlayingAudio = c.hasDeviceFD(rec.PID, "/dev/snd")

	active := cpuPct > activeCPUPercent || rec.IsPlayingAudio

	if c.hasDeviceFD(rec.PID, "/dev/dri", "/dev/nvidia") {
		rec.LastGPUActivity = now
		active = true
	}
	if conns, err := p.Connections(); err == nil && len(conns) > 0 {
		rec.LastNetworkActivity = now
		active = true
	}
	if io, err := p.IOCounters(); err == nil && io != nil {
		prev, seen := c.prevIO[rec.PID]
		if seen && (io.ReadBytes > prev.read || io.WriteBytes > prev.write) {
			rec.LastDiskActivity = now
			active = true
		}
		c.prevIO[rec.PID] = ioSample{read: io.ReadBytes, write: io.WriteBytes}
	}

	if active {
		rec.LastActive = now
	}
}

// FocusedPID returns the pid owning the active window, 0 when unknown.
func (c *Collector) FocusedPID() int32 { return c.focusProbe() }

// ParentPID returns the parent of pid, 0 when unknown.
func (c *Collector) ParentPID(pid int32) int32 {
	p := c.handle(pid)
	if p == nil {
		return 0
	}
	ppid, err := p.Ppid()
	if err != nil {
		return 0
	}
	return ppid
}

// MemoryPressure reports whether available memory fell under the low-memory
// threshold.
func (c *Collector) MemoryPressure() bool {
	vm, err := c.virtualMemory()
	if err != nil || vm == nil || vm.Total == 0 {
		return false
	}
	availPct := float64(vm.Available) / float64(vm.Total) * 100
	return availPct < c.lowMemoryPct
}

// IsSystemService reports whether the executable name is on the system
// service allow-list.
func (c *Collector) IsSystemService(name string) bool {
	_, ok := c.services[name]
	return ok
}

// Prune drops cached per-pid state for processes no longer tracked.
func (c *Collector) Prune(pids []int32) {
	for _, pid := range pids {
		delete(c.handles, pid)
		delete(c.prevIO, pid)
	}
}

// --- registry.Prober ---

// Alive reports whether pid is running and not a zombie.
func (c *Collector) Alive(pid int32) bool {
	ok, err := process.PidExists(pid)
	if err != nil || !ok {
		return false
	}
	p := c.handle(pid)
	if p == nil {
		return false
	}
	if statuses, err := p.Status(); err == nil {
		for _, st := range statuses {
			if st == process.Zombie {
				return false
			}
		}
	}
	return true
}

// Identity returns the executable name and command line for pid, empty on
// failure.
func (c *Collector) Identity(pid int32) (string, string) {
	p := c.handle(pid)
	if p == nil {
		return "", ""
	}
	name, err := p.Name()
	if err != nil {
		return "", ""
	}
	cmdline, _ := p.Cmdline()
	if cmdline == "" {
		cmdline = name
	}
	return name, cmdline
}

// ListPIDs enumerates live host pids.
func (c *Collector) ListPIDs() []int32 {
	pids, err := process.Pids()
	if err != nil {
		return nil
	}
	return pids
}

func (c *Collector) handle(pid int32) *process.Process {
	if p, ok := c.handles[pid]; ok {
		return p
	}
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	c.handles[pid] = p
	return p
}

// hasDeviceFD scans /proc/<pid>/fd for descriptors pointing at any of the
// given device prefixes.
func (c *Collector) hasDeviceFD(pid int32, prefixes ...string) bool {
	dir := filepath.Join(c.procRoot, strconv.Itoa(int(pid)), "fd")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(target, prefix) {
				return true
			}
		}
	}
	return false
}

// xdotoolFocus shells out to xdotool to resolve the active window's pid.
func (c *Collector) xdotoolFocus() int32 {
	ctx, cancel := context.WithTimeout(context.Background(), focusProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowpid").Output()
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0
	}
	return int32(pid)
}
