package cgroup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultRoot is the cgroup v2 unified hierarchy mount point.
const DefaultRoot = "/sys/fs/cgroup"

const (
	procsFile  = "cgroup.procs"
	weightFile = "cpu.weight"
	memMaxFile = "memory.max"
)

// Unlimited clears a memory ceiling when passed to SetMemoryLimit.
const Unlimited int64 = 0

// FS manipulates control groups through the cgroup filesystem. Group names
// are paths relative to Root; the empty name addresses the root group itself.
type FS struct {
	Root string
}

func New(root string) *FS {
	if root == "" {
		root = DefaultRoot
	}
	return &FS{Root: root}
}

// Ensure creates the group directory if missing.
func (c *FS) Ensure(group string) error {
	if err := os.MkdirAll(c.dir(group), 0o755); err != nil {
		return fmt.Errorf("create cgroup %s: %w", group, err)
	}
	return nil
}

// Assign moves pid into the group's process membership.
func (c *FS) Assign(group string, pid int32) error {
	p := filepath.Join(c.dir(group), procsFile)
	if err := os.WriteFile(p, []byte(strconv.Itoa(int(pid))), 0o644); err != nil {
		return fmt.Errorf("assign pid %d to cgroup %s: %w", pid, group, err)
	}
	return nil
}

// SetCPUWeight writes the group's relative CPU weight (cgroup v2 range 1-10000).
func (c *FS) SetCPUWeight(group string, weight int) error {
	p := filepath.Join(c.dir(group), weightFile)
	if err := os.WriteFile(p, []byte(strconv.Itoa(weight)), 0o644); err != nil {
		return fmt.Errorf("set cpu weight for cgroup %s: %w", group, err)
	}
	return nil
}

// SetMemoryLimit writes the group's memory ceiling in bytes;
// Unlimited removes the ceiling.
func (c *FS) SetMemoryLimit(group string, limitBytes int64) error {
	val := "max"
	if limitBytes > 0 {
		val = strconv.FormatInt(limitBytes, 10)
	}
	p := filepath.Join(c.dir(group), memMaxFile)
	if err := os.WriteFile(p, []byte(val), 0o644); err != nil {
		return fmt.Errorf("set memory limit for cgroup %s: %w", group, err)
	}
	return nil
}

// Remove deletes the group directory. The group must be empty.
func (c *FS) Remove(group string) error {
	if group == "" {
		return nil
	}
	if err := os.Remove(c.dir(group)); err != nil {
		return fmt.Errorf("remove cgroup %s: %w", group, err)
	}
	return nil
}

func (c *FS) dir(group string) string {
	if group == "" {
		return c.Root
	}
	return filepath.Join(c.Root, group)
}
