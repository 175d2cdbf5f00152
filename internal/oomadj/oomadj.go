package oomadj

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Adjuster writes per-process out-of-memory kill priorities through
// /proc/<pid>/oom_score_adj. Lower values make the OOM killer avoid the
// process.
type Adjuster struct {
	ProcRoot string
}

func New(procRoot string) *Adjuster {
	if procRoot == "" {
		procRoot = "/proc"
	}
	return &Adjuster{ProcRoot: procRoot}
}

// SetScore writes the oom_score_adj value for pid.
func (a *Adjuster) SetScore(pid int32, score int) error {
	p := filepath.Join(a.ProcRoot, strconv.Itoa(int(pid)), "oom_score_adj")
	if err := os.WriteFile(p, []byte(strconv.Itoa(score)), 0o644); err != nil {
		return fmt.Errorf("set oom score for pid %d: %w", pid, err)
	}
	return nil
}
