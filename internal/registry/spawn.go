package registry

import (
	"os"
	"os/exec"
	"syscall"
)

// ExecSpawner starts commands detached into their own process group with
// stdio sent to /dev/null. Exited children are reaped by a background waiter
// so liveness probes observe the exit instead of a zombie.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(argv []string) (int32, error) {
	name := argv[0]
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	// ok: intentional execution of an operator-provided command
	// #nosec G204
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	null, _ := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	cmd.Stdout = null
	cmd.Stderr = null
	if err := cmd.Start(); err != nil {
		if null != nil {
			_ = null.Close()
		}
		return 0, err
	}
	pid := int32(cmd.Process.Pid)
	go func() {
		_ = cmd.Wait()
		if null != nil {
			_ = null.Close()
		}
	}()
	return pid, nil
}
