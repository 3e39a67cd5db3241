package out

import (
	"errors"
	"os"
	"syscall"

	sessionout "ascend/internal/modules/session/port/out"
)

type ProcessProbe struct{}

func NewProcessProbe() sessionout.OwnerProbe {
	return ProcessProbe{}
}

// Alive sends signal 0, which checks for existence without delivering
// anything.
func (ProcessProbe) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, os.ErrPermission)
}
