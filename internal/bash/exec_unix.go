//go:build !windows

package bash

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// NewProcessGroupExecHandler returns an ExecHandlerFunc that runs external
// commands in their own process group. Commands started by rc files are never
// given the terminal, and cancelling ctx tears down the whole group so that
// helpers spawned by a slow completion function do not outlive the request.
//
// The killTimeout parameter specifies how long to wait after sending SIGINT
// before sending SIGKILL. A negative value kills immediately.
func NewProcessGroupExecHandler(killTimeout time.Duration) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		path, err := interp.LookPathDir(hc.Dir, hc.Env, args[0])
		if err != nil {
			return err
		}

		cmd := exec.Cmd{
			Path:        path,
			Args:        args,
			Dir:         hc.Dir,
			Env:         execEnv(hc.Env),
			Stdin:       hc.Stdin,
			Stdout:      hc.Stdout,
			Stderr:      hc.Stderr,
			SysProcAttr: &syscall.SysProcAttr{Setpgid: true},
		}

		if err := cmd.Start(); err != nil {
			return err
		}
		pgid := cmd.Process.Pid

		waitDone := make(chan error, 1)
		go func() {
			waitDone <- cmd.Wait()
		}()

		select {
		case err := <-waitDone:
			return exitStatus(err)
		case <-ctx.Done():
		}

		if killTimeout >= 0 {
			_ = syscall.Kill(-pgid, syscall.SIGINT)
			select {
			case err := <-waitDone:
				return exitStatus(err)
			case <-time.After(killTimeout):
			}
		}
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return exitStatus(<-waitDone)
	}
}

// exitStatus maps a non-zero exit into the status the interpreter expects so
// `$?` reflects it.
func exitStatus(err error) error {
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Exited() {
			return interp.NewExitStatus(uint8(status.ExitStatus()))
		}
		return interp.NewExitStatus(1)
	}
	return err
}

// execEnv converts the exported shell variables into exec.Cmd.Env form.
func execEnv(env expand.Environ) []string {
	var result []string
	env.Each(func(name string, vr expand.Variable) bool {
		if vr.Exported {
			result = append(result, name+"="+vr.String())
		}
		return true
	})
	return result
}
