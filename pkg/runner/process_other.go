//go:build !unix

package runner

import "os/exec"

// killProcessGroup is a no-op; cancellation kills the direct child and
// WaitDelay bounds the wait for its output.
func killProcessGroup(_ *exec.Cmd) {}
