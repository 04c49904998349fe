//go:build !unix

package stegseek

import "os/exec"

func configureProcess(cmd *exec.Cmd) {}
