package reexec

import (
	"context"
	"os"
	"strings"
	"syscall"

	"go.trai.ch/zerr"
)

// EnvMarkerEnv is set inside the package environment so the relaunched
// process recognizes it is already there.
const EnvMarkerEnv = "CABIN_IN_ENV"

// EnvLayer is the lightweight package-environment layer. It replaces the
// process image with an environment shell that re-runs the tool, so no
// code after a successful Relaunch ever executes.
type EnvLayer struct {
	enabled bool
	shell   string
}

// NewEnvLayer creates the package-environment layer.
func NewEnvLayer(enabled bool, shell string) *EnvLayer {
	return &EnvLayer{enabled: enabled, shell: shell}
}

// Name identifies the layer in diagnostics.
func (l *EnvLayer) Name() string { return "package environment" }

// Enabled reports whether configuration turned the layer on.
func (l *EnvLayer) Enabled() bool { return l.enabled }

// Active reports whether the process already runs inside the environment.
func (l *EnvLayer) Active() bool { return os.Getenv(EnvMarkerEnv) != "" }

// Relaunch replaces the current process with the environment shell
// re-running the tool. On success it does not return.
func (l *EnvLayer) Relaunch(_ context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return zerr.Wrap(err, "failed to determine executable path")
	}

	rerun := append([]string{exe}, os.Args[1:]...)
	argv := []string{l.shell, "--run", strings.Join(rerun, " ")}
	env := append(os.Environ(), EnvMarkerEnv+"=1")

	if err := syscall.Exec(l.shell, argv, env); err != nil {
		return zerr.Wrap(err, "failed to replace process image")
	}
	return nil
}
