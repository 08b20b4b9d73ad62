package reexec

import (
	"context"
	"os"
	"os/exec"

	"go.trai.ch/zerr"
)

// DockerMarkerEnv is set inside the container so the relaunched process
// recognizes it is already isolated.
const DockerMarkerEnv = "CABIN_IN_CONTAINER"

// DockerLayer is the OS-level full-isolation layer. It relaunches the tool
// inside a container as a child process, so the host-side hooks can run
// after the contained work completes.
type DockerLayer struct {
	enabled bool
	image   string
	root    string
}

// NewDockerLayer creates the container layer.
func NewDockerLayer(enabled bool, image, root string) *DockerLayer {
	return &DockerLayer{enabled: enabled, image: image, root: root}
}

// Name identifies the layer in diagnostics.
func (l *DockerLayer) Name() string { return "container" }

// Enabled reports whether configuration turned the layer on.
func (l *DockerLayer) Enabled() bool { return l.enabled }

// Active reports whether the process already runs inside the container.
func (l *DockerLayer) Active() bool { return os.Getenv(DockerMarkerEnv) != "" }

// Relaunch runs the tool inside the container, mounting the project root
// at the same path so cache and lock files resolve identically.
func (l *DockerLayer) Relaunch(ctx context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return zerr.Wrap(err, "failed to determine executable path")
	}

	args := []string{
		"run", "--rm",
		"-v", l.root + ":" + l.root,
		"-w", l.root,
		"-e", DockerMarkerEnv + "=1",
		l.image,
		exe,
	}
	args = append(args, os.Args[1:]...)

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return zerr.Wrap(err, "containerized run failed")
	}
	return nil
}
