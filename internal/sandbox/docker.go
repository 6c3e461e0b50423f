package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	// Where the workspace is mounted inside the container.
	sandboxMountPath = "/sandbox"
	sandboxUser      = "1000"

	// Resource limits per execution container.
	sandboxMemoryBytes = 256 * 1024 * 1024 // 256MB
	sandboxCPUQuota    = 50000             // 0.5 CPU
	sandboxPidsLimit   = 128

	// Bound on the cleanup work done after a step finishes or times out.
	containerCleanupTimeout = 10 * time.Second
)

// DockerExecutor runs each build/run step in a disposable container with
// the workspace bind-mounted and the network disabled. One image carries
// every language toolchain; containers are force-removed on every exit
// path.
type DockerExecutor struct {
	cli   *client.Client
	image string
}

// NewDockerExecutor creates a container-backed executor using the given
// sandbox image.
func NewDockerExecutor(image string) (*DockerExecutor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	slog.Info("Docker executor initialized", "image", image)
	return &DockerExecutor{cli: cli, image: image}, nil
}

// Run executes argv inside a fresh container and captures its output.
func (e *DockerExecutor) Run(ctx context.Context, workspace string, argv []string, timeout time.Duration) (string, string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	config := &container.Config{
		Image:           e.image,
		Cmd:             argv,
		WorkingDir:      sandboxMountPath,
		User:            sandboxUser,
		NetworkDisabled: true,
	}

	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: workspace,
			Target: sandboxMountPath,
		}},
		Resources: container.Resources{
			Memory:    sandboxMemoryBytes,
			CPUQuota:  sandboxCPUQuota,
			PidsLimit: ptr(int64(sandboxPidsLimit)),
		},
	}

	resp, err := e.cli.ContainerCreate(runCtx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", "", fmt.Errorf("create sandbox container: %w", err)
	}
	defer e.remove(resp.ID)

	if err := e.cli.ContainerStart(runCtx, resp.ID, container.StartOptions{}); err != nil {
		return "", "", fmt.Errorf("start sandbox container: %w", err)
	}

	statusCh, errCh := e.cli.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)

	var exitCode int64
	select {
	case status := <-statusCh:
		exitCode = status.StatusCode
	case waitErr := <-errCh:
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", "", ErrTimeout
		}
		return "", "", fmt.Errorf("wait for sandbox container: %w", waitErr)
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", "", ErrTimeout
		}
		return "", "", runCtx.Err()
	}

	stdout, stderr, err := e.logs(resp.ID)
	if err != nil {
		return "", "", err
	}

	if exitCode != 0 {
		return stdout, stderr, fmt.Errorf("exit status %d", exitCode)
	}
	return stdout, stderr, nil
}

// logs reads the demultiplexed stdout/stderr of a finished container. Uses
// a fresh context so output survives a deadline on the run context.
func (e *DockerExecutor) logs(containerID string) (string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), containerCleanupTimeout)
	defer cancel()

	reader, err := e.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("read sandbox logs: %w", err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			slog.Debug("Failed to close log reader", "error", closeErr)
		}
	}()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, reader); err != nil {
		return "", "", fmt.Errorf("demultiplex sandbox logs: %w", err)
	}
	return stdout.String(), stderr.String(), nil
}

// remove force-removes the container. Idempotent; a container that is
// already gone is not an error.
func (e *DockerExecutor) remove(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), containerCleanupTimeout)
	defer cancel()

	if err := e.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		if errdefs.IsNotFound(err) {
			return
		}
		slog.Warn("Failed to remove sandbox container", "container_id", containerID, "error", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
