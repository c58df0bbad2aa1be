// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container finds a docker or podman runtime and runs one-shot
// filter containers that read a document on stdin and write text on stdout.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime runs containers through a specific CLI binary.
type Runtime interface {
	// Name returns the runtime binary name ("docker" or "podman").
	Name() string

	// Available reports whether the binary is on PATH and its daemon or
	// service answers an info command.
	Available(ctx context.Context) bool

	// ImageExists returns nil when image is present locally.
	ImageExists(ctx context.Context, image string) error

	// Run starts image with args appended to its entrypoint, wiring stdin and
	// stdout. The container is removed when it exits.
	Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// commander runs external commands. Tests substitute a fake.
type commander interface {
	LookPath(file string) (string, error)
	Quiet(ctx context.Context, name string, args ...string) error
	Pipe(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type execCommander struct{}

func (execCommander) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (execCommander) Quiet(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (execCommander) Pipe(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// cli implements Runtime. Docker and podman take the same run flags and
// differ in how an image is probed.
type cli struct {
	bin   string
	probe []string
	cmd   commander
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available(ctx context.Context) bool {
	if _, err := c.cmd.LookPath(c.bin); err != nil {
		return false
	}
	return c.cmd.Quiet(ctx, c.bin, "info") == nil
}

func (c *cli) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string{}, c.probe...), image)
	if err := c.cmd.Quiet(ctx, c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, c.bin, err)
	}
	return nil
}

func (c *cli) Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	full := append([]string{"run", "--rm", "-i", "--network", "none", image}, args...)
	if err := c.cmd.Pipe(ctx, c.bin, full, stdin, stdout); err != nil {
		return fmt.Errorf("running %s in %s: %w", image, c.bin, err)
	}
	return nil
}

func candidates(cmd commander) []*cli {
	return []*cli{
		{bin: binDocker, probe: []string{"image", "inspect"}, cmd: cmd},
		{bin: binPodman, probe: []string{"image", "exists"}, cmd: cmd},
	}
}

// DetectRuntime returns docker when it works, otherwise podman.
func DetectRuntime() (Runtime, error) {
	return detect(context.Background(), execCommander{})
}

func detect(ctx context.Context, cmd commander) (Runtime, error) {
	for _, c := range candidates(cmd) {
		if c.Available(ctx) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s found or operational", binDocker, binPodman)
}
