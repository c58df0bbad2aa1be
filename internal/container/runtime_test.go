// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommander answers LookPath from onPath and Quiet from ok, keyed by
// the full command line.
type fakeCommander struct {
	onPath map[string]bool
	ok     map[string]bool
	pipe   func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (f *fakeCommander) LookPath(file string) (string, error) {
	if f.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeCommander) Quiet(_ context.Context, name string, args ...string) error {
	key := strings.Join(append([]string{name}, args...), " ")
	if f.ok[key] {
		return nil
	}
	return errors.New("failed: " + key)
}

func (f *fakeCommander) Pipe(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if f.pipe == nil {
		return nil
	}
	return f.pipe(name, args, stdin, stdout)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *fakeCommander
		want    string
		wantErr bool
	}{
		{
			name: "docker preferred",
			cmd: &fakeCommander{
				onPath: map[string]bool{"docker": true, "podman": true},
				ok:     map[string]bool{"docker info": true, "podman info": true},
			},
			want: "docker",
		},
		{
			name: "podman when docker daemon is down",
			cmd: &fakeCommander{
				onPath: map[string]bool{"docker": true, "podman": true},
				ok:     map[string]bool{"podman info": true},
			},
			want: "podman",
		},
		{
			name: "podman when docker missing",
			cmd: &fakeCommander{
				onPath: map[string]bool{"podman": true},
				ok:     map[string]bool{"podman info": true},
			},
			want: "podman",
		},
		{
			name:    "nothing available",
			cmd:     &fakeCommander{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detect(context.Background(), tt.cmd)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	cmd := &fakeCommander{ok: map[string]bool{
		"docker image inspect markitdown:latest": true,
		"podman image exists markitdown:latest":  true,
	}}
	for _, c := range candidates(cmd) {
		assert.NoError(t, c.ImageExists(context.Background(), "markitdown:latest"), c.bin)
		err := c.ImageExists(context.Background(), "missing:latest")
		require.Error(t, err, c.bin)
		assert.Contains(t, err.Error(), "missing:latest")
	}
}

func TestRun(t *testing.T) {
	var gotName string
	var gotArgs []string
	cmd := &fakeCommander{
		pipe: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			gotName, gotArgs = name, args
			_, err := io.Copy(stdout, stdin)
			return err
		},
	}
	rt := candidates(cmd)[0]

	var out bytes.Buffer
	err := rt.Run(context.Background(), "markitdown:latest", []string{"-x", "docx"}, strings.NewReader("payload"), &out)
	require.NoError(t, err)

	assert.Equal(t, "docker", gotName)
	assert.Equal(t, []string{"run", "--rm", "-i", "--network", "none", "markitdown:latest", "-x", "docx"}, gotArgs)
	assert.Equal(t, "payload", out.String())
}

func TestRun_Error(t *testing.T) {
	cmd := &fakeCommander{
		pipe: func(string, []string, io.Reader, io.Writer) error { return errors.New("exit status 1") },
	}
	err := candidates(cmd)[1].Run(context.Background(), "img", nil, strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running img in podman")
}
