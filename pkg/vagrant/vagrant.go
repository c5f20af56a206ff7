// Package vagrant drives the vagrant command-line tool to discover
// running machines and their SSH connection parameters.
package vagrant

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Runner executes an external command and returns its stdout. It exists
// so tests can substitute canned output for the vagrant binary.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err,
				strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Client wraps the vagrant binary.
type Client struct {
	// Binary is the executable to invoke; looked up on PATH when not
	// absolute.
	Binary string

	// Runner executes commands. Defaults to os/exec; injectable for
	// tests.
	Runner Runner
}

// NewClient returns a Client for the given vagrant binary.
func NewClient(binary string) *Client {
	return &Client{Binary: binary, Runner: execRunner{}}
}

// runningPattern matches a `vagrant status` line for a running machine.
var runningPattern = regexp.MustCompile(`^(\S+)\s+running \(`)

// ListRunning returns the names of machines `vagrant status` reports as
// running, in output order.
func (c *Client) ListRunning(ctx context.Context) ([]string, error) {
	out, err := c.Runner.Run(ctx, c.Binary, "status")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if m := runningPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			names = append(names, m[1])
		}
	}
	return names, nil
}

// configPattern matches one `vagrant ssh-config` key/value line.
var configPattern = regexp.MustCompile(`^\s*([A-Za-z]+)\s+(.*)$`)

// SSHConfig returns the ssh configuration for one machine as a key→value
// map (HostName, User, Port, IdentityFile, ...). Quoted values are
// unquoted.
func (c *Client) SSHConfig(ctx context.Context, name string) (map[string]string, error) {
	out, err := c.Runner.Run(ctx, c.Binary, "ssh-config", name)
	if err != nil {
		return nil, err
	}

	config := make(map[string]string)
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := configPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		config[m[1]] = strings.Trim(m[2], `"`)
	}
	return config, nil
}
