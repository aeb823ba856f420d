// Package testing provides test doubles for the exec package.
package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/therealgamblelab/gln-setup/internal/exec"
)

// Call records one command the fake was asked to run.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a shell command line.
func (c Call) String() string {
	return exec.CommandString(c.Name, c.Args...)
}

// Response is what the fake returns for a matching command.
type Response struct {
	Output string
	Err    error
	// Effect runs before the response is returned, e.g. to simulate a
	// package manager putting a binary on PATH.
	Effect func()
}

// FakeRunner simulates command execution for tests. Responses are keyed by
// the full command line or by the command name alone; unmatched commands
// succeed with no output.
type FakeRunner struct {
	mu sync.Mutex

	Responses map[string]Response
	// Paths lists binaries LookPath should find, mapped to their location.
	Paths map[string]string

	Calls []Call
}

// NewFakeRunner creates a fake where every command succeeds.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]Response),
		Paths:     make(map[string]string),
	}
}

// On registers a response for a command line ("git config user.name") or a
// bare command name ("ssh-keygen").
func (f *FakeRunner) On(command string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[command] = resp
	return f
}

// Install makes LookPath find name.
func (f *FakeRunner) Install(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths[name] = "/usr/bin/" + name
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) error {
	_, err := f.respond(name, args)
	return err
}

// Output implements exec.Runner.
func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return f.respond(name, args)
}

// LookPath implements exec.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

// Commands returns every recorded call as a command line.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// Ran reports whether a command line starting with prefix was executed.
func (f *FakeRunner) Ran(prefix string) bool {
	for _, c := range f.Commands() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (f *FakeRunner) respond(name string, args []string) (string, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}

	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	resp, ok := f.Responses[call.String()]
	if !ok {
		resp = f.Responses[name]
	}
	f.mu.Unlock()

	if resp.Effect != nil {
		resp.Effect()
	}
	return resp.Output, resp.Err
}

var _ exec.Runner = (*FakeRunner)(nil)
