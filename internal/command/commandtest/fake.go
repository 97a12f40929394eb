// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"strings"
	"sync"
)

// Result is the scripted outcome of one invocation.
type Result struct {
	Out []byte
	Err error
}

// Fake records invocations and answers from Responses, keyed by the full
// command line ("asusctl -k med"). Unmatched commands fall back to Default.
type Fake struct {
	mu        sync.Mutex
	Responses map[string]Result
	Default   Result
	Missing   map[string]bool
	calls     []string
}

func New() *Fake {
	return &Fake{Responses: map[string]Result{}, Missing: map[string]bool{}}
}

// On scripts the result for a command line.
func (f *Fake) On(line string, out string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[line] = Result{Out: []byte(out), Err: err}
	return f
}

func (f *Fake) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)
	if r, ok := f.Responses[line]; ok {
		return r.Out, r.Err
	}
	return f.Default.Out, f.Default.Err
}

func (f *Fake) LookPath(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Missing[name]
}

// Calls returns the command lines run so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many times line was run.
func (f *Fake) Count(line string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == line {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
