package processtest

import (
	"context"
	"sync"

	"region-shot/src/process"
)

// Call records one Run invocation.
type Call struct {
	Name string
	Args []string
}

// FakeRunner answers Run from a per-command table and records calls. Test use only.
type FakeRunner struct {
	mu      sync.Mutex
	Results map[string]process.Result
	Errors  map[string]error
	// Hooks run before the result is returned, e.g. to create the output file.
	Hooks map[string]func(args []string)
	Calls []Call
}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (process.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	res := f.Results[name]
	err := f.Errors[name]
	hook := f.Hooks[name]
	f.mu.Unlock()

	if hook != nil {
		hook(args)
	}
	return res, err
}

// Called reports how many times name was run.
func (f *FakeRunner) Called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}
