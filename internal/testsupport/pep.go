package testsupport

import (
	"context"
	"sync"

	"vizmse/internal/pep"
)

// Journal is a shared, ordered log of collaborator calls.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry.
func (j *Journal) Add(entry string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a copy of the log.
func (j *Journal) Entries() []string {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// PepCall is one recorded property-tree request.
type PepCall struct {
	Op        string
	Path      string
	Depth     int
	Fragment  string
	Attribute string
	Value     string
	Location  pep.Location
}

// RecordingPep wraps a pep.Client and records every request. Failures can be
// injected per operation and path.
type RecordingPep struct {
	Inner   pep.Client
	Journal *Journal

	mu       sync.Mutex
	calls    []PepCall
	failures map[string]error
	pingErr  error
}

var _ pep.Client = (*RecordingPep)(nil)

// NewRecordingPep wraps inner.
func NewRecordingPep(inner pep.Client, journal *Journal) *RecordingPep {
	return &RecordingPep{Inner: inner, Journal: journal, failures: make(map[string]error)}
}

// FailOn makes op against path return err without reaching the inner client.
func (p *RecordingPep) FailOn(op, path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op+" "+path] = err
}

// FailPing makes Ping return err.
func (p *RecordingPep) FailPing(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pingErr = err
}

// Calls returns the recorded requests in order.
func (p *RecordingPep) Calls() []PepCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PepCall(nil), p.calls...)
}

// Count returns how many op requests addressed path.
func (p *RecordingPep) Count(op, path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Op == op && c.Path == path {
			n++
		}
	}
	return n
}

// CountOp returns how many requests used op.
func (p *RecordingPep) CountOp(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls; injected failures stay.
func (p *RecordingPep) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

func (p *RecordingPep) record(call PepCall) error {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	err := p.failures[call.Op+" "+call.Path]
	p.mu.Unlock()
	p.Journal.Add("pep " + call.Op + " " + call.Path)
	return err
}

func (p *RecordingPep) GetJS(ctx context.Context, path string, depth int) (*pep.Result, error) {
	if err := p.record(PepCall{Op: "getjs", Path: path, Depth: depth}); err != nil {
		return nil, err
	}
	return p.Inner.GetJS(ctx, path, depth)
}

func (p *RecordingPep) Insert(ctx context.Context, path, fragment string, loc pep.Location) (*pep.Result, error) {
	if err := p.record(PepCall{Op: "insert", Path: path, Fragment: fragment, Location: loc}); err != nil {
		return nil, err
	}
	return p.Inner.Insert(ctx, path, fragment, loc)
}

func (p *RecordingPep) Set(ctx context.Context, path, attribute, value string) (*pep.Result, error) {
	if err := p.record(PepCall{Op: "set", Path: path, Attribute: attribute, Value: value}); err != nil {
		return nil, err
	}
	return p.Inner.Set(ctx, path, attribute, value)
}

func (p *RecordingPep) Replace(ctx context.Context, path, fragment string) (*pep.Result, error) {
	if err := p.record(PepCall{Op: "replace", Path: path, Fragment: fragment}); err != nil {
		return nil, err
	}
	return p.Inner.Replace(ctx, path, fragment)
}

func (p *RecordingPep) Delete(ctx context.Context, path string) (*pep.Result, error) {
	if err := p.record(PepCall{Op: "delete", Path: path}); err != nil {
		return nil, err
	}
	return p.Inner.Delete(ctx, path)
}

func (p *RecordingPep) Ping(ctx context.Context) error {
	p.mu.Lock()
	err := p.pingErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.Inner.Ping(ctx)
}
