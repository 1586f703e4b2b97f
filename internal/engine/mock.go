package engine

import (
	"context"
	"fmt"
	"sync"
)

// ContainerState is the simulated state of a mock container
type ContainerState string

const (
	StateRunning ContainerState = "running"
	StateStopped ContainerState = "stopped"
)

// MockEngine is a mock implementation of Engine for testing.
// It simulates the engine's view of named containers closely enough that
// name conflicts and --volumes-from on a missing container fail as they
// would against a real engine.
type MockEngine struct {
	mu sync.Mutex

	// Containers tracks the state of mock containers by name
	Containers map[string]ContainerState

	// Images records pulled images
	Images map[string]bool

	// Errors allows injecting errors. Keys are either an operation
	// ("Pull", "Run", "Stop", "Remove", "Logs") or an operation and its
	// target ("Stop:marqo-2.6", "Pull:marqoai/marqo:2.6").
	Errors map[string]error

	// LogOutput is returned by Logs
	LogOutput map[string][]byte

	// CallLog records all method calls for verification
	CallLog []MockCall

	// OnCall, when set, observes every call as it is recorded
	OnCall func(MockCall)
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Target string
	Opts   RunOptions
}

// String renders the call as "Method(target)"
func (c MockCall) String() string {
	if c.Method == "Run" && c.Opts.VolumesFrom != "" {
		return fmt.Sprintf("Run(%s, volumes-from=%s)", c.Target, c.Opts.VolumesFrom)
	}
	return fmt.Sprintf("%s(%s)", c.Method, c.Target)
}

// NewMockEngine creates a new mock engine
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Containers: make(map[string]ContainerState),
		Images:     make(map[string]bool),
		Errors:     make(map[string]error),
		LogOutput:  make(map[string][]byte),
		CallLog:    make([]MockCall, 0),
	}
}

func (m *MockEngine) record(call MockCall) error {
	m.CallLog = append(m.CallLog, call)
	if m.OnCall != nil {
		m.OnCall(call)
	}

	if err, ok := m.Errors[call.Method+":"+call.Target]; ok {
		return err
	}
	if err, ok := m.Errors[call.Method]; ok {
		return err
	}
	return nil
}

// SetError sets an error to be returned for an operation key
func (m *MockEngine) SetError(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[key] = err
}

// GetCalls returns all recorded calls
func (m *MockEngine) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls for a specific method
func (m *MockEngine) GetCallsFor(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// State returns the simulated state of a container and whether it exists
func (m *MockEngine) State(name string) (ContainerState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.Containers[name]
	return state, ok
}

// Name returns the engine identifier
func (m *MockEngine) Name() string {
	return "mock"
}

// Pull fetches an image
func (m *MockEngine) Pull(ctx context.Context, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(MockCall{Method: "Pull", Target: image}); err != nil {
		return err
	}
	m.Images[image] = true
	return nil
}

// Run starts a new detached container
func (m *MockEngine) Run(ctx context.Context, opts RunOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(MockCall{Method: "Run", Target: opts.Name, Opts: opts}); err != nil {
		return err
	}
	if _, exists := m.Containers[opts.Name]; exists {
		return fmt.Errorf("container name %q is already in use", opts.Name)
	}
	if opts.VolumesFrom != "" {
		if _, exists := m.Containers[opts.VolumesFrom]; !exists {
			return fmt.Errorf("no such container: %s", opts.VolumesFrom)
		}
	}
	m.Containers[opts.Name] = StateRunning
	return nil
}

// Stop stops a running container
func (m *MockEngine) Stop(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(MockCall{Method: "Stop", Target: name}); err != nil {
		return err
	}
	if _, exists := m.Containers[name]; !exists {
		return fmt.Errorf("no such container: %s", name)
	}
	m.Containers[name] = StateStopped
	return nil
}

// Remove force-removes a container
func (m *MockEngine) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(MockCall{Method: "Remove", Target: name}); err != nil {
		return err
	}
	if _, exists := m.Containers[name]; !exists {
		return fmt.Errorf("no such container: %s", name)
	}
	delete(m.Containers, name)
	return nil
}

// Logs returns the configured output for a container
func (m *MockEngine) Logs(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(MockCall{Method: "Logs", Target: name}); err != nil {
		return nil, err
	}
	return m.LogOutput[name], nil
}

var _ Engine = (*MockEngine)(nil)
