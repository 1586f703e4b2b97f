// Package audit provides structured event logging for compatibility runs.
// Events are stored as JSON Lines (JSONL) files, one per run.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// EventType classifies a scenario step.
type EventType string

const (
	EventScenarioStart EventType = "scenario_start"
	EventStart         EventType = "start"
	EventReady         EventType = "ready"
	EventPrepare       EventType = "prepare"
	EventStop          EventType = "stop"
	EventTest          EventType = "test"
	EventCleanup       EventType = "cleanup"
	EventError         EventType = "error"
	EventScenarioEnd   EventType = "scenario_end"
)

const eventsSuffix = ".events.jsonl"

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Run       string    `json:"run"`
	Version   string    `json:"version,omitempty"`
	Container string    `json:"container,omitempty"`
	Details   string    `json:"details,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger writes and reads audit events for runs.
// Events are stored in {dir}/runs/{run}.events.jsonl.
type Logger struct {
	dir string
}

// NewLogger creates a new audit logger rooted at dir.
func NewLogger(dir string) *Logger {
	return &Logger{dir: dir}
}

func (l *Logger) runsDir() string {
	return filepath.Join(l.dir, "runs")
}

// eventPath returns the path to the JSONL event log for a run. The run id
// comes from the command line, so it is resolved inside the runs directory.
func (l *Logger) eventPath(run string) (string, error) {
	if run == "" {
		return "", fmt.Errorf("run id cannot be empty")
	}
	return securejoin.SecureJoin(l.runsDir(), run+eventsSuffix)
}

// Log appends an event to the run's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path, err := l.eventPath(event.Run)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Events reads all events for a run in chronological order.
func (l *Logger) Events(run string) ([]Event, error) {
	path, err := l.eventPath(run)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Runs lists the recorded run ids, most recently modified first.
func (l *Logger) Runs() ([]string, error) {
	entries, err := os.ReadDir(l.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	type run struct {
		id  string
		mod time.Time
	}
	var runs []run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), eventsSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		runs = append(runs, run{id: strings.TrimSuffix(e.Name(), eventsSuffix), mod: info.ModTime()})
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].mod.After(runs[j].mod) })

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.id
	}
	return ids, nil
}

// Remove deletes the audit log for a run.
func (l *Logger) Remove(run string) error {
	path, err := l.eventPath(run)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
