package internal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// userPromptsDirName and topicPromptsFileName locate the exploration prompts
// under the store root.
const (
	userPromptsDirName   = "user-prompts"
	topicPromptsFileName = "explore-topic.json"
)

// DefaultPollInterval is how often monitors re-read session logs.
const DefaultPollInterval = 2 * time.Second

// ClearScreen writes the ANSI clear-and-home sequence.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[2J\x1b[H")
}

// ResolveMonitorSession picks the session a monitor should watch: the
// explicit id when given, otherwise the session marked current.
func ResolveMonitorSession(store *SessionStore, explicit string) (string, error) {
	if explicit != "" {
		if !store.SessionExists(explicit) {
			return "", &NotFoundError{SessionID: explicit}
		}
		return explicit, nil
	}
	current, err := store.CurrentSession()
	if err != nil {
		return "", err
	}
	if current == nil {
		return "", fmt.Errorf("no session is marked as current; use --session to choose one")
	}
	return current.ID, nil
}

// TopicPromptsPath returns where the exploration prompts live for a store
// root.
func TopicPromptsPath(root string) string {
	return filepath.Join(root, userPromptsDirName, topicPromptsFileName)
}

// LoadTopicPrompts reads the per-topic exploration prompts shipped under the
// store root.
func LoadTopicPrompts(root string) (map[string]string, error) {
	path := TopicPromptsPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("topic prompt file not found: %s", path)
		}
		return nil, &StoreError{Path: path, Op: "read", Err: err}
	}
	prompts := make(map[string]string)
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("topic prompt file must contain an object mapping topics to prompts: %w", err)
	}
	return prompts, nil
}

// lineReader feeds lines from in through a channel so a monitor loop can
// wait on user input and the refresh tick at the same time.
type lineReader struct {
	out    io.Writer
	lines  chan string
	closed bool
}

func newLineReader(in io.Reader, out io.Writer) *lineReader {
	r := &lineReader{out: out, lines: make(chan string)}
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			r.lines <- scanner.Text()
		}
		close(r.lines)
	}()
	return r
}

// ReadLine prints prompt and waits up to timeout for a line. The second
// return is false when the wait timed out, input is exhausted, or ctx was
// canceled.
func (r *lineReader) ReadLine(ctx context.Context, prompt string, timeout time.Duration) (string, bool) {
	fmt.Fprint(r.out, prompt)
	if r.closed {
		select {
		case <-ctx.Done():
		case <-time.After(timeout):
		}
		fmt.Fprintln(r.out)
		return "", false
	}
	select {
	case line, ok := <-r.lines:
		if !ok {
			r.closed = true
			fmt.Fprintln(r.out)
			return "", false
		}
		return strings.TrimSpace(line), true
	case <-time.After(timeout):
		fmt.Fprintln(r.out)
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// waitLine blocks until the user presses Enter, input is exhausted, or ctx
// is canceled.
func (r *lineReader) waitLine(ctx context.Context, prompt string) {
	fmt.Fprint(r.out, prompt)
	if r.closed {
		return
	}
	select {
	case _, ok := <-r.lines:
		if !ok {
			r.closed = true
		}
	case <-ctx.Done():
	}
}

// sleepCtx pauses for d unless ctx is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
