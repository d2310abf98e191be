package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveSystemPrompt applies the prompt flags to the session. When a new
// prompt arrives it updates the provenance keys in metadata and appends a
// system entry to history; an unchanged prompt is a no-op. The returned
// string is the effective prompt for the agent: the requested text, or the
// text already stored in metadata when no flags were given. The caller is
// responsible for persisting metadata.
func ResolveSystemPrompt(store *SessionStore, sessionID string, metadata Metadata, inline, promptFile string) (string, error) {
	if inline != "" && promptFile != "" {
		return "", fmt.Errorf("provide only one of --system-prompt or --system-prompt-file")
	}

	previousText := metadata.StringValue(MetaPromptText)
	previousSource := metadata.StringValue(MetaPromptSource)
	previousPath := metadata.StringValue(MetaPromptFilePath)

	var text, source, filePath string
	switch {
	case promptFile != "":
		path, err := expandHome(promptFile)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("system prompt file not found: %s", path)
			}
			return "", fmt.Errorf("failed to read system prompt file: %w", err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		text, source, filePath = string(data), "file", abs
	case inline != "":
		text, source = inline, "inline"
	default:
		return previousText, nil
	}

	if text == previousText && source == previousSource && filePath == previousPath {
		return text, nil
	}

	metadata[MetaPromptText] = text
	metadata[MetaPromptSource] = source
	metadata[MetaPromptFilePath] = filePath
	metadata[MetaPromptUpdatedAt] = NowUTC()
	if err := appendSystemPromptHistory(store, sessionID, text); err != nil {
		return "", err
	}
	return text, nil
}

// appendSystemPromptHistory records the prompt as a system history entry,
// unless the most recent system entry already holds the same text.
func appendSystemPromptHistory(store *SessionStore, sessionID, text string) error {
	history, err := store.ReadHistory(sessionID)
	if err != nil {
		return err
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != RoleSystem {
			continue
		}
		if history[i].Content == text {
			return nil
		}
		break
	}
	history = append(history, HistoryEntry{Role: RoleSystem, Content: text, Timestamp: NowUTC()})
	return store.WriteHistory(sessionID, history)
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
