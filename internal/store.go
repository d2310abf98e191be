package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// File names that make up the on-disk session layout.
const (
	sessionsDirName  = "sessions"
	indexFileName    = "index.json"
	historyFileName  = "history.json"
	metadataFileName = "metadata.json"
)

// SessionStore persists sessions under <root>/sessions. Each session is a
// directory of plain JSON documents plus append-only JSONL logs, so monitors
// in other processes can read state straight off disk. Writes replace whole
// documents in a single call; the last writer wins. One store handle must
// not be shared across goroutines that mutate.
type SessionStore struct {
	root        string
	sessionsDir string
	indexPath   string
	logger      *zap.Logger
}

// NewSessionStore ensures the layout exists under root and returns a handle.
// A missing index file is created empty.
func NewSessionStore(root string, logger *zap.Logger) (*SessionStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionStore{
		root:        root,
		sessionsDir: filepath.Join(root, sessionsDirName),
		indexPath:   filepath.Join(root, sessionsDirName, indexFileName),
		logger:      logger,
	}
	if err := os.MkdirAll(s.sessionsDir, 0755); err != nil {
		return nil, &StoreError{Path: s.sessionsDir, Op: "create", Err: err}
	}
	if _, err := os.Stat(s.indexPath); os.IsNotExist(err) {
		if err := s.writeIndex([]SessionRecord{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Root returns the directory the store was opened on.
func (s *SessionStore) Root() string {
	return s.root
}

// SessionsDir returns the directory holding per-session subdirectories.
func (s *SessionStore) SessionsDir() string {
	return s.sessionsDir
}

func (s *SessionStore) sessionDir(id string) string {
	return filepath.Join(s.sessionsDir, id)
}

// CreateSession allocates a fresh session directory with empty documents and
// registers it in the index as non-current.
func (s *SessionStore) CreateSession(description string) (*SessionRecord, error) {
	rec := &SessionRecord{
		ID:          uuid.NewString(),
		CreatedAt:   NowUTC(),
		Description: description,
	}
	dir := s.sessionDir(rec.ID)
	// Mkdir rather than MkdirAll: a colliding directory is an error.
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, &StoreError{Path: dir, Op: "create", Err: err}
	}
	if err := s.writeJSON(filepath.Join(dir, historyFileName), []HistoryEntry{}); err != nil {
		return nil, err
	}
	if err := s.writeJSON(filepath.Join(dir, metadataFileName), Metadata{}); err != nil {
		return nil, err
	}
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	index = append(index, *rec)
	if err := s.writeIndex(index); err != nil {
		return nil, err
	}
	s.logger.Debug("created session", zap.String("session_id", rec.ID))
	return rec, nil
}

// SessionExists reports whether the session directory is present. The
// directory, not the index, is the source of truth here.
func (s *SessionStore) SessionExists(id string) bool {
	info, err := os.Stat(s.sessionDir(id))
	return err == nil && info.IsDir()
}

// ListSessions returns all index records in index order.
func (s *SessionStore) ListSessions() ([]SessionRecord, error) {
	return s.readIndex()
}

// MarkCurrent flags the given session as current and clears the flag on
// every other record. Nothing is written when the id is unknown.
func (s *SessionStore) MarkCurrent(id string) error {
	index, err := s.readIndex()
	if err != nil {
		return err
	}
	found := false
	for i := range index {
		index[i].IsCurrent = index[i].ID == id
		if index[i].ID == id {
			found = true
		}
	}
	if !found {
		return &NotFoundError{SessionID: id}
	}
	return s.writeIndex(index)
}

// CurrentSession returns the record flagged current, or nil when none is.
func (s *SessionStore) CurrentSession() (*SessionRecord, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	for i := range index {
		if index[i].IsCurrent {
			rec := index[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// UpdateDescription replaces the description on an existing index record.
func (s *SessionStore) UpdateDescription(id, description string) error {
	index, err := s.readIndex()
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].ID == id {
			index[i].Description = description
			return s.writeIndex(index)
		}
	}
	return &NotFoundError{SessionID: id}
}

// DeleteSession removes the session directory and its index entry.
func (s *SessionStore) DeleteSession(id string) error {
	dir := s.sessionDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{SessionID: id}
	}
	if err := os.RemoveAll(dir); err != nil {
		return &StoreError{Path: dir, Op: "delete", Err: err}
	}
	index, err := s.readIndex()
	if err != nil {
		return err
	}
	kept := make([]SessionRecord, 0, len(index))
	for _, rec := range index {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if err := s.writeIndex(kept); err != nil {
		return err
	}
	s.logger.Debug("deleted session", zap.String("session_id", id))
	return nil
}

// ReadHistory loads the conversation history. An empty file reads as an
// empty history.
func (s *SessionStore) ReadHistory(id string) ([]HistoryEntry, error) {
	if !s.SessionExists(id) {
		return nil, &NotFoundError{SessionID: id}
	}
	path := filepath.Join(s.sessionDir(id), historyFileName)
	data, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []HistoryEntry{}, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &StoreError{Path: path, Op: "parse", Err: err}
	}
	return entries, nil
}

// WriteHistory replaces the whole history document.
func (s *SessionStore) WriteHistory(id string, entries []HistoryEntry) error {
	if !s.SessionExists(id) {
		return &NotFoundError{SessionID: id}
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return s.writeJSON(filepath.Join(s.sessionDir(id), historyFileName), entries)
}

// ReadMetadata loads the metadata document. An empty file reads as an empty
// record set.
func (s *SessionStore) ReadMetadata(id string) (Metadata, error) {
	if !s.SessionExists(id) {
		return nil, &NotFoundError{SessionID: id}
	}
	path := filepath.Join(s.sessionDir(id), metadataFileName)
	data, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	meta := Metadata{}
	if len(data) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &StoreError{Path: path, Op: "parse", Err: err}
	}
	if meta == nil {
		meta = Metadata{}
	}
	return meta, nil
}

// WriteMetadata replaces the whole metadata document.
func (s *SessionStore) WriteMetadata(id string, meta Metadata) error {
	if !s.SessionExists(id) {
		return &NotFoundError{SessionID: id}
	}
	if meta == nil {
		meta = Metadata{}
	}
	return s.writeJSON(filepath.Join(s.sessionDir(id), metadataFileName), meta)
}

// AppendEvent marshals record onto the end of the named JSONL log, one
// object per line.
func (s *SessionStore) AppendEvent(sessionID, logName string, record any) error {
	if !s.SessionExists(sessionID) {
		return &NotFoundError{SessionID: sessionID}
	}
	data, err := json.Marshal(record)
	if err != nil {
		return &StoreError{Path: logName, Op: "write", Err: err}
	}
	path := filepath.Join(s.sessionDir(sessionID), logName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &StoreError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return &StoreError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// ReadEvents returns the raw log lines in append order. A missing log reads
// as empty; blank lines are skipped.
func (s *SessionStore) ReadEvents(sessionID, logName string) ([]json.RawMessage, error) {
	if !s.SessionExists(sessionID) {
		return nil, &NotFoundError{SessionID: sessionID}
	}
	path := filepath.Join(s.sessionDir(sessionID), logName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	events := []json.RawMessage{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		events = append(events, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, &StoreError{Path: path, Op: "read", Err: err}
	}
	return events, nil
}

func (s *SessionStore) readIndex() ([]SessionRecord, error) {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionRecord{}, nil
		}
		return nil, &StoreError{Path: s.indexPath, Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []SessionRecord{}, nil
	}
	var records []SessionRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	// Early layouts wrapped the list in an object.
	var wrapped struct {
		Sessions []SessionRecord `json:"sessions"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, &StoreError{Path: s.indexPath, Op: "parse", Err: err}
	}
	if wrapped.Sessions == nil {
		return []SessionRecord{}, nil
	}
	return wrapped.Sessions, nil
}

func (s *SessionStore) writeIndex(records []SessionRecord) error {
	return s.writeJSON(s.indexPath, records)
}

// readDocument reads a required session document. A missing file is a store
// error here, distinct from a missing session.
func (s *SessionStore) readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StoreError{Path: path, Op: "open", Err: err}
		}
		return nil, &StoreError{Path: path, Op: "read", Err: err}
	}
	return bytes.TrimSpace(data), nil
}

// writeJSON replaces the document at path in one write call.
func (s *SessionStore) writeJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StoreError{Path: path, Op: "write", Err: err}
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &StoreError{Path: path, Op: "write", Err: err}
	}
	return nil
}
