package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ascend/internal/modules/session/domain"
	sessionout "ascend/internal/modules/session/port/out"
	apperrors "ascend/internal/platform/errors"
)

type FileActiveSessionStore struct {
	path string
}

func NewFileActiveSessionStore(path string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{path: path}
}

// ClaimActive publishes a fully written pointer with a hard link, so the
// pointer path never exists half-written and an existing one is never
// replaced.
func (s *FileActiveSessionStore) ClaimActive(_ context.Context, session domain.ActiveSession) error {
	payload, err := encodePointer(session)
	if err != nil {
		return err
	}
	tmp, err := s.writeTemp(payload)
	if err != nil {
		return fmt.Errorf("claim active session: %w", err)
	}
	defer os.Remove(tmp)
	if err := os.Link(tmp, s.path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("claim active session: %w", apperrors.ErrActiveSessionExists)
		}
		return fmt.Errorf("claim active session: %w", err)
	}
	return nil
}

// SaveActive replaces the pointer atomically through a temp file.
func (s *FileActiveSessionStore) SaveActive(_ context.Context, session domain.ActiveSession) error {
	payload, err := encodePointer(session)
	if err != nil {
		return err
	}
	tmp, err := s.writeTemp(payload)
	if err != nil {
		return fmt.Errorf("save active session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace active session: %w", err)
	}
	return nil
}

// writeTemp writes payload to a uniquely named file next to the pointer.
func (s *FileActiveSessionStore) writeTemp(payload []byte) (string, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create active session dir: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp pointer: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp pointer: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close temp pointer: %w", err)
	}
	return f.Name(), nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.ActiveSession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ActiveSession{}, apperrors.ErrNoActiveSession
		}
		return domain.ActiveSession{}, fmt.Errorf("read active session: %w", err)
	}
	active := domain.ActiveSession{}
	if err := json.Unmarshal(payload, &active); err != nil {
		return domain.ActiveSession{}, fmt.Errorf("decode active session: %w: %v", domain.ErrUnreadablePointer, err)
	}
	if active.SessionID == "" {
		return domain.ActiveSession{}, fmt.Errorf("decode active session: %w: no session id", domain.ErrUnreadablePointer)
	}
	if active.Kind == "" {
		active.Kind = domain.KindMission
	}
	return active, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

func encodePointer(session domain.ActiveSession) ([]byte, error) {
	if session.SchemaVersion == 0 {
		session.SchemaVersion = domain.SchemaVersion
	}
	payload, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal active session: %w", err)
	}
	return payload, nil
}
