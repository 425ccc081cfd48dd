package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// Manager hands out per-request working directories under a shared base
// directory. The base is the only resource shared between requests, so each
// workspace gets a unique uuid-suffixed path and never collides.
type Manager struct {
	baseDir string
}

func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir is empty, set TEMP_DIR or rely on the system default")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp base directory %s: %w", baseDir, err)
	}

	zlog.Logger.Info().Str("base_dir", baseDir).Msg("workspace manager initialized")
	return &Manager{baseDir: baseDir}, nil
}

func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Acquire creates a fresh working directory. The caller owns it and must
// call Release on every exit path.
func (m *Manager) Acquire() (*Workspace, error) {
	id := uuid.New().String()
	dir := filepath.Join(m.baseDir, "pano-"+id)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		zlog.Logger.Error().Err(err).Str("dir", dir).Msg("failed to create workspace directory")
		return nil, fmt.Errorf("create workspace %s: %w", dir, err)
	}

	return &Workspace{id: id, dir: dir}, nil
}

// Workspace is the transient working directory of a single request.
type Workspace struct {
	id  string
	dir string
}

func (w *Workspace) ID() string {
	return w.id
}

func (w *Workspace) Dir() string {
	return w.dir
}

// SaveInput spills one source image to disk and returns its path.
func (w *Workspace) SaveInput(index int, ext string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("input %d is empty", index)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("input_%02d%s", index, ext))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		zlog.Logger.Error().Err(err).Str("path", path).Msg("failed to write input file")
		return "", fmt.Errorf("write input %s: %w", path, err)
	}

	return path, nil
}

// Release removes the workspace directory and everything in it. Safe to call
// more than once.
func (w *Workspace) Release() {
	if err := os.RemoveAll(w.dir); err != nil {
		zlog.Logger.Warn().Err(err).Str("dir", w.dir).Msg("failed to remove workspace directory")
		return
	}
	zlog.Logger.Debug().Str("workspace_id", w.id).Msg("workspace released")
}
