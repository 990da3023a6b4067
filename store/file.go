package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sageauth "github.com/sageflow/sageauth"
)

const (
	tokenFileName = "bearer.token"
	userFileName  = "user.json"
)

// File persists the token and user record as two files under a local
// state directory. Reads and writes are synchronous local I/O; they are
// not a contention point and carry no timeout.
type File struct {
	dir string
}

// NewFile creates (if needed) the state directory and returns a store
// rooted at it.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) tokenPath() string {
	return filepath.Join(f.dir, tokenFileName)
}

func (f *File) userPath() string {
	return filepath.Join(f.dir, userFileName)
}

func (f *File) Token(context.Context) (string, error) {
	data, err := os.ReadFile(f.tokenPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *File) SetToken(_ context.Context, token string) error {
	if err := writeFileAtomic(f.tokenPath(), []byte(token)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (f *File) ClearToken(context.Context) error {
	return f.remove(f.tokenPath())
}

func (f *File) Load(context.Context) (*sageauth.User, error) {
	data, err := os.ReadFile(f.userPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var user sageauth.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt record is indistinguishable from an absent one for
		// the resolver's purposes; it will be rewritten on next save.
		return nil, nil
	}
	return &user, nil
}

func (f *File) Save(_ context.Context, user sageauth.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := writeFileAtomic(f.userPath(), data); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (f *File) Clear(context.Context) error {
	return f.remove(f.userPath())
}

func (f *File) remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated record behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
