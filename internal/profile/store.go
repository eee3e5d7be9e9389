package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Vovarama1992/audioproc/internal/config"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrInvalidName = errors.New("invalid profile name")
)

// File — содержимое файла профилей.
type File struct {
	Profiles map[string]config.Settings `yaml:"profiles"`
	LastUsed *config.Settings           `yaml:"last_used,omitempty"`
}

// Store — профили в одном YAML-файле.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Save сохраняет (или перезаписывает) именованный профиль.
func (s *Store) Save(name string, settings config.Settings) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}

	return s.update(func(f *File) {
		f.Profiles[name] = settings
	})
}

func (s *Store) Get(name string) (config.Settings, error) {
	f, err := s.load()
	if err != nil {
		return config.Settings{}, err
	}
	p, ok := f.Profiles[name]
	if !ok {
		return config.Settings{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

func (s *Store) Delete(name string) error {
	var found bool
	err := s.update(func(f *File) {
		_, found = f.Profiles[name]
		delete(f.Profiles, name)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// List — имена профилей по алфавиту.
func (s *Store) List() ([]string, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveLast — настройки последнего интерактивного запуска.
func (s *Store) SaveLast(settings config.Settings) error {
	return s.update(func(f *File) {
		f.LastUsed = &settings
	})
}

func (s *Store) Last() (config.Settings, bool, error) {
	f, err := s.load()
	if err != nil {
		return config.Settings{}, false, err
	}
	if f.LastUsed == nil {
		return config.Settings{}, false, nil
	}
	return *f.LastUsed, true, nil
}

// === файл ===

func (s *Store) load() (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) update(fn func(*File)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	fn(&f)
	return s.write(f)
}

func (s *Store) read() (File, error) {
	f := File{Profiles: map[string]config.Settings{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read profiles %s: %w", s.path, err)
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse profiles %s: %w", s.path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]config.Settings{}
	}
	return f, nil
}

// write — через временный файл, чтобы не оставить полуфайл.
func (s *Store) write(f File) error {
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profiles-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp profile file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
