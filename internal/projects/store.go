package projects

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Store 以 dir 为根读写 MapProxy 配置文件。
type Store struct {
	dir string
}

// NewStore 以配置目录构建 Store，目录不存在时会被创建。
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("projects dir required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve projects dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create projects dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir 返回配置目录的绝对路径。
func (s *Store) Dir() string {
	return s.dir
}

// Path 返回配置文件的绝对路径。
func (s *Store) Path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// List 返回目录中所有 .yaml/.yml 普通文件名。
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isConfigFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load 读取并解析配置。文件缺失返回 ErrConfigNotFound，内容非法返回 *ParseError。
func (s *Store) Load(name string) (*Config, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, err
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Config{Name: name, Data: data}, nil
}

// Save 将 data 序列化为 YAML 并覆盖写入，不保留旧版本。
func (s *Store) Save(name string, data map[string]any) error {
	filePath, err := s.Path(name)
	if err != nil {
		return err
	}
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tempFile, err := os.CreateTemp(s.dir, ".mpconfig-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(encoded)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempName, 0o644)
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}
