package projects

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound 表示配置文件不存在。
var ErrConfigNotFound = errors.New("configuration not found")

// ErrInvalidName 表示配置名为空或包含路径成分。
var ErrInvalidName = errors.New("invalid configuration name")

// ParseError 包装 YAML 解析器的诊断信息，并保留出错的配置名。
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
