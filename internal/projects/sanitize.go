package projects

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxNameBytes = 255

var (
	illegalChars       = regexp.MustCompile(`[/\?<>\\:\*\|"]`)
	controlChars       = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedDotNames   = regexp.MustCompile(`^\.+$`)
	windowsReserved    = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailingEnd = regexp.MustCompile(`[\. ]+$`)
)

// SanitizeName 将 URL 中的配置名/缓存名清洗成安全的文件名：移除路径分隔符、
// 保留字符与控制字符，拒绝 "."/".." 与 Windows 设备名，并截断到 255 字节。
// 清洗结果可能为空串，调用方需要自行处理。
func SanitizeName(raw string) string {
	name := illegalChars.ReplaceAllString(raw, "")
	name = controlChars.ReplaceAllString(name, "")
	name = reservedDotNames.ReplaceAllString(name, "")
	name = windowsReserved.ReplaceAllString(name, "")
	name = windowsTrailingEnd.ReplaceAllString(name, "")
	return truncateBytes(name, maxNameBytes)
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = s[:limit]
	// 只回退被截断的最后一个多字节字符，其余非法字节原样保留。
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax; i-- {
		if utf8.RuneStart(s[i]) {
			if !utf8.FullRuneInString(s[i:]) {
				s = s[:i]
			}
			break
		}
	}
	return s
}

// validName 要求名称非空且已经是清洗后的形式，防止绕过 HTTP 层直接传入路径。
func validName(name string) bool {
	return strings.TrimSpace(name) != "" && SanitizeName(name) == name
}
