package cache

import (
	"regexp"
	"strings"
)

const suffixSeparator = "_"

// epsgSuffix 匹配 MapProxy 按空间参考自动命名的目录，例如 osm_EPSG3857。
var epsgSuffix = regexp.MustCompile(`^_EPSG[0-9]+$`)

type matchOutcome int

const (
	// matchForeign: 只是前缀相同的其它目录（如 baseline 之于 base），静默忽略。
	matchForeign matchOutcome = iota
	matchEPSG
	matchGrid
	// matchUnknown: 形如 <cache>_xxx 但 xxx 不是声明的 grid，作为诊断信息返回。
	matchUnknown
)

func (o matchOutcome) accepted() bool {
	return o == matchEPSG || o == matchGrid
}

// suffixMatcher 分两步判定目录名剩余部分：固定的 EPSG 模式，然后查 grid 集合。
type suffixMatcher struct {
	grids map[string]struct{}
}

func newSuffixMatcher(grids []string) suffixMatcher {
	set := make(map[string]struct{}, len(grids))
	for _, grid := range grids {
		set[grid] = struct{}{}
	}
	return suffixMatcher{grids: set}
}

func (m suffixMatcher) match(remainder string) matchOutcome {
	if !strings.HasPrefix(remainder, suffixSeparator) {
		return matchForeign
	}
	if epsgSuffix.MatchString(remainder) {
		return matchEPSG
	}
	if len(m.grids) > 0 {
		if _, ok := m.grids[strings.TrimPrefix(remainder, suffixSeparator)]; ok {
			return matchGrid
		}
	}
	return matchUnknown
}
