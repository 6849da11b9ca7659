package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// CacheFields 提供 MapProxy 配置名与缓存名字段，供清理/回收日志复用。
func CacheFields(action, project, cacheName string) logrus.Fields {
	fields := logrus.Fields{
		"action":  action,
		"project": project,
	}
	if cacheName != "" {
		fields["cache"] = cacheName
	}
	return fields
}
