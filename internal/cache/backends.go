package cache

import (
	_ "github.com/any-hub/mapproxy-admin/internal/backend/file"
	_ "github.com/any-hub/mapproxy-admin/internal/backend/sqlite"
)
