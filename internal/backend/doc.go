// Package backend 聚合 MapProxy 缓存后端（file、sqlite）的元数据，并提供统一的注册入口。
//
// 后端作者需要：
//  1. 在 internal/backend/<key>/ 目录下描述瓦片文件的识别方式与统计方法；
//  2. 在 init() 中通过 MustRegister 注册元数据；
//  3. 不修改目录命名规则：缓存目录始终是 <cache>_<grid> 或 <cache>_EPSG<code>。
//
// 缓存描述解析依赖本包判断 cache.type 是否受支持。
package backend
