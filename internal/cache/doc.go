// Package cache resolves which directories on disk hold the tiles of a cache
// declared in a MapProxy configuration, and clears them.
//
// Resolution honours the override chain directory > base_dir >
// globals.cache.base_dir > process cache root, then matches <cache>_<suffix>
// directories where the suffix is either _EPSG<code> or one of the declared
// grids. Every path handed to the deleter must be a strict descendant of the
// sandbox root; a single escaping path aborts the whole resolution.
package cache
