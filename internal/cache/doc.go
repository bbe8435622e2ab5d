// Package cache provides a small generic LRU cache.
//
// The gamma processor keeps one 256-entry curve table per exponent it has
// seen; Cache bounds how many of those stay resident.
//
//	tables := cache.New[uint32, *color.Table](16)
//	t := tables.GetOrCreate(key, build)
//
// # Thread Safety
//
// Cache is safe for concurrent use.
package cache
