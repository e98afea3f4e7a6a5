// Package cache provides a small TTL value cache used by the gateway to
// front agent-config reads. Entries expire after a configured TTL, the
// oldest entry is evicted when the cache is full, and saves invalidate the
// affected tenant explicitly.
package cache
