// Package fileutil provides the file plumbing under a server's data path:
// recursive directory creation, file copies with optional chmod/fsync/atomic
// rename (used for seeding the engine's database file), wiping a data
// directory in place, and an exclusive cross-process directory lock.
package fileutil
