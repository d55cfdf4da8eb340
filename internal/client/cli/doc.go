// Package cli is the gridcli command tree.
//
// Every invocation opens the local SQLite database, restores the persisted
// session and dials the server. Grid commands go through the optimistic
// cache, so a failed background write is printed as a warning after the
// command's own output. When the server is unreachable "grid show" falls
// back to the last mirrored copy of the container.
package cli
