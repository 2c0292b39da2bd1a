//go:build !unix

package sessionfile

import "io/fs"

// Windows has no uid on FileInfo; the per-user temp directory and ACLs
// already keep other users out.
func ownedByCurrentUser(fs.FileInfo) bool {
	return true
}
