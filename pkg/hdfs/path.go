// Package hdfs exposes a remote HDFS-backed file source: directory
// enumeration, bounded and unbounded reads, uploads, deletion and
// existence checks over a streaming WebHDFS client.
package hdfs

import "strings"

// RootPath is the canonical filesystem root.
const RootPath = "/"

// JoinPath joins a child segment onto a parent path. The root gets a
// special case so "/" + "a" yields "/a" rather than "//a". Segments
// are not cleaned; callers supply canonical values.
func JoinPath(parent, child string) string {
	if parent == RootPath {
		return RootPath + child
	}
	return parent + "/" + child
}

// Basename returns the final segment of a path.
func Basename(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
