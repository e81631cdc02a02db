package hdfs

// File is an immutable snapshot of one remote entry.
type File struct {
	Path        string
	IsDirectory bool
}

// NewChild builds the entry for a named child of parent.
func NewChild(parent File, name string, isDirectory bool) File {
	return File{
		Path:        JoinPath(parent.Path, name),
		IsDirectory: isDirectory,
	}
}

// NewFile builds a file entry under parent.
func NewFile(parent File, name string) File {
	return NewChild(parent, name, false)
}

// NewDirectory builds a directory entry under parent.
func NewDirectory(parent File, name string) File {
	return NewChild(parent, name, true)
}

// Name returns the entry's basename.
func (f File) Name() string {
	return Basename(f.Path)
}
