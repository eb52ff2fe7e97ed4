// Package snapshot models an immutable view of a project at one commit.
package snapshot

import "sort"

// TrackedFile is one file recorded in the commit tree.
type TrackedFile struct {
	Path       string
	Content    []byte
	Executable bool
	Symlink    bool
}

// Size reports the content length in bytes.
func (file TrackedFile) Size() int64 {
	return int64(len(file.Content))
}

// ProjectSnapshot is the ordered set of tracked files at a commit together
// with the cleanliness of the working tree. Values are never mutated after
// construction; accessors return copies of the file list.
type ProjectSnapshot struct {
	commit string
	files  []TrackedFile
	index  map[string]int
	clean  bool
}

// New builds a snapshot whose files are ordered lexicographically by path bytes.
func New(commit string, files []TrackedFile, clean bool) ProjectSnapshot {
	orderedFiles := make([]TrackedFile, len(files))
	copy(orderedFiles, files)
	sort.SliceStable(orderedFiles, func(leftIndex int, rightIndex int) bool {
		return orderedFiles[leftIndex].Path < orderedFiles[rightIndex].Path
	})

	index := make(map[string]int, len(orderedFiles))
	for fileIndex, file := range orderedFiles {
		index[file.Path] = fileIndex
	}

	return ProjectSnapshot{
		commit: commit,
		files:  orderedFiles,
		index:  index,
		clean:  clean,
	}
}

// Commit returns the commit identifier the snapshot was taken at.
func (projectSnapshot ProjectSnapshot) Commit() string {
	return projectSnapshot.commit
}

// Clean reports whether the working tree had no uncommitted changes.
func (projectSnapshot ProjectSnapshot) Clean() bool {
	return projectSnapshot.clean
}

// Files returns the tracked files in path order.
func (projectSnapshot ProjectSnapshot) Files() []TrackedFile {
	duplicated := make([]TrackedFile, len(projectSnapshot.files))
	copy(duplicated, projectSnapshot.files)
	return duplicated
}

// Paths returns the tracked paths in path order.
func (projectSnapshot ProjectSnapshot) Paths() []string {
	paths := make([]string, 0, len(projectSnapshot.files))
	for _, file := range projectSnapshot.files {
		paths = append(paths, file.Path)
	}
	return paths
}

// Lookup finds a tracked file by its exact path.
func (projectSnapshot ProjectSnapshot) Lookup(path string) (TrackedFile, bool) {
	fileIndex, found := projectSnapshot.index[path]
	if !found {
		return TrackedFile{}, false
	}
	return projectSnapshot.files[fileIndex], true
}

// Contains reports whether path is tracked.
func (projectSnapshot ProjectSnapshot) Contains(path string) bool {
	_, found := projectSnapshot.index[path]
	return found
}

// TotalSize sums the byte size of every tracked file.
func (projectSnapshot ProjectSnapshot) TotalSize() int64 {
	var totalSize int64
	for _, file := range projectSnapshot.files {
		totalSize += file.Size()
	}
	return totalSize
}

// Len returns the number of tracked files.
func (projectSnapshot ProjectSnapshot) Len() int {
	return len(projectSnapshot.files)
}
