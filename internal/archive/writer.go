package archive

import (
	"archive/tar"
	"io"
	"path"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/temirov/release-scholar/internal/snapshot"
)

const (
	regularFileModeConstant    = 0o644
	executableFileModeConstant = 0o755
	symlinkModeConstant        = 0o777
	entryOwnerNameConstant     = "root"
)

// EntryModTime is the modification time stamped on every archive entry.
var EntryModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteArchive writes files as a gzip-compressed tar stream to writer. Every
// entry is placed under prefix, sorted by path, and carries canonical
// ownership, mode, and modification time, so the output depends only on the
// paths, contents, and executable bits of files.
func WriteArchive(writer io.Writer, prefix string, files []snapshot.TrackedFile) error {
	orderedFiles := append([]snapshot.TrackedFile(nil), files...)
	sort.SliceStable(orderedFiles, func(leftIndex int, rightIndex int) bool {
		return orderedFiles[leftIndex].Path < orderedFiles[rightIndex].Path
	})

	compressor, compressorError := gzip.NewWriterLevel(writer, gzip.BestCompression)
	if compressorError != nil {
		return compressorError
	}
	tarWriter := tar.NewWriter(compressor)

	for _, trackedFile := range orderedFiles {
		header := canonicalHeader(path.Join(prefix, trackedFile.Path), trackedFile)
		if headerError := tarWriter.WriteHeader(header); headerError != nil {
			return headerError
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if _, writeError := tarWriter.Write(trackedFile.Content); writeError != nil {
			return writeError
		}
	}

	if closeError := tarWriter.Close(); closeError != nil {
		return closeError
	}
	return compressor.Close()
}

func canonicalHeader(entryName string, trackedFile snapshot.TrackedFile) *tar.Header {
	header := &tar.Header{
		Name:    entryName,
		ModTime: EntryModTime,
		Uid:     0,
		Gid:     0,
		Uname:   entryOwnerNameConstant,
		Gname:   entryOwnerNameConstant,
		Format:  tar.FormatPAX,
	}
	switch {
	case trackedFile.Symlink:
		header.Typeflag = tar.TypeSymlink
		header.Linkname = string(trackedFile.Content)
		header.Mode = symlinkModeConstant
	case trackedFile.Executable:
		header.Typeflag = tar.TypeReg
		header.Mode = executableFileModeConstant
		header.Size = trackedFile.Size()
	default:
		header.Typeflag = tar.TypeReg
		header.Mode = regularFileModeConstant
		header.Size = trackedFile.Size()
	}
	return header
}
