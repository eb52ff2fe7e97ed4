package archive_test

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/archive"
	"github.com/temirov/release-scholar/internal/snapshot"
)

type archiveEntry struct {
	header  tar.Header
	content string
}

func readArchive(testInstance *testing.T, archiveBytes []byte) (gzip.Header, []archiveEntry) {
	testInstance.Helper()
	decompressor, readerError := gzip.NewReader(bytes.NewReader(archiveBytes))
	require.NoError(testInstance, readerError)
	defer decompressor.Close()

	entries := []archiveEntry{}
	tarReader := tar.NewReader(decompressor)
	for {
		header, nextError := tarReader.Next()
		if nextError == io.EOF {
			break
		}
		require.NoError(testInstance, nextError)
		content, readError := io.ReadAll(tarReader)
		require.NoError(testInstance, readError)
		entries = append(entries, archiveEntry{header: *header, content: string(content)})
	}
	return decompressor.Header, entries
}

func writeArchiveBytes(testInstance *testing.T, prefix string, files []snapshot.TrackedFile) []byte {
	testInstance.Helper()
	var buffer bytes.Buffer
	require.NoError(testInstance, archive.WriteArchive(&buffer, prefix, files))
	return buffer.Bytes()
}

func TestWriteArchiveNormalizesEntries(testInstance *testing.T) {
	files := []snapshot.TrackedFile{
		{Path: "src/main.rs", Content: []byte("fn main() {}\n")},
		{Path: "scripts/release.sh", Content: []byte("#!/bin/sh\n"), Executable: true},
		{Path: "README.md", Content: []byte("# Demo\n")},
		{Path: "docs/latest", Content: []byte("../README.md"), Symlink: true},
	}

	gzipHeader, entries := readArchive(testInstance, writeArchiveBytes(testInstance, "demo-v0.1.0", files))

	require.Empty(testInstance, gzipHeader.Name)
	require.True(testInstance, gzipHeader.ModTime.IsZero())

	testCases := []struct {
		name         string
		expectedType byte
		expectedMode int64
		expectedBody string
		expectedLink string
	}{
		{name: "demo-v0.1.0/README.md", expectedType: tar.TypeReg, expectedMode: 0o644, expectedBody: "# Demo\n"},
		{name: "demo-v0.1.0/docs/latest", expectedType: tar.TypeSymlink, expectedMode: 0o777, expectedLink: "../README.md"},
		{name: "demo-v0.1.0/scripts/release.sh", expectedType: tar.TypeReg, expectedMode: 0o755, expectedBody: "#!/bin/sh\n"},
		{name: "demo-v0.1.0/src/main.rs", expectedType: tar.TypeReg, expectedMode: 0o644, expectedBody: "fn main() {}\n"},
	}
	require.Len(testInstance, entries, len(testCases))

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			entry := entries[testCaseIndex]
			require.Equal(subtest, testCase.name, entry.header.Name)
			require.Equal(subtest, testCase.expectedType, entry.header.Typeflag)
			require.Equal(subtest, testCase.expectedMode, entry.header.Mode)
			require.Equal(subtest, testCase.expectedBody, entry.content)
			require.Equal(subtest, testCase.expectedLink, entry.header.Linkname)
			require.True(subtest, archive.EntryModTime.Equal(entry.header.ModTime))
			require.Equal(subtest, 0, entry.header.Uid)
			require.Equal(subtest, 0, entry.header.Gid)
			require.Equal(subtest, "root", entry.header.Uname)
		})
	}
}

func TestWriteArchiveIgnoresInputOrder(testInstance *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("archive bytes do not depend on file enumeration order", prop.ForAll(
		func(names []string, contents []string, seed int64) bool {
			seen := make(map[string]struct{})
			files := []snapshot.TrackedFile{}
			for nameIndex, name := range names {
				if _, duplicate := seen[name]; duplicate || len(name) == 0 {
					continue
				}
				seen[name] = struct{}{}
				content := ""
				if nameIndex < len(contents) {
					content = contents[nameIndex]
				}
				files = append(files, snapshot.TrackedFile{Path: name, Content: []byte(content), Executable: nameIndex%3 == 0})
			}

			shuffled := append([]snapshot.TrackedFile(nil), files...)
			random := rand.New(rand.NewSource(seed))
			random.Shuffle(len(shuffled), func(leftIndex int, rightIndex int) {
				shuffled[leftIndex], shuffled[rightIndex] = shuffled[rightIndex], shuffled[leftIndex]
			})

			var original bytes.Buffer
			var reordered bytes.Buffer
			if archive.WriteArchive(&original, "project-v1.0.0", files) != nil {
				return false
			}
			if archive.WriteArchive(&reordered, "project-v1.0.0", shuffled) != nil {
				return false
			}
			return bytes.Equal(original.Bytes(), reordered.Bytes())
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.AlphaString()),
		gen.Int64(),
	))

	properties.TestingRun(testInstance)
}

func TestChecksumLine(testInstance *testing.T) {
	require.Equal(testInstance, "SHA256 abc123  demo-v0.1.0.tar.gz\n", archive.ChecksumLine("demo-v0.1.0.tar.gz", "abc123"))
}
