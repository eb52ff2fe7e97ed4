package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/snapshot"
)

func TestNewOrdersPathsByteWise(testInstance *testing.T) {
	files := []snapshot.TrackedFile{
		{Path: "src/main.rs", Content: []byte("fn main() {}")},
		{Path: "README.md", Content: []byte("# readme")},
		{Path: "Cargo.toml", Content: []byte("[package]")},
		{Path: "a.txt", Content: []byte("a")},
	}

	projectSnapshot := snapshot.New("abc123", files, true)

	require.Equal(testInstance, []string{"Cargo.toml", "README.md", "a.txt", "src/main.rs"}, projectSnapshot.Paths())
	require.Equal(testInstance, "abc123", projectSnapshot.Commit())
	require.True(testInstance, projectSnapshot.Clean())
	require.Equal(testInstance, int64(12+8+9+1), projectSnapshot.TotalSize())
	require.Equal(testInstance, 4, projectSnapshot.Len())
}

func TestSnapshotIsIsolatedFromCallerSlices(testInstance *testing.T) {
	files := []snapshot.TrackedFile{{Path: "b"}, {Path: "a"}}
	projectSnapshot := snapshot.New("", files, false)

	files[0].Path = "mutated"
	returned := projectSnapshot.Files()
	returned[0].Path = "also-mutated"

	require.Equal(testInstance, []string{"a", "b"}, projectSnapshot.Paths())
	require.True(testInstance, projectSnapshot.Contains("a"))
	require.False(testInstance, projectSnapshot.Contains("mutated"))

	file, found := projectSnapshot.Lookup("b")
	require.True(testInstance, found)
	require.Equal(testInstance, "b", file.Path)
}
