// Package archive produces reproducible release bundles: a deterministic
// tar.gz of the tracked files at a release tag, its checksum manifest, the
// deposit metadata document, and copies of the citation files.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/citation"
	"github.com/temirov/release-scholar/internal/metadata"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/snapshot"
)

// CodeMetaFileName is copied into the bundle when tracked.
const CodeMetaFileName = "codemeta.json"

const (
	archiveNameTemplateConstant    = "%s-%s.tar.gz"
	entryPrefixTemplateConstant    = "%s-%s"
	stagingPatternConstant         = ".staging-%s-*"
	previousBundleSuffixConstant   = ".previous"
	bundleDirectoryPermission      = 0o755
	bundleFilePermission           = 0o644
	buildBundleOperationConstant   = "build release bundle"
	writeArchiveOperationConstant  = "write release archive"
	writeFileOperationConstant     = "write bundle file"
	promoteOperationConstant       = "promote release bundle"
	parseCitationOperationConstant = "read citation for bundle"
	missingProjectNameMessage      = "project name is required"
	missingTagMessage              = "release tag is required"
	missingOutputMessage           = "output directory is required"
	bundleWrittenMessageConstant   = "archive written"
	logFieldBundleConstant         = "bundle_directory"
	logFieldArchiveConstant        = "archive"
	logFieldChecksumConstant       = "sha256"
	logFieldFileCountConstant      = "file_count"
)

// MetadataEncoder renders release metadata into bytes.
type MetadataEncoder func(metadata.ReleaseMetadata) ([]byte, error)

// Request describes one bundle build.
type Request struct {
	Snapshot        snapshot.ProjectSnapshot
	ProjectName     string
	Tag             string
	Language        string
	OutputDirectory string
}

// Bundle describes a completed build.
type Bundle struct {
	Directory   string
	ArchiveName string
	ArchivePath string
	Checksum    string
	Files       []string
	Metadata    *metadata.ReleaseMetadata
}

// Builder writes release bundles atomically.
type Builder struct {
	logger          *zap.Logger
	metadataEncoder MetadataEncoder
}

// NewBuilder constructs a Builder. A nil logger disables logging.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, metadataEncoder: metadata.Encode}
}

// ArchiveName is the archive file name for projectName at tag.
func ArchiveName(projectName string, tag string) string {
	return fmt.Sprintf(archiveNameTemplateConstant, projectName, tag)
}

// Build writes the bundle for request to <OutputDirectory>/<Tag>/. The bundle
// is assembled in a staging directory next to its destination and renamed
// into place only after every file is written, so a failed build leaves the
// output directory as it was. An existing bundle for the same tag is replaced.
func (builder *Builder) Build(request Request) (Bundle, error) {
	if validationError := request.validate(); validationError != nil {
		return Bundle{}, validationError
	}

	releaseMetadata, metadataError := bundleMetadata(request)
	if metadataError != nil {
		return Bundle{}, metadataError
	}

	outputExisted, statError := directoryExists(request.OutputDirectory)
	if statError != nil {
		return Bundle{}, releaseerrors.New(releaseerrors.KindIO, buildBundleOperationConstant, statError)
	}
	if mkdirError := os.MkdirAll(request.OutputDirectory, bundleDirectoryPermission); mkdirError != nil {
		return Bundle{}, releaseerrors.New(releaseerrors.KindIO, buildBundleOperationConstant, mkdirError)
	}

	stagingDirectory, stagingError := os.MkdirTemp(request.OutputDirectory, fmt.Sprintf(stagingPatternConstant, request.Tag))
	if stagingError != nil {
		builder.discardOutput(request.OutputDirectory, outputExisted)
		return Bundle{}, releaseerrors.New(releaseerrors.KindIO, buildBundleOperationConstant, stagingError)
	}
	if chmodError := os.Chmod(stagingDirectory, bundleDirectoryPermission); chmodError != nil {
		_ = os.RemoveAll(stagingDirectory)
		builder.discardOutput(request.OutputDirectory, outputExisted)
		return Bundle{}, releaseerrors.New(releaseerrors.KindIO, buildBundleOperationConstant, chmodError)
	}

	bundle, stageError := builder.stage(stagingDirectory, request, releaseMetadata)
	if stageError == nil {
		bundleDirectory := filepath.Join(request.OutputDirectory, request.Tag)
		stageError = promote(stagingDirectory, bundleDirectory)
		bundle = bundle.relocated(bundleDirectory)
	}
	if stageError != nil {
		_ = os.RemoveAll(stagingDirectory)
		builder.discardOutput(request.OutputDirectory, outputExisted)
		return Bundle{}, stageError
	}

	builder.logger.Info(
		bundleWrittenMessageConstant,
		zap.String(logFieldBundleConstant, bundle.Directory),
		zap.String(logFieldArchiveConstant, bundle.ArchiveName),
		zap.String(logFieldChecksumConstant, bundle.Checksum),
		zap.Int(logFieldFileCountConstant, request.Snapshot.Len()),
	)
	return bundle, nil
}

func (builder *Builder) stage(stagingDirectory string, request Request, releaseMetadata *metadata.ReleaseMetadata) (Bundle, error) {
	archiveName := ArchiveName(request.ProjectName, request.Tag)
	bundle := Bundle{Directory: stagingDirectory, ArchiveName: archiveName, ArchivePath: filepath.Join(stagingDirectory, archiveName), Metadata: releaseMetadata}

	checksum, archiveError := writeArchiveFile(bundle.ArchivePath, fmt.Sprintf(entryPrefixTemplateConstant, request.ProjectName, request.Tag), request.Snapshot.Files())
	if archiveError != nil {
		return Bundle{}, archiveError
	}
	bundle.Checksum = checksum
	bundle.Files = append(bundle.Files, archiveName)

	if writeError := writeBundleFile(stagingDirectory, ChecksumFileName, []byte(ChecksumLine(archiveName, checksum))); writeError != nil {
		return Bundle{}, writeError
	}
	bundle.Files = append(bundle.Files, ChecksumFileName)

	if releaseMetadata != nil {
		encoded, encodeError := builder.metadataEncoder(*releaseMetadata)
		if encodeError != nil {
			return Bundle{}, encodeError
		}
		if writeError := writeBundleFile(stagingDirectory, metadata.FileName, encoded); writeError != nil {
			return Bundle{}, writeError
		}
		bundle.Files = append(bundle.Files, metadata.FileName)
	}

	for _, copiedName := range []string{citation.FileName, CodeMetaFileName} {
		trackedFile, tracked := request.Snapshot.Lookup(copiedName)
		if !tracked {
			continue
		}
		if writeError := writeBundleFile(stagingDirectory, copiedName, trackedFile.Content); writeError != nil {
			return Bundle{}, writeError
		}
		bundle.Files = append(bundle.Files, copiedName)
	}
	return bundle, nil
}

func (builder *Builder) discardOutput(outputDirectory string, existed bool) {
	if existed {
		return
	}
	_ = os.Remove(outputDirectory)
}

func (request Request) validate() error {
	switch {
	case len(strings.TrimSpace(request.ProjectName)) == 0:
		return releaseerrors.New(releaseerrors.KindConfig, buildBundleOperationConstant, errors.New(missingProjectNameMessage))
	case len(strings.TrimSpace(request.Tag)) == 0:
		return releaseerrors.New(releaseerrors.KindConfig, buildBundleOperationConstant, errors.New(missingTagMessage))
	case len(strings.TrimSpace(request.OutputDirectory)) == 0:
		return releaseerrors.New(releaseerrors.KindConfig, buildBundleOperationConstant, errors.New(missingOutputMessage))
	default:
		return nil
	}
}

func bundleMetadata(request Request) (*metadata.ReleaseMetadata, error) {
	citationFile, tracked := request.Snapshot.Lookup(citation.FileName)
	if !tracked {
		return nil, nil
	}
	record, parseError := citation.Parse(citationFile.Content)
	if parseError != nil {
		return nil, releaseerrors.New(releaseerrors.KindParse, parseCitationOperationConstant, parseError)
	}
	releaseMetadata := metadata.FromCitation(record, request.Language)
	return &releaseMetadata, nil
}

func (bundle Bundle) relocated(directory string) Bundle {
	bundle.Directory = directory
	bundle.ArchivePath = filepath.Join(directory, bundle.ArchiveName)
	return bundle
}

func writeArchiveFile(archivePath string, prefix string, files []snapshot.TrackedFile) (string, error) {
	archiveFile, createError := os.OpenFile(archivePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, bundleFilePermission)
	if createError != nil {
		return "", releaseerrors.New(releaseerrors.KindIO, writeArchiveOperationConstant, createError)
	}

	digest := newDigest()
	writeError := WriteArchive(io.MultiWriter(archiveFile, digest), prefix, files)
	closeError := archiveFile.Close()
	if writeError != nil {
		return "", releaseerrors.New(releaseerrors.KindIO, writeArchiveOperationConstant, writeError)
	}
	if closeError != nil {
		return "", releaseerrors.New(releaseerrors.KindIO, writeArchiveOperationConstant, closeError)
	}
	return hexDigest(digest), nil
}

func writeBundleFile(directory string, fileName string, content []byte) error {
	bundleFile, createError := os.OpenFile(filepath.Join(directory, fileName), os.O_CREATE|os.O_EXCL|os.O_WRONLY, bundleFilePermission)
	if createError != nil {
		return releaseerrors.New(releaseerrors.KindIO, writeFileOperationConstant, createError)
	}
	_, copyError := io.Copy(bundleFile, bytes.NewReader(content))
	closeError := bundleFile.Close()
	if copyError != nil {
		return releaseerrors.New(releaseerrors.KindIO, writeFileOperationConstant, copyError)
	}
	if closeError != nil {
		return releaseerrors.New(releaseerrors.KindIO, writeFileOperationConstant, closeError)
	}
	return nil
}

// promote moves stagingDirectory to bundleDirectory, setting any existing
// bundle aside first and restoring it when the final rename fails.
func promote(stagingDirectory string, bundleDirectory string) error {
	previousDirectory := stagingDirectory + previousBundleSuffixConstant
	previousExists, statError := directoryExists(bundleDirectory)
	if statError != nil {
		return releaseerrors.New(releaseerrors.KindIO, promoteOperationConstant, statError)
	}
	if previousExists {
		if renameError := os.Rename(bundleDirectory, previousDirectory); renameError != nil {
			return releaseerrors.New(releaseerrors.KindIO, promoteOperationConstant, renameError)
		}
	}

	if renameError := os.Rename(stagingDirectory, bundleDirectory); renameError != nil {
		if previousExists {
			_ = os.Rename(previousDirectory, bundleDirectory)
		}
		return releaseerrors.New(releaseerrors.KindIO, promoteOperationConstant, renameError)
	}
	if previousExists {
		_ = os.RemoveAll(previousDirectory)
	}
	return nil
}

func directoryExists(directory string) (bool, error) {
	info, statError := os.Stat(directory)
	switch {
	case statError == nil:
		if !info.IsDir() {
			return false, &fs.PathError{Op: "stat", Path: directory, Err: fs.ErrExist}
		}
		return true, nil
	case errors.Is(statError, fs.ErrNotExist):
		return false, nil
	default:
		return false, statError
	}
}
