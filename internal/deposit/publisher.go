package deposit

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/metadata"
	"github.com/temirov/release-scholar/internal/releaseerrors"
)

const (
	openArchiveOperationConstant  = "open archive for upload"
	missingBucketTemplateConstant = "deposition %d has no bucket link"
	depositionCreatedMessage      = "deposition created"
	archiveUploadedMessage        = "archive uploaded"
	metadataUpdatedMessage        = "deposition metadata updated"
	depositionPublishedMessage    = "deposition published"
	logFieldDepositionConstant    = "deposition_id"
	logFieldFileConstant          = "file"
	logFieldSizeConstant          = "size"
	logFieldDOIConstant           = "doi"
)

// DepositClient is the deposit service API consumed by Publisher.
type DepositClient interface {
	CreateDeposition(executionContext context.Context) (Deposition, error)
	UploadFile(executionContext context.Context, bucketURL string, fileName string, content io.Reader, size int64) (UploadedFile, error)
	UpdateMetadata(executionContext context.Context, depositionID int64, releaseMetadata metadata.ReleaseMetadata) (Deposition, error)
	Publish(executionContext context.Context, depositionID int64) (Deposition, error)
	WebURL(depositionID int64) string
}

// Submission is one archive with its metadata.
type Submission struct {
	ArchivePath string
	Metadata    metadata.ReleaseMetadata
	Publish     bool
}

// Result describes the deposition a submission produced.
type Result struct {
	DepositionID int64
	WebURL       string
	Uploaded     UploadedFile
	Published    bool
	DOI          string
	DOIURL       string
}

// Publisher drives a submission through the deposit workflow.
type Publisher struct {
	client DepositClient
	logger *zap.Logger
}

// NewPublisher constructs a Publisher. A nil logger disables logging.
func NewPublisher(client DepositClient, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, logger: logger}
}

// Submit creates a draft deposition, uploads the archive, and sets the
// metadata. The draft is published only when submission.Publish is set.
func (publisher *Publisher) Submit(executionContext context.Context, submission Submission) (Result, error) {
	deposition, createError := publisher.client.CreateDeposition(executionContext)
	if createError != nil {
		return Result{}, createError
	}
	if len(deposition.Links.Bucket) == 0 {
		return Result{}, releaseerrors.Newf(releaseerrors.KindIO, createDepositionOperationConstant, missingBucketTemplateConstant, deposition.ID)
	}
	publisher.logger.Info(depositionCreatedMessage, zap.Int64(logFieldDepositionConstant, deposition.ID))

	result := Result{DepositionID: deposition.ID, WebURL: publisher.client.WebURL(deposition.ID)}

	archiveFile, openError := os.Open(submission.ArchivePath)
	if openError != nil {
		return result, releaseerrors.New(releaseerrors.KindIO, openArchiveOperationConstant, openError)
	}
	archiveInfo, statError := archiveFile.Stat()
	if statError != nil {
		archiveFile.Close()
		return result, releaseerrors.New(releaseerrors.KindIO, openArchiveOperationConstant, statError)
	}
	uploaded, uploadError := publisher.client.UploadFile(executionContext, deposition.Links.Bucket, filepath.Base(submission.ArchivePath), archiveFile, archiveInfo.Size())
	archiveFile.Close()
	if uploadError != nil {
		return result, uploadError
	}
	result.Uploaded = uploaded
	publisher.logger.Info(archiveUploadedMessage, zap.String(logFieldFileConstant, uploaded.Key), zap.Int64(logFieldSizeConstant, uploaded.Size))

	if _, metadataError := publisher.client.UpdateMetadata(executionContext, deposition.ID, submission.Metadata); metadataError != nil {
		return result, metadataError
	}
	publisher.logger.Info(metadataUpdatedMessage, zap.Int64(logFieldDepositionConstant, deposition.ID))

	if !submission.Publish {
		return result, nil
	}

	published, publishError := publisher.client.Publish(executionContext, deposition.ID)
	if publishError != nil {
		return result, publishError
	}
	result.Published = true
	result.DOI = published.DOI
	result.DOIURL = DOIURL(published.DOI, published.DOIURL)
	publisher.logger.Info(depositionPublishedMessage, zap.Int64(logFieldDepositionConstant, deposition.ID), zap.String(logFieldDOIConstant, published.DOI))
	return result, nil
}
