package audit

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/release-scholar/internal/history"
	"github.com/temirov/release-scholar/internal/secrets"
	"github.com/temirov/release-scholar/internal/snapshot"
)

const (
	treeSecretTemplateConstant          = "Possible %s found in tracked file"
	noTreeSecretsMessageConstant        = "No secrets detected in tracked files"
	sensitiveFileMessageConstant        = "Sensitive file tracked"
	noSensitiveFilesMessageConstant     = "No sensitive files tracked"
	historySecretTemplateConstant       = "Possible %s found in git history"
	noHistorySecretsTemplateConstant    = "No secrets found in git history (%d commits, %d blobs scanned)"
	historyScanFailedTemplateConstant   = "History scan failed: %v"
	historyScanSkippedMessageConstant   = "History scan skipped: no history source"
	gitignoreSecurityMissingTemplate    = gitignoreFileNameConstant + " is missing security patterns: %s"
	gitignoreSecurityCoveredMessage     = gitignoreFileNameConstant + " covers common sensitive file patterns"
	historyScanCompletedMessageConstant = "history scan completed"
	logFieldCommitCountConstant         = "commit_count"
	logFieldBlobCountConstant           = "blob_count"
	logFieldMatchCountConstant          = "match_count"
	logFieldLargeBlobCountConstant      = "large_blob_count"
)

func (engine *Engine) checkSecurity(state runState) []Finding {
	collector := newFindingCollector(CategorySecurity)
	deduplicator := secrets.NewDeduplicator()
	projectSnapshot := state.inputs.Snapshot

	treeSecretFound := false
	for _, match := range engine.scanTree(projectSnapshot) {
		if !deduplicator.Admit(match) {
			continue
		}
		treeSecretFound = true
		collector.add(severityForRule(match.Rule), fmt.Sprintf(treeSecretTemplateConstant, match.Rule.Name), match.Path, match.Line)
	}
	if !treeSecretFound {
		collector.pass(noTreeSecretsMessageConstant)
	}

	sensitiveFileFound := false
	for _, trackedPath := range projectSnapshot.Paths() {
		if secrets.IsSensitiveFileName(trackedPath) {
			sensitiveFileFound = true
			collector.warnPath(sensitiveFileMessageConstant, trackedPath)
		}
	}
	if !sensitiveFileFound {
		collector.pass(noSensitiveFilesMessageConstant)
	}

	engine.reportHistory(state, deduplicator, collector)

	missingPatterns := []string{}
	for _, pattern := range secrets.RecommendedGitignorePatterns() {
		if !gitignoreCovers(state.gitignore, pattern) {
			missingPatterns = append(missingPatterns, pattern)
		}
	}
	if len(missingPatterns) > 0 {
		collector.warnPath(fmt.Sprintf(gitignoreSecurityMissingTemplate, strings.Join(missingPatterns, ", ")), gitignoreFileNameConstant)
	} else {
		collector.pass(gitignoreSecurityCoveredMessage)
	}
	return collector.findings
}

// historyScan is the outcome of one walk over the reachable history.
type historyScan struct {
	matches    []secrets.Match
	statistics history.Statistics
	largeBlobs []historicalBlob
	scanError  error
}

// historicalBlob is a large blob stored under a path HEAD no longer tracks.
type historicalBlob struct {
	path string
	size int64
}

func (engine *Engine) reportHistory(state runState, deduplicator *secrets.Deduplicator, collector *findingCollector) {
	if state.history == nil {
		collector.warn(historyScanSkippedMessageConstant)
		return
	}
	if state.history.scanError != nil {
		collector.fail(fmt.Sprintf(historyScanFailedTemplateConstant, state.history.scanError))
		return
	}
	statistics := state.history.statistics

	historySecretFound := false
	for _, match := range state.history.matches {
		if !deduplicator.Admit(match) {
			continue
		}
		historySecretFound = true
		collector.add(severityForRule(match.Rule), fmt.Sprintf(historySecretTemplateConstant, match.Rule.Name), match.Path, 0)
	}
	if !historySecretFound {
		collector.pass(fmt.Sprintf(noHistorySecretsTemplateConstant, statistics.Commits, statistics.Blobs))
	}
}

// scanTree scans every tracked file in parallel and returns matches in path order.
func (engine *Engine) scanTree(projectSnapshot snapshot.ProjectSnapshot) []secrets.Match {
	trackedFiles := projectSnapshot.Files()
	perFileMatches := make([][]secrets.Match, len(trackedFiles))

	var group errgroup.Group
	group.SetLimit(engine.scanConcurrency)
	for fileIndex, trackedFile := range trackedFiles {
		if trackedFile.Symlink {
			continue
		}
		group.Go(func() error {
			perFileMatches[fileIndex] = engine.treeScanner.ScanFile(trackedFile.Path, trackedFile.Content)
			return nil
		})
	}
	_ = group.Wait()

	matches := []secrets.Match{}
	for _, fileMatches := range perFileMatches {
		matches = append(matches, fileMatches...)
	}
	return matches
}

// scanHistory walks source once, logs the walk, and packages the result for
// the Security and Size checks.
func (engine *Engine) scanHistory(executionContext context.Context, source history.Source, projectSnapshot snapshot.ProjectSnapshot) *historyScan {
	matches, largeBlobs, statistics, scanError := engine.walkHistory(executionContext, source, projectSnapshot)
	if scanError != nil {
		return &historyScan{statistics: statistics, scanError: scanError}
	}
	engine.logger.Info(
		historyScanCompletedMessageConstant,
		zap.Int(logFieldCommitCountConstant, statistics.Commits),
		zap.Int(logFieldBlobCountConstant, statistics.Blobs),
		zap.Int(logFieldMatchCountConstant, len(matches)),
		zap.Int(logFieldLargeBlobCountConstant, len(largeBlobs)),
	)
	return &historyScan{matches: matches, statistics: statistics, largeBlobs: largeBlobs}
}

// walkHistory reads blobs sequentially from source and scans them in
// parallel. Blobs identical to the tracked file at the same path are skipped
// because the tree scan already reported them with line numbers. Blobs above
// the file warning threshold stored under paths HEAD does not track are
// collected, keeping the largest size per path. Matches are sorted by path
// and rule so the result does not depend on scan timing.
func (engine *Engine) walkHistory(executionContext context.Context, source history.Source, projectSnapshot snapshot.ProjectSnapshot) ([]secrets.Match, []historicalBlob, history.Statistics, error) {
	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(engine.scanConcurrency)

	var matchesMutex sync.Mutex
	matches := []secrets.Match{}
	largestByPath := make(map[string]int64)

	statistics, walkError := source.Walk(groupContext, func(blob history.Blob) error {
		trackedFile, tracked := projectSnapshot.Lookup(blob.Path)
		if tracked && bytes.Equal(trackedFile.Content, blob.Content) {
			return nil
		}
		if blobSize := int64(len(blob.Content)); !tracked && blobSize > engine.configuration.Size.WarnFileBytes && blobSize > largestByPath[blob.Path] {
			largestByPath[blob.Path] = blobSize
		}
		group.Go(func() error {
			blobMatches := engine.historyScanner.ScanBlob(blob.Path, blob.Content)
			if len(blobMatches) == 0 {
				return nil
			}
			matchesMutex.Lock()
			matches = append(matches, blobMatches...)
			matchesMutex.Unlock()
			return nil
		})
		return nil
	})
	waitError := group.Wait()
	if walkError != nil {
		return nil, nil, statistics, walkError
	}
	if waitError != nil {
		return nil, nil, statistics, waitError
	}

	largeBlobs := make([]historicalBlob, 0, len(largestByPath))
	for blobPath, blobSize := range largestByPath {
		largeBlobs = append(largeBlobs, historicalBlob{path: blobPath, size: blobSize})
	}
	sort.Slice(largeBlobs, func(leftIndex int, rightIndex int) bool {
		return largeBlobs[leftIndex].path < largeBlobs[rightIndex].path
	})

	sort.SliceStable(matches, func(leftIndex int, rightIndex int) bool {
		if matches[leftIndex].Path != matches[rightIndex].Path {
			return matches[leftIndex].Path < matches[rightIndex].Path
		}
		return matches[leftIndex].Rule.Name < matches[rightIndex].Rule.Name
	})
	return matches, largeBlobs, statistics, nil
}

func severityForRule(rule secrets.Rule) Severity {
	if rule.Confidence == secrets.ConfidenceHigh {
		return SeverityFail
	}
	return SeverityWarn
}
