package audit

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/citation"
	"github.com/temirov/release-scholar/internal/ecosystem"
	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/history"
	"github.com/temirov/release-scholar/internal/secrets"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/snapshot"
)

const (
	categoryCompletedMessageConstant = "audit category completed"
	auditCompletedMessageConstant    = "audit completed"
	logFieldCategoryConstant         = "category"
	logFieldSeverityConstant         = "severity"
	logFieldFindingCountConstant     = "finding_count"
	logFieldCommitConstant           = "commit"
)

// Inputs is everything one audit run inspects. History may be nil, in which
// case the history scan is reported as skipped.
type Inputs struct {
	Snapshot    snapshot.ProjectSnapshot
	Tags        []string
	History     history.Source
	StatusError error
}

type runState struct {
	inputs      Inputs
	releaseTag  gitrepo.ReleaseTag
	tagged      bool
	ecosystems  ecosystem.Set
	gitignore   []string
	hasIgnore   bool
	citationRaw []byte
	hasCitation bool
	history     *historyScan
}

// Engine runs every audit category against one snapshot.
type Engine struct {
	configuration   settings.Settings
	logger          *zap.Logger
	treeScanner     *secrets.Scanner
	historyScanner  *secrets.Scanner
	scanConcurrency int
}

// NewEngine builds an engine for configuration. A nil logger disables logging.
func NewEngine(configuration settings.Settings, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		configuration:   configuration,
		logger:          logger,
		treeScanner:     secrets.NewScanner(secrets.DefaultRules()),
		historyScanner:  secrets.NewScanner(secrets.HighConfidenceRules()),
		scanConcurrency: runtime.GOMAXPROCS(0),
	}
}

// Run executes all categories and returns their findings in category order.
// A category that cannot complete reports a fail finding; it never prevents
// the remaining categories from running.
func (engine *Engine) Run(executionContext context.Context, inputs Inputs) Report {
	state := engine.prepare(inputs)
	if inputs.History != nil {
		state.history = engine.scanHistory(executionContext, inputs.History, inputs.Snapshot)
	}

	checks := []struct {
		category Category
		run      func() []Finding
	}{
		{category: CategoryGit, run: func() []Finding { return engine.checkGit(state) }},
		{category: CategoryFiles, run: func() []Finding { return engine.checkFiles(state) }},
		{category: CategoryCitation, run: func() []Finding { return engine.checkCitation(state) }},
		{category: CategorySecurity, run: func() []Finding { return engine.checkSecurity(state) }},
		{category: CategoryGitignore, run: func() []Finding { return engine.checkGitignore(state) }},
		{category: CategorySize, run: func() []Finding { return engine.checkSize(state) }},
	}

	findings := []Finding{}
	for _, check := range checks {
		categoryFindings := check.run()
		engine.logger.Debug(
			categoryCompletedMessageConstant,
			zap.String(logFieldCategoryConstant, string(check.category)),
			zap.String(logFieldSeverityConstant, string(Report{Findings: categoryFindings}.Overall())),
			zap.Int(logFieldFindingCountConstant, len(categoryFindings)),
		)
		findings = append(findings, categoryFindings...)
	}

	sort.SliceStable(findings, func(leftIndex int, rightIndex int) bool {
		return categoryRank(findings[leftIndex].Category) < categoryRank(findings[rightIndex].Category)
	})

	report := Report{Findings: findings}
	engine.logger.Info(
		auditCompletedMessageConstant,
		zap.String(logFieldCommitConstant, inputs.Snapshot.Commit()),
		zap.String(logFieldSeverityConstant, string(report.Overall())),
		zap.Int(logFieldFindingCountConstant, len(findings)),
	)
	return report
}

func (engine *Engine) prepare(inputs Inputs) runState {
	state := runState{inputs: inputs}
	state.releaseTag, state.tagged = gitrepo.SelectReleaseTag(inputs.Tags)
	state.ecosystems = ecosystem.Detect(inputs.Snapshot.Paths())

	if gitignoreFile, found := inputs.Snapshot.Lookup(gitignoreFileNameConstant); found {
		state.gitignore = gitignoreEntries(gitignoreFile.Content)
		state.hasIgnore = true
	}
	if citationFile, found := inputs.Snapshot.Lookup(citation.FileName); found {
		state.citationRaw = citationFile.Content
		state.hasCitation = true
	}
	return state
}
