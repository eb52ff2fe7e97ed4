package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/snapshot"
)

const (
	auditStartedMessageConstant     = "audit started"
	emptyRepositoryMessageConstant  = "repository has no commits; auditing empty tree"
	headTagsResolvedMessageConstant = "head tags resolved"
	treeStatusFailedMessageConstant = "worktree status unavailable"
	logFieldProjectConstant         = "project_directory"
	logFieldTagsConstant            = "tags"
)

// Service opens a project and runs the audit engine against its HEAD.
type Service struct {
	opener RepositoryOpener
	engine *Engine
	logger *zap.Logger
}

// NewService constructs a Service. A nil opener uses OpenGitRepository.
func NewService(opener RepositoryOpener, engine *Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{opener: ResolveRepositoryOpener(opener), engine: engine, logger: logger}
}

// Audit inspects projectDirectory. Only a failure to open or read the
// repository is returned as an error; every audit problem becomes a finding.
func (service *Service) Audit(executionContext context.Context, projectDirectory string) (Report, error) {
	service.logger.Info(auditStartedMessageConstant, zap.String(logFieldProjectConstant, projectDirectory))

	headStateReader, historySource, openError := service.opener(projectDirectory)
	if openError != nil {
		return Report{}, openError
	}

	headState, stateError := headStateReader.ReadHeadState()
	switch {
	case stateError == nil:
	case errors.Is(stateError, gitrepo.ErrEmptyRepository):
		service.logger.Warn(emptyRepositoryMessageConstant, zap.String(logFieldProjectConstant, projectDirectory))
		headState = gitrepo.HeadState{Snapshot: snapshot.New("", nil, true)}
	default:
		return Report{}, stateError
	}

	if headState.StatusError != nil {
		service.logger.Warn(treeStatusFailedMessageConstant, zap.String(logFieldProjectConstant, projectDirectory), zap.Error(headState.StatusError))
	}
	service.logger.Debug(headTagsResolvedMessageConstant, zap.Strings(logFieldTagsConstant, headState.Tags))

	return service.engine.Run(executionContext, Inputs{
		Snapshot:    headState.Snapshot,
		Tags:        headState.Tags,
		History:     historySource,
		StatusError: headState.StatusError,
	}), nil
}
