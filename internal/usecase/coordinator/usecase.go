package coordinator

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

// UseCase fans one query out to the research and web agents and joins their
// answers into a CombinedRecord.
type UseCase struct {
	research input.AgentExecutor
	web      input.AgentExecutor
	logger   output.LoggerPort
}

func New(research, web input.AgentExecutor, logger output.LoggerPort) *UseCase {
	return &UseCase{research: research, web: web, logger: logger}
}

// Run starts both agents before waiting on either. The first failure cancels
// the other agent and is returned as a *entity.StageError naming the branch.
func (uc *UseCase) Run(ctx context.Context, query string) (*entity.CombinedRecord, error) {
	g, gctx := errgroup.WithContext(ctx)

	var researchOut, webOut *entity.AgentResult

	g.Go(func() error {
		res, err := uc.runBranch(gctx, uc.research, query)
		researchOut = res
		return err
	})
	g.Go(func() error {
		res, err := uc.runBranch(gctx, uc.web, query)
		webOut = res
		return err
	})

	uc.logger.Debug("Branches started", "query", query)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &entity.CombinedRecord{
		ResearchOutput: researchOut.Output,
		WebOutput:      webOut.Output,
	}, nil
}

func (uc *UseCase) runBranch(ctx context.Context, agent input.AgentExecutor, query string) (result *entity.AgentResult, err error) {
	role := agent.Role()

	defer func() {
		if panicErr := recover(); panicErr != nil {
			uc.logger.Error("Branch panicked", "agent", role.String(), "panic", panicErr, "stack", string(debug.Stack()))
			sentry.CurrentHub().Recover(panicErr)
			result = nil
			err = &entity.StageError{Query: query, Stage: role, Err: fmt.Errorf("panic: %v", panicErr)}
		}
	}()

	result, err = agent.Run(ctx, query)
	if err != nil {
		uc.logger.Warn("Branch failed", "agent", role.String(), "error", err)
		return nil, &entity.StageError{Query: query, Stage: role, Err: err}
	}

	uc.logger.Debug("Branch finished", "agent", role.String(), "iterations", result.Iterations, "stopped", result.Stopped)
	return result, nil
}
