package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/application/usecases/audit"
	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/llm"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"go.uber.org/zap"
)

const analysisTimeout = 2 * time.Minute

const systemPrompt = `You are a due-diligence assistant reviewing documents in a business sale data room.
Given document metadata, assess completeness and quality for a prospective buyer.
Respond with a JSON object: {"score": <0-100>, "findings": [{"severity": "info"|"warning"|"critical", "message": "..."}]}.
Respond with JSON only, no prose.`

// StatusView is the polling read of a version's analysis state.
type StatusView struct {
	Status   model.AnalysisStatus `json:"status"`
	Score    *float64             `json:"score,omitempty"`
	Findings json.RawMessage      `json:"findings,omitempty"`
}

type AnalysisUseCase interface {
	// Trigger kicks off the analysis in the background and returns
	// immediately. The caller polls GetStatus for the outcome.
	Trigger(ctx context.Context, roomID, versionID string, actor model.Identity) error
	GetStatus(ctx context.Context, roomID, versionID string, actor model.Identity) (*StatusView, error)
}

type analysisUseCase struct {
	documentRepo repository.DocumentRepository
	accessUC     access.AccessUseCase
	auditUC      audit.AuditUseCase
	llmClient    llm.Client
	logger       *logger.Logger
}

func NewAnalysisUseCase(
	documentRepo repository.DocumentRepository,
	accessUC access.AccessUseCase,
	auditUC audit.AuditUseCase,
	llmClient llm.Client,
	logger *logger.Logger,
) AnalysisUseCase {
	return &analysisUseCase{
		documentRepo: documentRepo,
		accessUC:     accessUC,
		auditUC:      auditUC,
		llmClient:    llmClient,
		logger:       logger,
	}
}

func (uc *analysisUseCase) Trigger(ctx context.Context, roomID, versionID string, actor model.Identity) error {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionManagePolicy, nil); err != nil {
		return err
	}
	if uc.llmClient == nil {
		return fmt.Errorf("analysis provider not configured: %w", apperrors.ErrUpstream)
	}

	ver, doc, err := uc.documentRepo.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	if doc.DataRoomID != roomID {
		return apperrors.ErrNotFound
	}
	if ver.AnalysisStatus == model.AnalysisPending || ver.AnalysisStatus == model.AnalysisAnalyzing {
		return fmt.Errorf("analysis already in progress: %w", apperrors.ErrConflict)
	}

	if err := uc.documentRepo.SetAnalysis(ctx, ver.ID, model.AnalysisPending, nil, nil); err != nil {
		return err
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionAnalysis, model.AuditTargetVersion, ver.ID, map[string]any{
		"documentId": doc.ID,
		"version":    ver.Version,
	})

	// Fire and forget. The request context dies with the response, so
	// the worker gets its own deadline.
	go uc.run(ver, doc)
	return nil
}

func (uc *analysisUseCase) run(ver *model.DataRoomDocumentVersion, doc *model.DataRoomDocument) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	if err := uc.documentRepo.SetAnalysis(ctx, ver.ID, model.AnalysisAnalyzing, nil, nil); err != nil {
		uc.logger.Error("failed to mark analysis started", zap.String("versionID", ver.ID), zap.Error(err))
		return
	}

	score, findings, err := uc.analyze(ctx, ver, doc)
	if err != nil {
		// Single attempt, no retry.
		uc.logger.Warn("document analysis failed",
			zap.String("versionID", ver.ID),
			zap.Error(err),
		)
		if setErr := uc.documentRepo.SetAnalysis(ctx, ver.ID, model.AnalysisFailed, nil, nil); setErr != nil {
			uc.logger.Error("failed to mark analysis failed", zap.String("versionID", ver.ID), zap.Error(setErr))
		}
		return
	}

	if err := uc.documentRepo.SetAnalysis(ctx, ver.ID, model.AnalysisDone, &score, findings); err != nil {
		uc.logger.Error("failed to store analysis result", zap.String("versionID", ver.ID), zap.Error(err))
	}
}

type analysisPayload struct {
	Score    float64         `json:"score"`
	Findings json.RawMessage `json:"findings"`
}

func (uc *analysisUseCase) analyze(ctx context.Context, ver *model.DataRoomDocumentVersion, doc *model.DataRoomDocument) (float64, json.RawMessage, error) {
	userPrompt := fmt.Sprintf(
		"Document title: %s\nFile name: %s\nMIME type: %s\nSize: %d bytes\nVersion: %d",
		doc.Title, ver.FileName, ver.MimeType, ver.Size, ver.Version,
	)

	result, err := uc.llmClient.Complete(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.Options{MaxTokens: 1024, Temperature: 0.2})
	if err != nil {
		return 0, nil, err
	}

	content := strings.TrimSpace(result.Content)
	// Some providers wrap JSON in a code fence despite instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return 0, nil, fmt.Errorf("unparseable analysis response: %w", err)
	}
	if payload.Score < 0 || payload.Score > 100 {
		return 0, nil, fmt.Errorf("analysis score %v out of range", payload.Score)
	}
	return payload.Score, payload.Findings, nil
}

func (uc *analysisUseCase) GetStatus(ctx context.Context, roomID, versionID string, actor model.Identity) (*StatusView, error) {
	ver, doc, err := uc.documentRepo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if doc.DataRoomID != roomID {
		return nil, apperrors.ErrNotFound
	}
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionView, doc); err != nil {
		return nil, err
	}

	view := &StatusView{Status: ver.AnalysisStatus}
	if ver.AnalysisScore.Valid {
		score := ver.AnalysisScore.Float64
		view.Score = &score
	}
	view.Findings = ver.AnalysisFindings
	return view, nil
}
