package logic

import (
	"errors"

	"flowpulse/internal/model"
	"flowpulse/internal/orchestrator"
	"flowpulse/internal/types"
	"flowpulse/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkflowLogic manages workflow metadata.
type WorkflowLogic struct {
	db   *gorm.DB
	orch *orchestrator.Client
}

// NewWorkflowLogic creates the metadata logic.
func NewWorkflowLogic(db *gorm.DB, orch *orchestrator.Client) *WorkflowLogic {
	return &WorkflowLogic{db: db, orch: orch}
}

// Create registers workflow metadata.
func (l *WorkflowLogic) Create(req *types.CreateWorkflowRequest) (*model.WorkflowMetadata, error) {
	var count int64
	l.db.Model(&model.WorkflowMetadata{}).Where("workflow_id = ?", req.WorkflowID).Count(&count)
	if count > 0 {
		return nil, ErrWorkflowExists
	}

	status := req.Status
	if status == "" {
		status = model.WorkflowStatusActive
	}

	meta := &model.WorkflowMetadata{
		WorkflowID:    req.WorkflowID,
		Name:          req.Name,
		Description:   req.Description,
		Author:        req.Author,
		Team:          req.Team,
		Status:        status,
		Complexity:    req.Complexity,
		Category:      req.Category,
		Tags:          types.JSONString(req.Tags),
		Dependencies:  types.JSONString(req.Dependencies),
		Documentation: req.Documentation,
	}
	if err := l.db.Create(meta).Error; err != nil {
		return nil, err
	}
	return meta, nil
}

// Update mutates workflow metadata. Only non-nil fields are applied.
func (l *WorkflowLogic) Update(workflowID string, req *types.UpdateWorkflowRequest) (*model.WorkflowMetadata, error) {
	meta, err := l.Get(workflowID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.Team != nil {
		updates["team"] = *req.Team
	}
	if req.Status != nil {
		switch *req.Status {
		case model.WorkflowStatusActive, model.WorkflowStatusArchived, model.WorkflowStatusDeprecated:
		default:
			return nil, ErrInvalidStatus
		}
		updates["status"] = *req.Status
	}
	if req.Complexity != nil {
		updates["complexity"] = *req.Complexity
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Tags != nil {
		updates["tags"] = types.JSONString(*req.Tags)
	}
	if req.Dependencies != nil {
		updates["dependencies"] = types.JSONString(*req.Dependencies)
	}
	if req.Documentation != nil {
		updates["documentation"] = *req.Documentation
	}
	if len(updates) == 0 {
		return meta, nil
	}

	if err := l.db.Model(meta).Updates(updates).Error; err != nil {
		return nil, err
	}
	return l.Get(workflowID)
}

// Get loads metadata by orchestrator workflow id.
func (l *WorkflowLogic) Get(workflowID string) (*model.WorkflowMetadata, error) {
	var meta model.WorkflowMetadata
	if err := l.db.First(&meta, "workflow_id = ?", workflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}
	return &meta, nil
}

// List returns filtered metadata with totals.
func (l *WorkflowLogic) List(req *types.ListWorkflowsRequest) ([]model.WorkflowMetadata, int64, error) {
	var workflows []model.WorkflowMetadata
	var total int64

	query := l.db.Model(&model.WorkflowMetadata{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Team != "" {
		query = query.Where("team = ?", req.Team)
	}

	query.Count(&total)

	if req.Page > 0 && req.PageSize > 0 {
		query = query.Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize)
	}

	if err := query.Order("name ASC").Find(&workflows).Error; err != nil {
		return nil, 0, err
	}
	return workflows, total, nil
}

// Delete removes a workflow and everything that references it.
func (l *WorkflowLogic) Delete(workflowID string) error {
	meta, err := l.Get(workflowID)
	if err != nil {
		return err
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var executionIDs []string
		tx.Model(&model.WorkflowExecution{}).Where("workflow_id = ?", workflowID).Pluck("id", &executionIDs)
		if len(executionIDs) > 0 {
			if err := tx.Where("execution_id IN ?", executionIDs).Delete(&model.WorkflowLog{}).Error; err != nil {
				return err
			}
		}
		for _, entity := range []any{
			&model.WorkflowExecution{},
			&model.WorkflowVersion{},
			&model.WorkflowAlert{},
			&model.AlertConfiguration{},
			&model.WorkflowHealthCheck{},
			&model.WorkflowMetrics{},
		} {
			if err := tx.Where("workflow_id = ?", workflowID).Delete(entity).Error; err != nil {
				return err
			}
		}
		return tx.Delete(meta).Error
	})
}

// Info converts a metadata row into its response shape.
func (l *WorkflowLogic) Info(meta *model.WorkflowMetadata) (*types.WorkflowInfo, error) {
	info, err := types.Convert[types.WorkflowInfo](meta)
	if err != nil {
		return nil, err
	}
	info.Tags = types.StringList(meta.Tags)
	info.Dependencies = types.StringList(meta.Dependencies)
	return info, nil
}

// InfoList converts a batch of metadata rows.
func (l *WorkflowLogic) InfoList(metas []model.WorkflowMetadata) ([]*types.WorkflowInfo, error) {
	list := make([]*types.WorkflowInfo, len(metas))
	for i := range metas {
		info, err := l.Info(&metas[i])
		if err != nil {
			return nil, err
		}
		list[i] = info
	}
	return list, nil
}

// Sync pulls the workflow list from the current environment's orchestrator
// and upserts metadata rows for it.
func (l *WorkflowLogic) Sync(environment string) (*types.SyncResult, error) {
	workflows, err := l.orch.ListWorkflows()
	if err != nil {
		return nil, err
	}

	result := &types.SyncResult{Environment: environment, Fetched: len(workflows)}
	for _, wf := range workflows {
		if wf.ID == "" {
			continue
		}
		var meta model.WorkflowMetadata
		err := l.db.First(&meta, "workflow_id = ?", wf.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status := model.WorkflowStatusArchived
			if wf.Active {
				status = model.WorkflowStatusActive
			}
			meta = model.WorkflowMetadata{
				WorkflowID: wf.ID,
				Name:       wf.Name,
				Status:     status,
				Tags:       types.JSONString(wf.Tags),
			}
			if err := l.db.Create(&meta).Error; err != nil {
				return nil, err
			}
			result.Created++
			continue
		} else if err != nil {
			return nil, err
		}

		updates := map[string]any{"name": wf.Name}
		if wf.Active && meta.Status == model.WorkflowStatusArchived {
			updates["status"] = model.WorkflowStatusActive
		}
		if err := l.db.Model(&meta).Updates(updates).Error; err != nil {
			return nil, err
		}
		result.Updated++
	}

	logger.Info("workflow sync finished",
		zap.String("environment", environment),
		zap.Int("fetched", result.Fetched),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}
