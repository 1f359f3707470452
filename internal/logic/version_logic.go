package logic

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"flowpulse/internal/gitstore"
	"flowpulse/internal/model"
	"flowpulse/internal/types"
	"flowpulse/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionLogic manages workflow version snapshots and their source-control
// provenance. Activations are serialized per workflow.
type VersionLogic struct {
	db    *gorm.DB
	store *gitstore.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewVersionLogic creates the version logic.
func NewVersionLogic(db *gorm.DB, store *gitstore.Store) *VersionLogic {
	return &VersionLogic{
		db:    db,
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *VersionLogic) workflowLock(workflowID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[workflowID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[workflowID] = lock
	}
	return lock
}

// Create commits the definition to the definition repository and records the
// version row. The commit happens first; a failed row write surfaces the
// orphaned commit hash for reconciliation instead of rolling back history.
func (l *VersionLogic) Create(req *types.CreateVersionRequest) (*model.WorkflowVersion, error) {
	var meta model.WorkflowMetadata
	if err := l.db.First(&meta, "workflow_id = ?", req.WorkflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}

	var count int64
	l.db.Model(&model.WorkflowVersion{}).
		Where("workflow_id = ? AND version = ?", req.WorkflowID, req.Version).
		Count(&count)
	if count > 0 {
		return nil, ErrVersionExists
	}

	changeType := req.ChangeType
	if changeType == "" {
		changeType = model.ChangeTypeFeature
	}

	definition := types.JSONString(req.Definition)
	commit, err := l.store.Commit(req.WorkflowID, definition, gitstore.CommitOptions{
		Message: fmt.Sprintf("%s %s: %s", meta.Name, req.Version, firstLine(req.Changelog)),
		Author:  req.Author,
		Email:   req.Email,
		Branch:  req.Branch,
	})
	if err != nil {
		return nil, err
	}

	version := &model.WorkflowVersion{
		WorkflowID:      req.WorkflowID,
		Version:         req.Version,
		Definition:      definition,
		CommitHash:      commit.Hash,
		Branch:          commit.Branch,
		Author:          req.Author,
		Changelog:       req.Changelog,
		BreakingChanges: req.BreakingChanges,
		ChangeType:      changeType,
	}
	if err := l.db.Create(version).Error; err != nil {
		logger.Error("version row write failed after commit",
			zap.String("workflowId", req.WorkflowID),
			zap.String("commit", commit.Hash),
			zap.Error(err),
		)
		return nil, &OrphanedCommitError{Hash: commit.Hash, Err: err}
	}
	return version, nil
}

// Get loads one version by id.
func (l *VersionLogic) Get(id string) (*model.WorkflowVersion, error) {
	var version model.WorkflowVersion
	if err := l.db.First(&version, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}

// List returns filtered versions, newest first.
func (l *VersionLogic) List(req *types.ListVersionsRequest) ([]model.WorkflowVersion, int64, error) {
	var versions []model.WorkflowVersion
	var total int64

	query := l.db.Model(&model.WorkflowVersion{})
	if req.WorkflowID != "" {
		query = query.Where("workflow_id = ?", req.WorkflowID)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	query.Count(&total)

	if req.Page > 0 && req.PageSize > 0 {
		query = query.Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&versions).Error; err != nil {
		return nil, 0, err
	}
	return versions, total, nil
}

// Activate makes one version the workflow's active version: all siblings are
// deactivated and the metadata version string follows, in one transaction.
// Concurrent activations for the same workflow are serialized.
func (l *VersionLogic) Activate(id, deployedBy string) (*model.WorkflowVersion, error) {
	version, err := l.Get(id)
	if err != nil {
		return nil, err
	}

	lock := l.workflowLock(version.WorkflowID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.WorkflowVersion{}).
			Where("workflow_id = ? AND is_active = ?", version.WorkflowID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.WorkflowVersion{}).
			Where("id = ?", version.ID).
			Updates(map[string]any{
				"is_active":   true,
				"deployed_at": now,
				"deployed_by": deployedBy,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&model.WorkflowMetadata{}).
			Where("workflow_id = ?", version.WorkflowID).
			Update("version", version.Version).Error
	})
	if err != nil {
		return nil, err
	}

	return l.Get(id)
}

// Delete removes a version. The active version is protected.
func (l *VersionLogic) Delete(id string) error {
	version, err := l.Get(id)
	if err != nil {
		return err
	}
	if version.IsActive {
		return ErrActiveVersionDelete
	}
	return l.db.Delete(version).Error
}

// Rollback restores the workflow definition to an earlier commit and records
// the restored content as a new hotfix version.
func (l *VersionLogic) Rollback(req *types.RollbackRequest) (*model.WorkflowVersion, error) {
	var meta model.WorkflowMetadata
	if err := l.db.First(&meta, "workflow_id = ?", req.WorkflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}

	content, err := l.store.Rollback(req.WorkflowID, req.Hash)
	if err != nil {
		return nil, err
	}

	versionName := req.Version
	if versionName == "" {
		short := req.Hash
		if len(short) > 7 {
			short = short[:7]
		}
		versionName = fmt.Sprintf("rollback-%s-%d", short, time.Now().Unix())
	}

	version, err := l.Create(&types.CreateVersionRequest{
		WorkflowID: req.WorkflowID,
		Version:    versionName,
		Definition: content,
		Changelog:  fmt.Sprintf("rollback to %s", req.Hash),
		ChangeType: model.ChangeTypeHotfix,
		Author:     req.DeployedBy,
	})
	if err != nil {
		return nil, err
	}
	return l.Activate(version.ID, req.DeployedBy)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	if s == "" {
		return "update workflow definition"
	}
	return s
}
