package logic

import (
	"errors"

	"flowpulse/internal/model"
	"flowpulse/internal/types"

	"gorm.io/gorm"
)

// TemplateLogic manages reusable workflow templates.
type TemplateLogic struct {
	db *gorm.DB
}

// NewTemplateLogic creates the template logic.
func NewTemplateLogic(db *gorm.DB) *TemplateLogic {
	return &TemplateLogic{db: db}
}

// Create stores a new template.
func (l *TemplateLogic) Create(req *types.CreateTemplateRequest) (*model.WorkflowTemplate, error) {
	tpl := &model.WorkflowTemplate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Definition:  types.JSONString(req.Definition),
	}
	if err := l.db.Create(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

// Get loads one template and counts the use.
func (l *TemplateLogic) Get(id string) (*model.WorkflowTemplate, error) {
	tpl, err := l.find(id)
	if err != nil {
		return nil, err
	}
	if err := l.db.Model(tpl).Update("use_count", gorm.Expr("use_count + 1")).Error; err != nil {
		return nil, err
	}
	tpl.UseCount++
	return tpl, nil
}

func (l *TemplateLogic) find(id string) (*model.WorkflowTemplate, error) {
	var tpl model.WorkflowTemplate
	if err := l.db.First(&tpl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// List returns filtered templates.
func (l *TemplateLogic) List(req *types.ListTemplatesRequest) ([]model.WorkflowTemplate, int64, error) {
	var templates []model.WorkflowTemplate
	var total int64

	query := l.db.Model(&model.WorkflowTemplate{})
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	query.Count(&total)

	if req.Page > 0 && req.PageSize > 0 {
		query = query.Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize)
	}

	if err := query.Order("use_count DESC, name ASC").Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// Update mutates a template. Only non-nil fields are applied.
func (l *TemplateLogic) Update(id string, req *types.UpdateTemplateRequest) (*model.WorkflowTemplate, error) {
	tpl, err := l.find(id)
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
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Definition != nil {
		updates["definition"] = types.JSONString(req.Definition)
	}
	if len(updates) == 0 {
		return tpl, nil
	}

	if err := l.db.Model(tpl).Updates(updates).Error; err != nil {
		return nil, err
	}
	return l.find(id)
}

// Delete removes a template.
func (l *TemplateLogic) Delete(id string) error {
	tpl, err := l.find(id)
	if err != nil {
		return err
	}
	return l.db.Delete(tpl).Error
}

// Rate folds one rating between 1 and 5 into the running average.
func (l *TemplateLogic) Rate(id string, rating float64) (*model.WorkflowTemplate, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	tpl, err := l.find(id)
	if err != nil {
		return nil, err
	}

	newCount := tpl.RatingCount + 1
	newRating := (tpl.Rating*float64(tpl.RatingCount) + rating) / float64(newCount)
	if err := l.db.Model(tpl).Updates(map[string]any{
		"rating":       newRating,
		"rating_count": newCount,
	}).Error; err != nil {
		return nil, err
	}
	tpl.Rating = newRating
	tpl.RatingCount = newCount
	return tpl, nil
}
