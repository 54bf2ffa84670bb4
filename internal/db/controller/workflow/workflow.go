// Package workflow provides CRUD operations for committed workflows.
package workflow

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/db/models"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves all workflows, newest first.
func List(db *gorm.DB) ([]models.Workflow, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var workflows []models.Workflow
	result := db.Order("id DESC").Find(&workflows)
	if result.Error != nil {
		return nil, result.Error
	}

	return workflows, nil
}

// Get retrieves a workflow by its ID.
func Get(db *gorm.DB, id int64) (*models.Workflow, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var workflow models.Workflow
	result := db.First(&workflow, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, result.Error
	}

	return &workflow, nil
}

// Create inserts a new workflow.
func Create(db *gorm.DB, workflow *models.Workflow) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(workflow).Error
}

// Save writes back an existing workflow.
func Save(db *gorm.DB, workflow *models.Workflow) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Save(workflow).Error
}

// Delete removes a workflow by ID.
func Delete(db *gorm.DB, id int64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Workflow{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWorkflowNotFound
	}

	return nil
}

// TitleRow pairs a workflow identity with its title, for uniqueness
// checks.
type TitleRow struct {
	ID    int64
	Title string
}

// Titles retrieves the identity and title of every workflow.
func Titles(db *gorm.DB) ([]TitleRow, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []TitleRow
	result := db.Model(&models.Workflow{}).Select("id", "title").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// RecordRun updates a workflow's execution counters after a run. The
// success rate is the percentage of successful runs over all runs.
func RecordRun(db *gorm.DB, id int64, success bool) (*models.Workflow, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	workflow, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	workflow.Executions++
	if success {
		workflow.SuccessCount++
	}
	workflow.SuccessRate = float64(workflow.SuccessCount) / float64(workflow.Executions) * 100

	if err := Save(db, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}
