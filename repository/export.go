package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) Create(export *entity.BIExport) error {
	return r.db.Create(export).Error
}

func (r *ExportRepository) FindByID(id uuid.UUID) (*entity.BIExport, error) {
	var export entity.BIExport
	err := r.db.Where("id = ?", id).First(&export).Error
	if err != nil {
		return nil, err
	}
	return &export, nil
}

func (r *ExportRepository) List() ([]entity.BIExport, error) {
	var exports []entity.BIExport
	err := r.db.Order("created_at DESC").Find(&exports).Error
	if err != nil {
		return nil, err
	}
	return exports, nil
}

// ListDue returns active scheduled jobs whose next run is unset or in the past.
func (r *ExportRepository) ListDue(now time.Time) ([]entity.BIExport, error) {
	var exports []entity.BIExport
	err := r.db.
		Where("status = ? AND export_type = ?", entity.ExportStatusActive, entity.ExportTypeScheduled).
		Where("next_run_at IS NULL OR next_run_at <= ?", now).
		Find(&exports).Error
	if err != nil {
		return nil, err
	}
	return exports, nil
}

func (r *ExportRepository) Update(export *entity.BIExport) error {
	return r.db.Save(export).Error
}

func (r *ExportRepository) SetNextRun(id uuid.UUID, at time.Time) error {
	return r.db.Model(&entity.BIExport{}).Where("id = ?", id).Update("next_run_at", at).Error
}

func (r *ExportRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ExportExecution{}, "export_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.BIExport{}, "id = ?", id).Error
	})
}

type ExportExecutionRepository struct {
	db *gorm.DB
}

func NewExportExecutionRepository(db *gorm.DB) *ExportExecutionRepository {
	return &ExportExecutionRepository{db: db}
}

func (r *ExportExecutionRepository) Create(execution *entity.ExportExecution) error {
	return r.db.Create(execution).Error
}

func (r *ExportExecutionRepository) Update(execution *entity.ExportExecution) error {
	return r.db.Save(execution).Error
}

func (r *ExportExecutionRepository) ListByExportID(exportID uuid.UUID, limit int) ([]entity.ExportExecution, error) {
	if limit <= 0 {
		limit = 50
	}
	var executions []entity.ExportExecution
	err := r.db.
		Where("export_id = ?", exportID).
		Order("started_at DESC").
		Limit(limit).
		Find(&executions).Error
	if err != nil {
		return nil, err
	}
	return executions, nil
}
