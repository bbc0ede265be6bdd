package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Create(dashboard *entity.Dashboard) error {
	return r.db.Create(dashboard).Error
}

func (r *DashboardRepository) FindByID(id uuid.UUID) (*entity.Dashboard, error) {
	var dashboard entity.Dashboard
	err := r.db.
		Preload("Panels", func(db *gorm.DB) *gorm.DB {
			return db.Order("dashboard_panels.position ASC")
		}).
		Where("id = ?", id).
		First(&dashboard).Error
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (r *DashboardRepository) List() ([]entity.Dashboard, error) {
	var dashboards []entity.Dashboard
	err := r.db.Order("created_at DESC").Find(&dashboards).Error
	if err != nil {
		return nil, err
	}
	return dashboards, nil
}

func (r *DashboardRepository) Update(dashboard *entity.Dashboard) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(dashboard).Error
}

// ReplacePanels swaps the dashboard's panel set atomically. Panels are owned
// exclusively by their dashboard.
func (r *DashboardRepository) ReplacePanels(dashboardID uuid.UUID, panels []entity.DashboardPanel) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.DashboardPanel{}, "dashboard_id = ?", dashboardID).Error; err != nil {
			return err
		}
		if len(panels) == 0 {
			return nil
		}
		return tx.Create(&panels).Error
	})
}

func (r *DashboardRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.DashboardPanel{}, "dashboard_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Dashboard{}, "id = ?", id).Error
	})
}
