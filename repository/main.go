package repository

import (
	"github.com/tnqbao/gau-observability/infra"
	"gorm.io/gorm"
)

type Repository struct {
	MetricRepo     *MetricRepository
	AggregateRepo  *AggregateRepository
	AlertRepo      *AlertRepository
	TriggerRepo    *AlertTriggerRepository
	AnomalyRepo    *AnomalyRepository
	PredictionRepo *PredictionRepository
	DashboardRepo  *DashboardRepository
	ExportRepo     *ExportRepository
	ExecutionRepo  *ExportExecutionRepository
}

func InitRepository(infra *infra.Infra) *Repository {
	return NewRepository(infra.Postgres.DB)
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		MetricRepo:     NewMetricRepository(db),
		AggregateRepo:  NewAggregateRepository(db),
		AlertRepo:      NewAlertRepository(db),
		TriggerRepo:    NewAlertTriggerRepository(db),
		AnomalyRepo:    NewAnomalyRepository(db),
		PredictionRepo: NewPredictionRepository(db),
		DashboardRepo:  NewDashboardRepository(db),
		ExportRepo:     NewExportRepository(db),
		ExecutionRepo:  NewExportExecutionRepository(db),
	}
}
