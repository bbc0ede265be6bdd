package engine

import (
	"context"

	"github.com/tnqbao/gau-observability/config"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

// Engine owns the six analytics components. It is constructed once at startup
// and passed by reference; lifecycle is explicit via Start and Stop.
type Engine struct {
	Query      *QueryEngine
	Aggregator *Aggregator
	Evaluator  *AlertEvaluator
	Anomaly    *AnomalyDetector
	Predictor  *Predictor
	Connector  *BIConnector

	logger *infra.LoggerClient
}

func InitEngine(cfg *config.Config, inf *infra.Infra, repo *repository.Repository) (*Engine, error) {
	aggregator, err := NewAggregator(repo, inf.Logger, cfg.EnvConfig.Aggregator.Windows, cfg.EnvConfig.Aggregator.Interval)
	if err != nil {
		return nil, err
	}

	queryEngine := NewQueryEngine(repo, inf.Redis, inf.Logger, cfg.EnvConfig.Query.CacheEnabled, cfg.EnvConfig.Query.CacheTTL)
	notifier := NewNotifier(inf.Logger, inf.Produce.EmailService)

	return &Engine{
		Query:      queryEngine,
		Aggregator: aggregator,
		Evaluator:  NewAlertEvaluator(NewRepositoryAlertStore(repo), inf.Logger, notifier, cfg.EnvConfig.Evaluator.Interval),
		Anomaly: NewAnomalyDetector(
			repo,
			inf.Logger,
			cfg.EnvConfig.Anomaly.Interval,
			cfg.EnvConfig.Anomaly.Lookback,
			cfg.EnvConfig.Anomaly.StddevThreshold,
			cfg.EnvConfig.Anomaly.MinDataPoints,
		),
		Predictor: NewPredictor(
			repo,
			inf.Logger,
			cfg.EnvConfig.Predictor.Method,
			cfg.EnvConfig.Predictor.ForecastHorizon,
			cfg.EnvConfig.Predictor.HistoricalWindow,
		),
		Connector: NewBIConnector(repo, inf.Logger, queryEngine, inf.Minio, cfg.EnvConfig.Export.PollInterval, cfg.EnvConfig.Export.LocalDir),
		logger:    inf.Logger,
	}, nil
}

// Start launches every periodic component. The query engine and predictor are
// request-driven and have no loop of their own.
func (e *Engine) Start(ctx context.Context) {
	e.logger.InfoWithContextf(ctx, "[Engine] Starting analytics components")
	e.Aggregator.Start(ctx)
	e.Evaluator.Start(ctx)
	e.Anomaly.Start(ctx)
	e.Connector.Start(ctx)
}

// Stop cancels the pending timers. In-flight runs are allowed to finish.
func (e *Engine) Stop() {
	e.Aggregator.Stop()
	e.Evaluator.Stop()
	e.Anomaly.Stop()
	e.Connector.Stop()
}
