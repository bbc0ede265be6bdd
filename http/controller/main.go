package controller

import (
	"github.com/tnqbao/gau-observability/config"
	"github.com/tnqbao/gau-observability/engine"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Engine     *engine.Engine
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, eng *engine.Engine) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if eng == nil {
		panic("Failed to initialize Engine")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Engine:     eng,
	}
}
