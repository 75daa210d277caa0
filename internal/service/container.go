package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/robklaiss/truco/internal/config"
	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/service/auth"
	"github.com/robklaiss/truco/internal/service/bot"
	"github.com/robklaiss/truco/internal/service/leaderboard"
	"github.com/robklaiss/truco/internal/service/truco"
	"github.com/robklaiss/truco/internal/service/user"
	"github.com/robklaiss/truco/internal/store"
)

type Container struct {
	Store       store.Store
	Truco       *truco.Service
	Bot         *bot.Service
	Leaderboard *leaderboard.Service
	Auth        *auth.Service
	User        *user.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client, catalog *game.Catalog) *Container {
	gameCfg := config.GlobalConfig.Game
	engine := game.NewEngine(catalog)
	st := store.NewRedis(rdb)

	trucoSvc := truco.NewService(st, engine, gameCfg.DefaultTargetPoints, gameCfg.DefaultTargetWins)
	lbSvc := leaderboard.NewService(db)
	trucoSvc.SetReporter(reporterAdapter{lb: lbSvc})

	c := &Container{
		Store:       st,
		Truco:       trucoSvc,
		Leaderboard: lbSvc,
		Auth:        auth.NewService(db),
		User:        user.NewService(db),
	}
	if gameCfg.BotEnabled {
		c.Bot = bot.NewService(st, engine, trucoSvc)
		trucoSvc.SetBotNotifier(c.Bot)
	}
	return c
}

func (c *Container) Start(ctx context.Context) error {
	if c.Bot != nil {
		return c.Bot.Start(ctx)
	}
	return nil
}

// reporterAdapter bridges finished matches into the leaderboard without a
// package dependency from truco to leaderboard.
type reporterAdapter struct {
	lb *leaderboard.Service
}

func (r reporterAdapter) ReportMatch(ctx context.Context, res truco.ReportedMatch) error {
	return r.lb.ReportMatch(ctx, leaderboard.MatchResult{
		MatchID:      res.MatchID,
		Mode:         res.Mode,
		WinnerUID:    res.WinnerUID,
		LoserUID:     res.LoserUID,
		TargetPoints: res.TargetPoints,
		HandCount:    res.HandCount,
		Players:      res.Players,
		PointsByUID:  res.PointsByUID,
	})
}
