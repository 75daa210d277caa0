package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/model"
	"github.com/robklaiss/truco/pkg/logger"
)

// Elo parameters. Both players are treated as evenly matched, so a result
// always moves eloK/2 points.
const (
	eloK          = 32
	eloExpected   = 0.5
	initialRating = 1000
)

const (
	defaultTopSize = 20
	maxTopSize     = 100
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// MatchResult is what a finished match reports for archival and rating.
type MatchResult struct {
	MatchID      string
	Mode         game.MatchMode
	WinnerUID    string
	LoserUID     string
	TargetPoints int
	HandCount    int
	Players      []game.Player
	PointsByUID  map[string]int
}

// ReportMatch archives the result and moves ratings. The MatchRecord's
// unique match id makes replays no-ops, so callers can report on every
// observation of a finished match without double counting. Matches against
// the bot are archived but never rated; the table only ranks results
// between real opponents.
func (s *Service) ReportMatch(ctx context.Context, res MatchResult) error {
	if res.MatchID == "" || res.WinnerUID == "" {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.MatchRecord
		err := tx.Where("match_id = ?", res.MatchID).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		playersJSON, err := json.Marshal(res.Players)
		if err != nil {
			return err
		}
		scoresJSON, err := json.Marshal(res.PointsByUID)
		if err != nil {
			return err
		}
		record := model.MatchRecord{
			MatchID:      res.MatchID,
			Mode:         string(res.Mode),
			WinnerUID:    res.WinnerUID,
			LoserUID:     res.LoserUID,
			TargetPoints: res.TargetPoints,
			HandCount:    res.HandCount,
			PlayersJSON:  playersJSON,
			ScoresJSON:   scoresJSON,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		rated := res.WinnerUID != game.BotUID && res.LoserUID != "" && res.LoserUID != game.BotUID
		if rated {
			delta := int(eloK * (1 - eloExpected))
			if err := s.applyResult(tx, res.WinnerUID, nicknameOf(res.Players, res.WinnerUID), delta, true); err != nil {
				return err
			}
			if err := s.applyResult(tx, res.LoserUID, nicknameOf(res.Players, res.LoserUID), -delta, false); err != nil {
				return err
			}
		}

		logger.Log.Info("match reported",
			zap.String("matchId", res.MatchID),
			zap.String("winner", res.WinnerUID),
			zap.String("mode", string(res.Mode)))
		return nil
	})
}

func (s *Service) applyResult(tx *gorm.DB, uid, nickname string, delta int, won bool) error {
	var entry model.LeaderboardEntry
	err := tx.Where("uid = ?", uid).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		entry = model.LeaderboardEntry{
			UID:      uid,
			Nickname: nickname,
			Rating:   initialRating,
		}
	} else if err != nil {
		return err
	}

	entry.Rating += delta
	if entry.Rating < 0 {
		entry.Rating = 0
	}
	if won {
		entry.Wins++
	} else {
		entry.Losses++
	}
	if nickname != "" && nickname != uid {
		entry.Nickname = nickname
	}
	entry.UpdatedAt = time.Now()
	return tx.Save(&entry).Error
}

// Top returns the rating table, best first.
func (s *Service) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultTopSize
	}
	if limit > maxTopSize {
		limit = maxTopSize
	}
	entries := make([]model.LeaderboardEntry, 0, limit)
	err := s.db.WithContext(ctx).
		Order("rating DESC, wins DESC, uid ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Entry returns one player's row, nil when they have no rated match yet.
func (s *Service) Entry(ctx context.Context, uid string) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func nicknameOf(players []game.Player, uid string) string {
	for _, p := range players {
		if p.UID == uid {
			return p.Nickname
		}
	}
	return uid
}
