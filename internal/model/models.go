package model

import (
	"time"

	"gorm.io/datatypes"
)

// User is an account row. Guest accounts are minted by the guest login
// flow with a generated uid and a default nickname.
type User struct {
	UID       string `gorm:"primaryKey;size:64"`
	Nickname  string `gorm:"size:64"`
	Guest     bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaderboardEntry is the per-player rating row maintained by finished
// matches. Rating moves by Elo; Wins/Losses are plain counters.
type LeaderboardEntry struct {
	UID       string `gorm:"primaryKey;size:64"`
	Nickname  string `gorm:"size:64"`
	Rating    int    `gorm:"default:1000"`
	Wins      int    `gorm:"default:0"`
	Losses    int    `gorm:"default:0"`
	UpdatedAt time.Time
}

// MatchRecord archives one finished match. MatchID is the shared game
// document id; its uniqueness is what makes result reporting idempotent.
type MatchRecord struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	MatchID      string `gorm:"unique;size:64;not null"`
	Mode         string `gorm:"size:16"`
	WinnerUID    string `gorm:"size:64"`
	LoserUID     string `gorm:"size:64"`
	TargetPoints int
	HandCount    int
	PlayersJSON  datatypes.JSON `gorm:"type:jsonb"`
	ScoresJSON   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time
}
