package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrGameNotFinished = errors.New("only finished games can be archived")

type HistoryRepository interface {
	Save(ctx context.Context, game *entity.Game) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Game, error)
}

type gameRecord struct {
	ID         uint   `gorm:"primaryKey"`
	GameID     string `gorm:"uniqueIndex;not null"`
	Type       string `gorm:"not null"`
	Status     string `gorm:"not null"`
	Winner     string
	PlayerX    string `gorm:"index"`
	PlayerO    string `gorm:"index"`
	Board      string `gorm:"type:text;not null"`
	Moves      string `gorm:"type:text;not null"`
	FinishedAt time.Time
}

func (gameRecord) TableName() string {
	return "game_history"
}

type dbHistory struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &dbHistory{
		db: db,
	}
}

// Init creates the history table.
func Init(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&gameRecord{}); err != nil {
		return fmt.Errorf("can't migrate game history: %w", err)
	}

	return nil
}

// Save archives a finished game. Archiving the same game twice keeps the first record.
func (that *dbHistory) Save(ctx context.Context, game *entity.Game) error {
	if !game.IsFinished() {
		return fmt.Errorf("%w: game %s is %s", ErrGameNotFinished, game.ID, game.Phase)
	}

	record, err := newGameRecord(game)
	if err != nil {
		return err
	}

	err = that.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "game_id"}}, DoNothing: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to save game history: %w", err)
	}

	return nil
}

// ListByPlayer returns the newest finished games the player took part in.
func (that *dbHistory) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Game, error) {
	var records []gameRecord

	err := that.db.WithContext(ctx).
		Where("player_x = ? OR player_o = ?", playerID, playerID).
		Order("finished_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list game history: %w", err)
	}

	games := make([]*entity.Game, 0, len(records))
	for i := range records {
		game, err := records[i].toEntity()
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	return games, nil
}

func newGameRecord(game *entity.Game) (*gameRecord, error) {
	board, err := json.Marshal(game.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}

	moves, err := json.Marshal(game.Moves)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moves: %w", err)
	}

	record := &gameRecord{
		GameID:     game.ID,
		Type:       game.Type,
		Status:     string(game.Outcome.Status),
		Winner:     string(game.Outcome.Winner),
		Board:      string(board),
		Moves:      string(moves),
		FinishedAt: time.Now().UTC(),
	}

	if player := game.PlayerByMark(entity.PlayerX); player != nil {
		record.PlayerX = player.ID
	}
	if player := game.PlayerByMark(entity.PlayerO); player != nil {
		record.PlayerO = player.ID
	}

	return record, nil
}

func (that *gameRecord) toEntity() (*entity.Game, error) {
	game := &entity.Game{
		ID:      that.GameID,
		Type:    that.Type,
		Phase:   entity.PhaseGameOver,
		Outcome: entity.Outcome{Status: entity.OutcomeStatus(that.Status), Winner: entity.Mark(that.Winner)},
	}

	if err := json.Unmarshal([]byte(that.Board), &game.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	if err := json.Unmarshal([]byte(that.Moves), &game.Moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves: %w", err)
	}

	if that.PlayerX != "" {
		game.Players = append(game.Players, &entity.Player{ID: that.PlayerX, Mark: entity.PlayerX})
	}
	if that.PlayerO != "" {
		game.Players = append(game.Players, &entity.Player{ID: that.PlayerO, Mark: entity.PlayerO})
	}

	return game, nil
}
