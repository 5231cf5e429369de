package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type historyRepo interface {
	Save(ctx context.Context, game *entity.Game) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Game, error)
}

type botPlayer interface {
	ChooseMove(game *entity.Game) (entity.Move, error)
}

// GameManager owns seats, turn order and phases of every game. Moves on one game are
// applied and persisted one at a time. Seat changes of one player are serialized too;
// a player lock is always taken before a game lock.
type GameManager struct {
	logger *slog.Logger

	playerRepo  playerRepo
	gameRepo    gameRepo
	historyRepo historyRepo
	bot         botPlayer
	metrics     *metrics.Metrics

	playerLocks *keyedLocks
	gameLocks   *keyedLocks
}

// NewGameManager wires the orchestrator. historyRepo and metrics may be nil.
func NewGameManager(
	logger *slog.Logger,
	playerRepo playerRepo,
	gameRepo gameRepo,
	historyRepo historyRepo,
	bot botPlayer,
	meter *metrics.Metrics,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo:  playerRepo,
		gameRepo:    gameRepo,
		historyRepo: historyRepo,
		bot:         bot,
		metrics:     meter,

		playerLocks: newKeyedLocks(),
		gameLocks:   newKeyedLocks(),
	}
}

// GetOrCreatePlayer returns the stored player, creating it when id is empty or unknown.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = uuid.NewString()
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err == nil {
		return player, nil
	}

	if !errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	player = &entity.Player{ID: id}
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// CreateGame returns the player's unfinished game, or opens a new one of gameType.
func (that *GameManager) CreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	if !entity.IsKnownType(gameType) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}

	unlock := that.playerLocks.lock(playerID)
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	existingGame, err := that.unfinishedGame(ctx, player)
	if err != nil {
		return nil, err
	}

	if existingGame != nil {
		return existingGame, nil
	}

	game := entity.NewGame(uuid.NewString(), gameType)

	player.GameID = game.ID
	player.Mark = entity.PlayerX
	game.Players = []*entity.Player{player}

	switch gameType {
	case entity.LocalType:
		game.Start()
	case entity.WithBotType:
		if err = that.addBotToGame(game, player); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.metrics.GameCreated(gameType)
	that.logger.Info("game created", "gameID", game.ID, "type", gameType, "playerID", player.ID)

	return game, nil
}

// JoinGame seats the player as O in a private game waiting for an opponent.
// A player seated in another unfinished game gets ErrAlreadyInGame.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlockPlayer := that.playerLocks.lock(playerID)
	defer unlockPlayer()

	unlockGame := that.gameLocks.lock(gameID)
	defer unlockGame()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if game.PlayerByID(player.ID) != nil {
		return game, nil
	}

	if player.GameID != gameID {
		currentGame, err := that.unfinishedGame(ctx, player)
		if err != nil {
			return nil, err
		}

		if currentGame != nil {
			return nil, fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, currentGame.ID)
		}
	}

	if game.IsFinished() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameFinished, gameID)
	}

	if game.Type != entity.PrivateType || len(game.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameFull, gameID)
	}

	player.GameID = game.ID
	player.Mark = entity.PlayerO
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	game.Players = append(game.Players, player)
	game.Start()
	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("player joined game", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

// MakeMove marks cell for the player and, in bot games, lets the bot answer.
func (that *GameManager) MakeMove(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "playerID", playerID, "cell", cell)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNotInGame
	}

	unlock := that.gameLocks.lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	mark := player.Mark
	if game.IsLocal() {
		mark = game.CurrentPlayer
	}

	if err = that.applyMove(game, entity.Move{Cell: cell, Player: mark}); err != nil {
		that.metrics.MoveRejected(err)
		log.Debug("move rejected", "error", err)

		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if game.IsWithBot() && game.IsPlaying() {
		if err = that.makeBotMove(game); err != nil {
			return nil, err
		}
	}

	// players are released before the finished game is stored
	if game.IsFinished() {
		that.releasePlayers(ctx, game)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if game.IsFinished() {
		that.finishGame(ctx, game)
	}

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNotInGame
	}

	return that.getGameByID(ctx, player.GameID)
}

// LegalMoves lists the moves open to the player whose turn it is; none once the game is over.
func (that *GameManager) LegalMoves(ctx context.Context, gameID string) ([]entity.Move, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsPlaying() {
		return []entity.Move{}, nil
	}

	return tictactoe.EnumerateLegalMoves(game.Board, game.CurrentPlayer), nil
}

func (that *GameManager) History(ctx context.Context, playerID string, limit int) ([]*entity.Game, error) {
	if that.historyRepo == nil {
		return nil, apperror.ErrHistoryNotEnabled
	}

	games, err := that.historyRepo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return games, nil
}

// applyMove validates move against the game and applies it. On error the game is unchanged.
func (that *GameManager) applyMove(game *entity.Game, move entity.Move) error {
	if err := game.ConfirmPlaying(); err != nil {
		return err
	}

	if move.Player != game.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}

	if err := tictactoe.ValidateMove(game.Board, move.Cell); err != nil {
		return err
	}

	game.Board[move.Cell] = move.Player
	game.Moves = append(game.Moves, move)

	outcome := tictactoe.EvaluateOutcome(game.Board, move.Player)
	if outcome.IsOver() {
		game.Finish(outcome)
	} else {
		game.Outcome = outcome
		game.PassTurn()
	}

	that.metrics.MoveApplied()

	return nil
}

func (that *GameManager) addBotToGame(game *entity.Game, player *entity.Player) error {
	bot := entity.NewBotPlayer(game.ID)

	player.Mark, bot.Mark = game.GetRandomMarks()
	game.Players = append(game.Players, bot)
	game.Start()

	if bot.Mark == entity.PlayerX {
		return that.makeBotMove(game)
	}

	return nil
}

func (that *GameManager) makeBotMove(game *entity.Game) error {
	move, err := that.bot.ChooseMove(game)
	if err != nil {
		return fmt.Errorf("bot failed to choose move: %w", err)
	}

	if err = that.applyMove(game, move); err != nil {
		return fmt.Errorf("bot failed to make move: %w", err)
	}

	return nil
}

// finishGame records the result. With history enabled the game moves from Redis to the
// archive; otherwise it stays in Redis until its TTL.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finishGame", "gameID", game.ID)

	that.metrics.GameFinished(game.Outcome)

	if that.historyRepo != nil {
		if err := that.historyRepo.Save(ctx, game); err != nil {
			log.Error("failed to archive game", "error", err)
		} else if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
			log.Error("failed to delete archived game", "error", err)
		}
	}

	log.Info("game finished", "outcome", game.Outcome.Status, "winner", game.Outcome.Winner)
}

func (that *GameManager) releasePlayers(ctx context.Context, game *entity.Game) {
	for _, player := range game.HumanPlayers() {
		released := *player
		released.Release()

		if err := that.playerRepo.CreateOrUpdate(ctx, &released); err != nil {
			that.logger.Error("failed to release player", "gameID", game.ID, "playerID", player.ID, "error", err)
		}
	}
}

// unfinishedGame returns the game the player is seated in, or nil when there is none
// or it is over or expired.
func (that *GameManager) unfinishedGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	if player.GameID == "" {
		return nil, nil
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get current game: %w", err)
	case game.IsFinished():
		return nil, nil
	}

	return game, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// keyedLocks hands out one mutex per key and drops it once nobody holds or waits for it.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*keyedLock)}
}

func (that *keyedLocks) lock(key string) func() {
	that.mu.Lock()
	l, ok := that.locks[key]
	if !ok {
		l = &keyedLock{}
		that.locks[key] = l
	}
	l.refs++
	that.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		that.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}
