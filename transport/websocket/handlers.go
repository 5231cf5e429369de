package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	actionConnect    = "connect"
	actionNewGame    = "game:new"
	actionJoinGame   = "game:join"
	actionMove       = "game:move"
	actionMoves      = "game:moves"
	actionGameUpdate = "game:update"
)

var (
	errUnknownAction   = errors.New("unknown action")
	errPlayerRequired  = errors.New("player is required")
	errGameRequired    = errors.New("game is required")
	errCellRequired    = errors.New("cell is required")
	errInternal        = errors.New("internal error")
	errMalformedFields = errors.New("malformed payload")
	errNotConnected    = errors.New("player is not connected on this socket")
)

// Payload carries the fields of every action; unused ones are omitted.
type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Moves  []entity.Move  `json:"moves,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := that.decodePayload(msg, conn)
	if err != nil {
		return err
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		that.sendError(conn, msg.Action, err)
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	that.register(player.ID, conn)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		switch {
		case err == nil:
			payloadResp.Game = publicGame(game)
		case errors.Is(err, apperror.ErrGameNotFound):
			log.Info("player's game has expired", "playerID", player.ID, "gameID", player.GameID)
		default:
			log.Error("failed to get the game", "playerID", player.ID, "error", err)
		}
	}

	if err = conn.send(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := that.decodePayload(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		that.sendError(conn, msg.Action, errPlayerRequired)
		return nil
	}

	if payloadReq.Game == nil {
		that.sendError(conn, msg.Action, errGameRequired)
		return nil
	}

	if !that.checkBound(conn, msg.Action, payloadReq.Player.ID) {
		return nil
	}

	game, err := that.gameUseCase.CreateGame(ctx, payloadReq.Player.ID, payloadReq.Game.Type)
	if err != nil {
		that.sendError(conn, msg.Action, err)
		return fmt.Errorf("failed to create game: %w", err)
	}

	payloadResp := Payload{
		Player: game.PlayerByID(payloadReq.Player.ID),
		Game:   publicGame(game),
	}

	if err = conn.send(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("game is ready", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, err := that.decodePayload(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		that.sendError(conn, msg.Action, errPlayerRequired)
		return nil
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		that.sendError(conn, msg.Action, errGameRequired)
		return nil
	}

	if !that.checkBound(conn, msg.Action, payloadReq.Player.ID) {
		return nil
	}

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		that.sendError(conn, msg.Action, err)
		return fmt.Errorf("failed to join game %s: %w", payloadReq.Game.ID, err)
	}

	payloadResp := Payload{
		Player: game.PlayerByID(payloadReq.Player.ID),
		Game:   publicGame(game),
	}

	if err = conn.send(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	that.broadcast(game)

	log.Info("player joined game", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

func (that *Server) handleMove(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePayload(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		that.sendError(conn, msg.Action, errPlayerRequired)
		return nil
	}

	if payloadReq.Cell == nil {
		that.sendError(conn, msg.Action, errCellRequired)
		return nil
	}

	if !that.checkBound(conn, msg.Action, payloadReq.Player.ID) {
		return nil
	}

	game, err := that.gameUseCase.MakeMove(ctx, payloadReq.Player.ID, *payloadReq.Cell)
	if err != nil {
		that.sendError(conn, msg.Action, err)
		return nil
	}

	that.broadcast(game)

	return nil
}

func (that *Server) handleLegalMoves(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePayload(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		that.sendError(conn, msg.Action, errPlayerRequired)
		return nil
	}

	if !that.checkBound(conn, msg.Action, payloadReq.Player.ID) {
		return nil
	}

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, payloadReq.Player.ID)
	if err != nil {
		that.sendError(conn, msg.Action, err)
		return nil
	}

	moves, err := that.gameUseCase.LegalMoves(ctx, game.ID)
	if err != nil {
		that.sendError(conn, msg.Action, err)
		return fmt.Errorf("failed to list moves: %w", err)
	}

	if err = conn.send(msg.Action, Payload{Game: publicGame(game), Moves: moves}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

// broadcast pushes the game snapshot to every connected human seat.
func (that *Server) broadcast(game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.HumanPlayers() {
		conn, ok := that.lookup(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   publicGame(game),
		}

		if err := conn.send(actionGameUpdate, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

// checkBound answers errNotConnected unless playerID was bound to conn by a connect action.
func (that *Server) checkBound(conn *connection, action, playerID string) bool {
	if bound, ok := that.lookup(playerID); ok && bound == conn {
		return true
	}

	that.logger.Warn("action for a player not bound to the socket", "action", action, "playerID", playerID)
	that.sendError(conn, action, errNotConnected)

	return false
}

func (that *Server) decodePayload(msg *Message, conn *connection) (*Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(conn, msg.Action, errMalformedFields)
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

func (that *Server) sendError(conn *connection, action string, err error) {
	if sendErr := conn.send(action, Payload{Error: clientError(err)}); sendErr != nil {
		that.logger.Error("failed to send error response", "action", action, "error", sendErr)
	}
}

// clientError keeps storage details out of client messages.
func clientError(err error) string {
	for _, known := range []error{tictactoe.ErrCellOccupied, tictactoe.ErrCellOutOfRange} {
		if errors.Is(err, known) {
			return fmt.Sprintf("%v: %v", apperror.ErrInvalidMove, known)
		}
	}

	for _, known := range []error{
		apperror.ErrInvalidMove,
		apperror.ErrGameFinished,
		apperror.ErrGameIsNotStarted,
		apperror.ErrNotYourTurn,
		apperror.ErrNotInGame,
		apperror.ErrGameFull,
		apperror.ErrAlreadyInGame,
		apperror.ErrGameNotFound,
		apperror.ErrPlayerNotFound,
		apperror.ErrUnknownGameType,
		errUnknownAction,
		errPlayerRequired,
		errGameRequired,
		errCellRequired,
		errNotConnected,
		errMalformedFields,
		errMalformedMessage,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return errInternal.Error()
}

// publicGame hides seat details, each client learns its own seat from payload.player.
func publicGame(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	return &masked
}
