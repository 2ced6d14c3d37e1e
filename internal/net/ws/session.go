// Package ws runs one websocket session per connected player: the read loop,
// message routing, and the disconnect drain. Writes go through the hub's per
// connection queue, never directly from here.
package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rift-arena/server/internal/game"
	"rift-arena/server/internal/hub"
	"rift-arena/server/internal/matchmaking"
	"rift-arena/server/internal/proto"
)

const maxFrameSize = 1 << 20 // 1MB

// Deps are the shared services a session routes into.
type Deps struct {
	Hub         *hub.Hub
	Queue       *matchmaking.Queue
	Matches     *game.Manager
	Logger      *zap.SugaredLogger
	IdleTimeout time.Duration
}

// Serve owns a connection from registration to teardown. It blocks until
// the peer goes away; the caller runs it on the connection's goroutine.
func Serve(deps Deps, conn *websocket.Conn, name string) {
	playerID := uuid.NewString()
	logger := deps.Logger.With("player", playerID)

	registered := deps.Hub.Register(playerID, conn)
	defer func() {
		deps.Queue.Dequeue(playerID)
		deps.Matches.HandleDisconnect(playerID)
		deps.Hub.Unregister(playerID, registered)
		logger.Infow("connection closed")
	}()

	// Tell the client its assigned identity before anything else.
	sendEnvelope(deps, playerID, proto.Envelope{
		Type:      proto.TypePlayerConnect,
		Timestamp: time.Now().UnixMilli(),
		PlayerID:  playerID,
	})

	conn.SetReadLimit(maxFrameSize)
	resetDeadline := func() { _ = conn.SetReadDeadline(time.Now().Add(deps.IdleTimeout)) }
	resetDeadline()
	conn.SetPongHandler(func(string) error { resetDeadline(); return nil })

	logger.Infow("player connected", "name", name)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		resetDeadline()

		env, err := proto.Decode(payload)
		if err != nil {
			// Protocol errors are logged and dropped without disconnecting.
			logger.Debugw("discarding malformed frame", "err", err)
			continue
		}

		switch env.Type {
		case proto.TypeFindMatch:
			deps.Queue.Enqueue(playerID, name)

		case proto.TypePlayerInput:
			msg, err := proto.DecodeAs[proto.PlayerInput](env)
			if err != nil {
				logger.Debugw("discarding malformed input", "err", err)
				continue
			}
			if m, ok := deps.Matches.MatchFor(playerID); ok {
				m.StageInput(playerID, msg.Input)
			}

		case proto.TypeWeaponGenerate:
			msg, err := proto.DecodeAs[proto.WeaponGenerate](env)
			if err != nil {
				logger.Debugw("discarding malformed weapon request", "err", err)
				continue
			}
			if m, ok := deps.Matches.MatchFor(playerID); ok {
				m.StageWeaponGenerate(playerID, msg.Prompt)
			} else {
				sendReject(deps, playerID, proto.TypeWeaponGenerate, game.RejectUnknownMatch)
			}

		case proto.TypeWeaponUse:
			msg, err := proto.DecodeAs[proto.WeaponUse](env)
			if err != nil {
				logger.Debugw("discarding malformed weapon use", "err", err)
				continue
			}
			if m, ok := deps.Matches.MatchFor(playerID); ok {
				m.StageWeaponUse(playerID, msg)
			} else {
				sendReject(deps, playerID, proto.TypeWeaponUse, game.RejectUnknownMatch)
			}

		case proto.TypeMasterPrompt:
			msg, err := proto.DecodeAs[proto.MasterPrompt](env)
			if err != nil {
				logger.Debugw("discarding malformed master prompt", "err", err)
				continue
			}
			if m, ok := deps.Matches.MatchFor(playerID); ok {
				m.StageMasterPrompt(playerID, msg.Prompt)
			} else {
				sendReject(deps, playerID, proto.TypeMasterPrompt, game.RejectUnknownMatch)
			}

		case proto.TypePlayerDisconnect:
			return

		default:
			logger.Debugw("unknown message type", "type", env.Type)
		}
	}
}

func sendReject(deps Deps, playerID, request, reason string) {
	if frame, err := proto.Encode(proto.TypeReject, proto.Reject{Request: request, Reason: reason}, time.Now()); err == nil {
		deps.Hub.Send(playerID, frame)
	}
}

func sendEnvelope(deps Deps, playerID string, env proto.Envelope) {
	if frame, err := json.Marshal(env); err == nil {
		deps.Hub.Send(playerID, frame)
	}
}
