package session

import (
	"encoding/json"
	"log"
)

func (h *GameHandler) registerRoomHandlers() {
	h.roomRouter[cmdStartGame] = handleStartGame
	h.roomRouter[cmdRestartGame] = handleRestartGame
	h.roomRouter[cmdFlipCard] = handleFlipCard
	h.roomRouter[cmdLeaveRoom] = handleLeaveRoom
	// A lista de salas continua disponível para quem está dentro de uma.
	h.roomRouter[cmdRequestRoomList] = handleRequestRoomList
}

type flipCardPayload struct {
	RoomID string `json:"roomId"`
	CardID int    `json:"cardId"`
}

type roomScopedPayload struct {
	RoomID string `json:"roomId"`
}

// roomFor resolve a sala da sessão e valida o roomId do payload quando o
// cliente mandou um. Pedido para a sala errada é descartado.
func roomFor(session *PlayerSession, roomID string) *GameRoom {
	room := session.Room()
	if room == nil {
		return nil
	}
	if roomID != "" && roomID != room.ID {
		log.Printf("[Room] %s: request for %s but session is in %s", session.ID, roomID, room.ID)
		return nil
	}
	return room
}

// handleStartGame repassa o pedido de início ao ator da sala. A checagem de
// host acontece lá dentro, com o estado sob exclusão.
func handleStartGame(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req roomScopedPayload
	json.Unmarshal(payload, &req)
	if room := roomFor(session, req.RoomID); room != nil {
		room.Forward(startRequest{session: session})
	}
}

func handleRestartGame(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req roomScopedPayload
	json.Unmarshal(payload, &req)
	if room := roomFor(session, req.RoomID); room != nil {
		room.Forward(restartRequest{session: session})
	}
}

// handleFlipCard encaminha o flip. A validação inteira (vez, face da carta,
// limite de duas abertas) mora no resolvedor, dentro do ator.
func handleFlipCard(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req flipCardPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("[Room] %s: bad flipCard payload: %v", session.ID, err)
		return
	}
	if room := roomFor(session, req.RoomID); room != nil {
		room.Forward(flipRequest{session: session, cardID: req.CardID})
	}
}

func handleLeaveRoom(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req roomScopedPayload
	json.Unmarshal(payload, &req)
	if room := roomFor(session, req.RoomID); room != nil {
		room.Forward(leaveRequest{session: session})
	}
}
