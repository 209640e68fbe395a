package session

import (
	"encoding/json"
	"log"

	"github.com/sckim-a/memoryGame/internal/game/theme"
	"github.com/sckim-a/memoryGame/internal/session/message"
)

// Limites e padrões de criação de sala. Os padrões reproduzem o jogo
// clássico: 4 jogadores, 24 pares.
const (
	defaultRoomTitle  = "Memory Game"
	defaultMaxPlayers = 4
	defaultPairCount  = 24
	maxRoomPlayers    = 8
	maxPairCount      = 100
	maxNameLength     = 20
)

func (h *GameHandler) registerLobbyHandlers() {
	h.lobbyRouter[cmdCreateRoom] = handleCreateRoom
	h.lobbyRouter[cmdJoinRoom] = handleJoinRoom
	h.lobbyRouter[cmdRequestRoomList] = handleRequestRoomList
}

type createRoomPayload struct {
	DisplayName string `json:"displayName"`
	Title       string `json:"title"`
	MaxPlayers  int    `json:"maxPlayers"`
	Theme       string `json:"theme"`
	PairCount   int    `json:"pairCount"`
}

type joinRoomPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

// handleCreateRoom cria a sala e coloca o criador dentro dela como host.
// Entrada inválida (nome vazio) é descartada: o cliente deveria ter
// validado antes de mandar.
func handleCreateRoom(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req createRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("[Lobby] %s: bad createRoom payload: %v", session.ID, err)
		return
	}
	if !validName(req.DisplayName) {
		return
	}

	cfg := RoomConfig{
		Title:      req.Title,
		Mode:       theme.Normalize(req.Theme),
		MaxPlayers: req.MaxPlayers,
		PairCount:  req.PairCount,
		Rules:      DefaultRules(),
	}
	if cfg.Title == "" {
		cfg.Title = defaultRoomTitle
	}
	if cfg.MaxPlayers < 2 || cfg.MaxPlayers > maxRoomPlayers {
		cfg.MaxPlayers = defaultMaxPlayers
	}
	if cfg.PairCount <= 0 || cfg.PairCount > maxPairCount {
		cfg.PairCount = defaultPairCount
	}
	// Tema sem conteúdo para o tamanho pedido falharia só no start; melhor
	// recusar a criação logo.
	if _, err := theme.Values(cfg.Mode, cfg.PairCount); err != nil {
		log.Printf("[Lobby] %s: createRoom rejected: %v", session.ID, err)
		return
	}

	room := h.manager.CreateRoom(cfg)
	if err := room.Join(session, req.DisplayName); err != nil {
		// Não deveria acontecer com uma sala recém-criada.
		log.Printf("[Lobby] %s: failed to join own room %s: %v", session.ID, room.ID, err)
	}
}

// handleJoinRoom entra (ou reconecta) numa sala existente. Qualquer
// rejeição — sala cheia, partida em andamento, sala inexistente — é um
// no-op silencioso, conforme a política de entrada inválida.
func handleJoinRoom(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req joinRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("[Lobby] %s: bad joinRoom payload: %v", session.ID, err)
		return
	}
	if !validName(req.DisplayName) {
		return
	}

	room := h.manager.GetRoom(req.RoomID)
	if room == nil {
		log.Printf("[Lobby] %s: joinRoom %s: %v", session.ID, req.RoomID, ErrRoomNotFound)
		return
	}
	if err := room.Join(session, req.DisplayName); err != nil {
		log.Printf("[Lobby] %s: joinRoom %s: %v", session.ID, req.RoomID, err)
	}
}

func handleRequestRoomList(h *GameHandler, session *PlayerSession, _ json.RawMessage) {
	select {
	case session.Client.Send() <- message.RoomListUpdated(h.manager.ListRooms()):
	default:
	}
}

func validName(name string) bool {
	return name != "" && len(name) <= maxNameLength*4 // margem para runas multibyte
}
