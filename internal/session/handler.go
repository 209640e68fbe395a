package session

import (
	"encoding/json"
	"log"

	"github.com/sckim-a/memoryGame/internal/network"
	"github.com/sckim-a/memoryGame/internal/session/message"
)

// Tipos de comando de entrada (cliente -> servidor).
const (
	cmdCreateRoom      = "createRoom"
	cmdJoinRoom        = "joinRoom"
	cmdStartGame       = "startGame"
	cmdRestartGame     = "restartGame"
	cmdFlipCard        = "flipCard"
	cmdLeaveRoom       = "leaveRoom"
	cmdRequestRoomList = "requestRoomList"
)

// CommandHandlerFunc define a assinatura de todas as funções que lidam com
// comandos. Elas recebem o contexto da sessão e o payload bruto da mensagem.
type CommandHandlerFunc func(h *GameHandler, session *PlayerSession, payload json.RawMessage)

// GameHandler implementa network.EventHandler. Todos os métodos On* e os
// handlers de comando rodam na goroutine do Hub; as mutações de sala são
// delegadas aos atores das salas.
type GameHandler struct {
	sessions map[*network.Client]*PlayerSession
	manager  *RoomManager
	ranking  RankingSink

	// Dois roteadores, um para cada estado do jogador: lobby e dentro de
	// uma sala.
	lobbyRouter map[string]CommandHandlerFunc
	roomRouter  map[string]CommandHandlerFunc
}

// NewGameHandler cria o handler e registra os comandos dos roteadores.
// AttachHub precisa ser chamado antes do servidor começar a escutar.
func NewGameHandler(ranking RankingSink) *GameHandler {
	h := &GameHandler{
		sessions:    make(map[*network.Client]*PlayerSession),
		ranking:     ranking,
		lobbyRouter: make(map[string]CommandHandlerFunc),
		roomRouter:  make(map[string]CommandHandlerFunc),
	}
	h.registerLobbyHandlers()
	h.registerRoomHandlers()
	return h
}

// AttachHub liga o handler ao hub para os broadcasts de escopo lobby e
// inicia o ator do diretório de salas.
func (h *GameHandler) AttachHub(broadcaster network.Broadcaster) {
	h.manager = NewRoomManager(broadcaster, h.ranking)
	go h.manager.Run()
}

// Manager expõe o diretório de salas (usado pelos testes de integração).
func (h *GameHandler) Manager() *RoomManager {
	return h.manager
}

// --- Implementação da interface network.EventHandler ---

// OnConnect cria a sessão e manda a lista de salas atual, que é a primeira
// coisa que o lobby do cliente precisa renderizar.
func (h *GameHandler) OnConnect(c *network.Client) {
	session := NewPlayerSession(c)
	h.sessions[c] = session
	log.Printf("[Session] created %s (%d online)", session.ID, len(h.sessions))

	select {
	case c.Send() <- message.RoomListUpdated(h.manager.ListRooms()):
	default:
	}
}

// OnDisconnect repassa a queda para a sala da sessão, se houver. A sala
// aplica a janela de graça; aqui só se desfaz o vínculo conexão-sessão.
func (h *GameHandler) OnDisconnect(c *network.Client) {
	session, ok := h.sessions[c]
	if !ok {
		return
	}
	if room := session.Room(); room != nil {
		room.NotifyDisconnect(session)
	}
	delete(h.sessions, c)
	log.Printf("[Session] removed %s (%d online)", session.ID, len(h.sessions))
}

// OnMessage seleciona o roteador pelo estado do jogador e despacha.
// Comando desconhecido ou fora de estado é descartado em silêncio: a
// ausência do evento esperado é o sinal de rejeição para o cliente.
func (h *GameHandler) OnMessage(c *network.Client, msg network.Message) {
	session, ok := h.sessions[c]
	if !ok {
		return
	}

	router := h.lobbyRouter
	if session.Room() != nil {
		router = h.roomRouter
	}

	handler, found := router[msg.Type]
	if !found {
		log.Printf("[Session] %s: dropping %q (wrong state or unknown)", session.ID, msg.Type)
		return
	}
	handler(h, session, msg.Payload)
}
