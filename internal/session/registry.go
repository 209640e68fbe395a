package session

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/sckim-a/memoryGame/internal/network"
	"github.com/sckim-a/memoryGame/internal/session/message"
)

// roomCodeAlphabet gera códigos curtos digitáveis, no estilo dos códigos de
// convite de 4 caracteres.
const (
	roomCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	roomCodeLength   = 4
)

// RankingSink é o destino externo do placar final, invocado fire-and-forget
// depois do gameEnded. Nada no resolvedor espera por ele.
type RankingSink interface {
	PublishStandings(roomID string, standings any)
}

// RoomManager (o ator) é o diretório das salas ativas. O mapa de salas é
// acessado somente pela goroutine do Run, então criar/listar/remover salas
// nunca disputa lock com o tráfego das salas em si.
type RoomManager struct {
	rooms       map[string]*GameRoom
	requestCh   chan interface{}
	broadcaster network.Broadcaster
	ranking     RankingSink
	rng         *rand.Rand
}

func NewRoomManager(broadcaster network.Broadcaster, ranking RankingSink) *RoomManager {
	return &RoomManager{
		rooms:       make(map[string]*GameRoom),
		requestCh:   make(chan interface{}, 16),
		broadcaster: broadcaster,
		ranking:     ranking,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 2)),
	}
}

// --- Mensagens para o ator RoomManager ---

type createRoomRequest struct {
	cfg   RoomConfig
	reply chan *GameRoom
}

type getRoomRequest struct {
	roomID string
	reply  chan *GameRoom
}

type listRoomsRequest struct {
	reply chan []RoomSummary
}

type removeRoomRequest struct {
	roomID string
}

type roomsChangedNotice struct{}

type cleanupFinishedRooms struct{}

// --- APIs públicas do ator ---

// CreateRoom cria uma sala nova em fase de lobby e inicia o seu ator.
func (rm *RoomManager) CreateRoom(cfg RoomConfig) *GameRoom {
	reply := make(chan *GameRoom, 1)
	rm.requestCh <- createRoomRequest{cfg: cfg, reply: reply}
	return <-reply
}

// GetRoom devolve a referência da sala, ou nil se não existir.
func (rm *RoomManager) GetRoom(roomID string) *GameRoom {
	reply := make(chan *GameRoom, 1)
	rm.requestCh <- getRoomRequest{roomID: roomID, reply: reply}
	return <-reply
}

// ListRooms devolve a projeção de lobby de todas as salas vivas. É uma
// leitura dos snapshots atômicos; nunca expõe o conteúdo dos baralhos.
func (rm *RoomManager) ListRooms() []RoomSummary {
	reply := make(chan []RoomSummary, 1)
	rm.requestCh <- listRoomsRequest{reply: reply}
	return <-reply
}

// removeRoom tira uma sala do diretório. Idempotente: remover um id
// inexistente é seguro. Chamado pelas próprias salas ao fechar.
func (rm *RoomManager) removeRoom(roomID string) {
	if rm == nil {
		return
	}
	rm.requestCh <- removeRoomRequest{roomID: roomID}
}

// notifyChanged pede um rebroadcast da lista de salas para o lobby.
// Nil-safe para as salas criadas sem gerenciador nos testes.
func (rm *RoomManager) notifyChanged() {
	if rm == nil {
		return
	}
	select {
	case rm.requestCh <- roomsChangedNotice{}:
	default:
		// Canal cheio significa que já há um refresh na fila.
	}
}

// Run inicia o loop principal do ator RoomManager.
func (rm *RoomManager) Run() {
	log.Println("[RoomManager] Actor started.")
	cleanupTicker := time.NewTicker(1 * time.Minute)
	defer cleanupTicker.Stop()

	for {
		select {
		case msg := <-rm.requestCh:
			switch req := msg.(type) {
			case createRoomRequest:
				room := newGameRoom(rm.newRoomCode(), req.cfg, rm, rm.ranking)
				rm.rooms[room.ID] = room
				go room.Run()
				log.Printf("[RoomManager] room %s created (%q, %s, max %d)", room.ID, req.cfg.Title, req.cfg.Mode, req.cfg.MaxPlayers)
				req.reply <- room
				rm.publishRoomList()

			case getRoomRequest:
				req.reply <- rm.rooms[req.roomID]

			case listRoomsRequest:
				req.reply <- rm.summaries()

			case removeRoomRequest:
				if _, ok := rm.rooms[req.roomID]; ok {
					delete(rm.rooms, req.roomID)
					log.Printf("[RoomManager] room %s removed", req.roomID)
					rm.publishRoomList()
				}

			case roomsChangedNotice:
				rm.publishRoomList()

			case cleanupFinishedRooms:
				for id, room := range rm.rooms {
					if room.IsFinished() {
						delete(rm.rooms, id)
						log.Printf("[RoomManager] cleaned up finished room %s", id)
					}
				}
			}

		case <-cleanupTicker.C:
			// Envia uma mensagem para si mesmo para limpar com exclusão.
			rm.requestCh <- cleanupFinishedRooms{}
		}
	}
}

// newRoomCode aloca um código livre. Colisão só faz tentar de novo; com 36⁴
// combinações o loop termina em pouquíssimas iterações.
func (rm *RoomManager) newRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeAlphabet[rm.rng.IntN(len(roomCodeAlphabet))]
		}
		if _, taken := rm.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

func (rm *RoomManager) summaries() []RoomSummary {
	list := make([]RoomSummary, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		if room.IsFinished() {
			continue
		}
		list = append(list, room.Summary())
	}
	return list
}

// publishRoomList manda a lista atualizada para todas as conexões.
func (rm *RoomManager) publishRoomList() {
	if rm.broadcaster == nil {
		return
	}
	rm.broadcaster.Broadcast(message.RoomListUpdated(rm.summaries()))
}
