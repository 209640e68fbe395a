package session

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sckim-a/memoryGame/internal/network"
)

// PlayerSession representa uma conexão viva. É criada no OnConnect e morre
// no OnDisconnect; o assento dentro de uma sala (roomPlayer) sobrevive à
// sessão durante a janela de graça.
type PlayerSession struct {
	ID     string
	Client network.Sender

	// room é preenchido pelo ator da sala no join e limpo no leave/eviction.
	// Atômico porque a goroutine do Hub lê enquanto o ator da sala escreve.
	room atomic.Pointer[GameRoom]
}

// NewPlayerSession cria e inicializa uma nova sessão.
func NewPlayerSession(client network.Sender) *PlayerSession {
	return &PlayerSession{
		ID:     uuid.NewString(),
		Client: client,
	}
}

// Room devolve a sala atual da sessão, ou nil se estiver no lobby.
func (s *PlayerSession) Room() *GameRoom {
	return s.room.Load()
}

func (s *PlayerSession) setRoom(gr *GameRoom) {
	s.room.Store(gr)
}

func (s *PlayerSession) clearRoom() {
	s.room.Store(nil)
}
