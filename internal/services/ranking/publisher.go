package ranking

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher publica o placar final de cada partida num subject NATS.
// É o sink externo de persistência de ranking: fire-and-forget, ninguém no
// caminho quente do jogo espera por ele, e perder uma publicação não é
// fatal para a sala.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// standingsEvent é o formato publicado. Consumidores (placar histórico,
// analytics) decodificam o campo standings conforme o contrato do jogo.
type standingsEvent struct {
	RoomID    string    `json:"roomId"`
	EndedAt   time.Time `json:"endedAt"`
	Standings any       `json:"standings"`
}

// NewPublisher conecta no NATS. A conexão é resiliente: reconexão
// automática fica por conta do próprio cliente NATS.
func NewPublisher(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("memory-game-ranking"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// PublishStandings manda o placar de uma sala. Erros só geram log.
func (p *Publisher) PublishStandings(roomID string, standings any) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(standingsEvent{
		RoomID:    roomID,
		EndedAt:   time.Now().UTC(),
		Standings: standings,
	})
	if err != nil {
		log.Printf("[Ranking] marshal failed for room %s: %v", roomID, err)
		return
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		log.Printf("[Ranking] publish failed for room %s: %v", roomID, err)
	}
}

// Close descarrega o que estiver no buffer e fecha a conexão.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Drain()
}
