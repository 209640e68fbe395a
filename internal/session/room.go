package session

import (
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sckim-a/memoryGame/internal/game/card"
	"github.com/sckim-a/memoryGame/internal/network"
)

// Fases do ciclo de vida de uma sala.
const (
	phase_LOBBY       = "lobby"
	phase_IN_PROGRESS = "inProgress"
	phase_ENDED       = "ended"
)

// RoomConfig é o pedido de criação de uma sala.
type RoomConfig struct {
	Title      string
	Mode       string
	MaxPlayers int
	PairCount  int
	Rules      Rules
}

// roomPlayer é um assento da sala. Sobrevive à desconexão da sessão durante
// a janela de graça: pontuação e posição na ordem de turnos ficam
// preservadas até a reconexão ou a expulsão pela varredura.
type roomPlayer struct {
	id             string
	name           string
	score          int
	streak         int
	connected      bool
	disconnectedAt time.Time

	// session é nil enquanto o assento está desconectado.
	session *PlayerSession
}

// GameRoom é o ator de uma sala: uma única goroutine (Run) é dona de todo o
// estado mutável e processa os pedidos em ordem de chegada pelo canal
// incoming. Isso serializa flips concorrentes e garante os invariantes de
// "no máximo 2 cartas abertas" e "exatamente um jogador na vez".
type GameRoom struct {
	ID         string
	title      string
	mode       string
	maxPlayers int
	pairCount  int
	rules      Rules

	manager *RoomManager
	ranking RankingSink

	// Estado do jogo. Acessado SOMENTE pela goroutine do ator (e pelos
	// testes, que chamam os métodos de lógica diretamente).
	players    []*roomPlayer
	hostID     string
	phase      string
	cards      []*card.Card
	open       []int // ids das cartas abertas e não resolvidas (0, 1 ou 2)
	currentIdx int
	turnCount  int

	// generation invalida timers pendentes: restart/teardown incrementa e o
	// flip-back atrasado só aplica se a geração ainda for a mesma.
	generation uint64

	rng      *rand.Rand
	incoming chan interface{}
	quit     chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
	summary   atomic.Value // RoomSummary para o lobby, sem lock

	flipTimer *time.Timer

	// now é injetável nos testes da janela de graça.
	now func() time.Time
}

func newGameRoom(id string, cfg RoomConfig, manager *RoomManager, ranking RankingSink) *GameRoom {
	gr := &GameRoom{
		ID:         id,
		title:      cfg.Title,
		mode:       cfg.Mode,
		maxPlayers: cfg.MaxPlayers,
		pairCount:  cfg.PairCount,
		rules:      cfg.Rules,
		manager:    manager,
		ranking:    ranking,
		phase:      phase_LOBBY,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano()>>32))),
		incoming:   make(chan interface{}),
		quit:       make(chan struct{}),
		now:        time.Now,
	}
	gr.storeSummary()
	return gr
}

// --- Mensagens para o ator da sala ---

type joinRequest struct {
	session *PlayerSession
	name    string
	reply   chan error
}

type leaveRequest struct {
	session *PlayerSession
}

type startRequest struct {
	session *PlayerSession
}

type restartRequest struct {
	session *PlayerSession
}

type flipRequest struct {
	session *PlayerSession
	cardID  int
}

type disconnectNotice struct {
	session *PlayerSession
}

type flipBackNotice struct {
	generation uint64
}

// Run é o loop principal do ator. A varredura de presença roda no mesmo
// loop, então ela também enxerga o estado com exclusão garantida.
func (gr *GameRoom) Run() {
	sweep := time.NewTicker(gr.rules.SweepInterval)
	defer sweep.Stop()
	defer gr.stopFlipTimer()

	for {
		select {
		case msg := <-gr.incoming:
			switch req := msg.(type) {
			case joinRequest:
				req.reply <- gr.handleJoin(req.session, req.name)
			case leaveRequest:
				gr.handleLeave(req.session)
			case startRequest:
				gr.handleStart(req.session)
			case restartRequest:
				gr.handleRestart(req.session)
			case flipRequest:
				gr.handleFlip(req.session, req.cardID)
			case disconnectNotice:
				gr.handleDisconnect(req.session)
			case flipBackNotice:
				gr.handleFlipBack(req.generation)
			}

		case <-sweep.C:
			gr.sweepPresence()

		case <-gr.quit:
			return
		}
	}
}

// --- API pública do ator (chamada pela goroutine do Hub) ---

// Join pede a entrada (ou reconexão) de uma sessão e espera a resposta.
func (gr *GameRoom) Join(session *PlayerSession, name string) error {
	reply := make(chan error, 1)
	select {
	case gr.incoming <- joinRequest{session: session, name: name, reply: reply}:
	case <-gr.quit:
		return ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-gr.quit:
		return ErrRoomNotFound
	}
}

// Forward entrega uma ação sem resposta para o ator. Se a sala já fechou, a
// ação é descartada em silêncio, que é exatamente a política para pedidos
// atrasados.
func (gr *GameRoom) Forward(action interface{}) {
	select {
	case gr.incoming <- action:
	case <-gr.quit:
	}
}

// NotifyDisconnect marca a sessão como desconectada dentro da sala.
// Idempotente: avisos repetidos para o mesmo assento não têm efeito.
func (gr *GameRoom) NotifyDisconnect(session *PlayerSession) {
	gr.Forward(disconnectNotice{session: session})
}

// IsFinished informa ao gerenciador se a sala já foi encerrada.
func (gr *GameRoom) IsFinished() bool {
	return gr.closed.Load()
}

// Summary devolve a projeção de lobby mais recente, sem tocar no ator.
func (gr *GameRoom) Summary() RoomSummary {
	if s, ok := gr.summary.Load().(RoomSummary); ok {
		return s
	}
	return RoomSummary{ID: gr.ID}
}

// --- Infraestrutura interna ---

// send entrega uma mensagem a um assento conectado, sem nunca bloquear o
// ator: cliente com buffer cheio perde o evento (e o resync da reconexão
// recupera o estado).
func (gr *GameRoom) send(p *roomPlayer, msg network.Message) {
	if p.session == nil {
		return
	}
	select {
	case p.session.Client.Send() <- msg:
	default:
		log.Printf("[Room %s] WARN: dropping %q for slow client %s", gr.ID, msg.Type, p.name)
	}
}

func (gr *GameRoom) broadcast(msg network.Message) {
	for _, p := range gr.players {
		gr.send(p, msg)
	}
}

// storeSummary atualiza a projeção atômica lida pelo RoomManager.
func (gr *GameRoom) storeSummary() {
	connected := 0
	for _, p := range gr.players {
		if p.connected {
			connected++
		}
	}
	gr.summary.Store(RoomSummary{
		ID:         gr.ID,
		Title:      gr.title,
		Mode:       gr.mode,
		Players:    connected,
		MaxPlayers: gr.maxPlayers,
		Phase:      gr.phase,
	})
}

// publishState propaga o snapshot para o lobby.
func (gr *GameRoom) publishState() {
	gr.storeSummary()
	gr.manager.notifyChanged()
}

// scheduleFlipBack agenda o desvira das cartas erradas. O callback carrega a
// geração atual: se a sala reiniciar ou fechar antes de disparar, ele vira
// um no-op em vez de mexer numa sala que já mudou.
func (gr *GameRoom) scheduleFlipBack() {
	gen := gr.generation
	gr.stopFlipTimer()
	gr.flipTimer = time.AfterFunc(gr.rules.FlipBackDelay, func() {
		select {
		case gr.incoming <- flipBackNotice{generation: gen}:
		case <-gr.quit:
		}
	})
}

func (gr *GameRoom) stopFlipTimer() {
	if gr.flipTimer != nil {
		gr.flipTimer.Stop()
		gr.flipTimer = nil
	}
}

// closeRoom encerra a sala de vez: avisa os clientes, solta as sessões,
// invalida timers e pede a remoção ao gerenciador. Idempotente.
func (gr *GameRoom) closeRoom(reason string) {
	gr.closeOnce.Do(func() {
		log.Printf("[Room %s] closing: %s", gr.ID, reason)
		gr.stopFlipTimer()
		gr.generation++
		msg := messageRoomClosed(reason)
		for _, p := range gr.players {
			gr.send(p, msg)
			if p.session != nil {
				p.session.clearRoom()
			}
		}
		gr.players = nil
		gr.phase = phase_ENDED
		gr.storeSummary()
		gr.closed.Store(true)
		close(gr.quit)
		gr.manager.removeRoom(gr.ID)
		gr.manager.notifyChanged()
	})
}
