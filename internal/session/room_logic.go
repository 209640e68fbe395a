package session

import (
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/sckim-a/memoryGame/internal/game/card"
	"github.com/sckim-a/memoryGame/internal/game/deck"
	"github.com/sckim-a/memoryGame/internal/network"
	"github.com/sckim-a/memoryGame/internal/session/message"
)

// Este arquivo concentra a lógica de jogo da sala. Todos os métodos são
// executados pela goroutine do ator (ou diretamente pelos testes), nunca em
// paralelo. Pedido inválido = retorno silencioso, sem mutação nem broadcast.

// handleJoin processa entrada e reconexão. A reconexão casa pelo nome de
// exibição com um assento desconectado e devolve o assento intacto
// (pontuação, streak e posição na ordem de turnos), em qualquer fase.
func (gr *GameRoom) handleJoin(session *PlayerSession, name string) error {
	if name == "" {
		return ErrIdentityConflict
	}

	// Reconexão dentro da janela de graça.
	if idx := gr.seatIndexByName(name, false); idx >= 0 {
		p := gr.players[idx]
		p.session = session
		p.connected = true
		session.setRoom(gr)
		log.Printf("[Room %s] player %s reconnected", gr.ID, p.name)

		gr.send(p, message.StateSync(gr.stateSync(p)))
		gr.broadcast(message.RoomUpdated(roomUpdatedPayload{Players: gr.playerViews(), HostID: gr.hostID}))
		gr.publishState()
		return nil
	}

	// O nome é a chave de identidade da reconexão, então ele é único por
	// sala: colidir com um membro conectado é rejeitado.
	if gr.seatIndexByName(name, true) >= 0 {
		return ErrIdentityConflict
	}

	if gr.phase != phase_LOBBY {
		return ErrGameInProgress
	}
	if len(gr.players) >= gr.maxPlayers {
		return ErrRoomFull
	}

	p := &roomPlayer{
		id:        uuid.NewString(),
		name:      name,
		connected: true,
		session:   session,
	}
	gr.players = append(gr.players, p)
	if len(gr.players) == 1 {
		gr.hostID = p.id
	}
	session.setRoom(gr)

	gr.send(p, message.Joined(joinedPayload{
		RoomID:     gr.ID,
		Title:      gr.title,
		Mode:       gr.mode,
		MaxPlayers: gr.maxPlayers,
		SelfID:     p.id,
		HostID:     gr.hostID,
		Players:    gr.playerViews(),
	}))
	gr.broadcast(message.RoomUpdated(roomUpdatedPayload{Players: gr.playerViews(), HostID: gr.hostID}))
	gr.publishState()

	// Sala cheia começa sozinha; o host também pode iniciar antes disso.
	if len(gr.players) == gr.maxPlayers {
		gr.startMatch()
	}
	return nil
}

// handleLeave remove o assento de quem saiu por vontade própria. Saída
// voluntária não tem janela de graça.
func (gr *GameRoom) handleLeave(session *PlayerSession) {
	idx := gr.seatIndexBySession(session)
	if idx < 0 {
		return
	}
	session.clearRoom()
	gr.removeSeat(idx)
}

// handleDisconnect marca o assento como desconectado, preservando-o para a
// reconexão. Na fase de lobby não há nada a preservar e o assento sai na
// hora. Avisos duplicados são no-ops.
func (gr *GameRoom) handleDisconnect(session *PlayerSession) {
	idx := gr.seatIndexBySession(session)
	if idx < 0 {
		return
	}
	p := gr.players[idx]
	p.session = nil
	session.clearRoom()

	if gr.phase == phase_LOBBY {
		gr.removeSeat(idx)
		return
	}

	p.connected = false
	p.disconnectedAt = gr.now()

	if !gr.rules.HostGraceOnLoss && p.id == gr.hostID {
		gr.closeRoom("host disconnected")
		return
	}

	gr.broadcast(message.RoomUpdated(roomUpdatedPayload{Players: gr.playerViews(), HostID: gr.hostID}))
	gr.publishState()
}

// handleStart é o pedido explícito do host.
func (gr *GameRoom) handleStart(session *PlayerSession) {
	p := gr.seatBySession(session)
	if p == nil || p.id != gr.hostID {
		return
	}
	gr.startMatch()
}

// handleRestart reinicia a partida preservando os assentos: novo baralho,
// pontuações e turnos zerados. Válido a partir de inProgress ou ended.
func (gr *GameRoom) handleRestart(session *PlayerSession) {
	p := gr.seatBySession(session)
	if p == nil || p.id != gr.hostID {
		return
	}
	if gr.phase == phase_LOBBY {
		return
	}
	gr.dealAndBegin()
}

func (gr *GameRoom) startMatch() {
	if gr.phase != phase_LOBBY {
		return
	}
	gr.dealAndBegin()
}

func (gr *GameRoom) dealAndBegin() {
	cards, err := deck.Generate(gr.mode, gr.pairCount, gr.rng)
	if err != nil {
		// Configuração inválida de tema; a sala fica como está.
		log.Printf("[Room %s] deck generation failed: %v", gr.ID, err)
		return
	}

	gr.cards = cards
	gr.open = nil
	gr.generation++
	gr.stopFlipTimer()
	gr.phase = phase_IN_PROGRESS
	gr.turnCount = 1
	for _, p := range gr.players {
		p.score = 0
		p.streak = 0
	}
	gr.currentIdx = gr.seekConnected(0)

	gr.broadcast(message.GameStarted(gameStartedPayload{
		Cards:         gr.publicCards(),
		CurrentPlayer: gr.currentPlayerID(),
		TurnCount:     gr.turnCount,
		Players:       gr.playerViews(),
	}))
	gr.publishState()
}

// handleFlip é o coração do resolvedor: valida a legalidade do flip, revela
// a carta e, com duas abertas, resolve o par.
func (gr *GameRoom) handleFlip(session *PlayerSession, cardID int) {
	if gr.phase != phase_IN_PROGRESS {
		return
	}
	p := gr.seatBySession(session)
	if p == nil {
		return
	}
	if gr.currentPlayerID() != p.id {
		return // ErrNotYourTurn: flip fora de vez é um no-op
	}
	if len(gr.open) >= 2 {
		return // aguardando o flip-back do par errado
	}
	c := gr.cardByID(cardID)
	if c == nil || c.Face() != card.FaceHidden {
		return // ErrInvalidCardState
	}

	c.Reveal()
	gr.open = append(gr.open, c.ID())

	// Todo flip é informação pública: a mesa inteira vê a carta na hora.
	gr.broadcast(message.CardRevealed(cardRevealedPayload{CardID: c.ID(), Value: c.PairKey()}))

	if len(gr.open) == 2 {
		gr.resolveOpenPair(p)
	}
}

func (gr *GameRoom) resolveOpenPair(p *roomPlayer) {
	c1 := gr.cardByID(gr.open[0])
	c2 := gr.cardByID(gr.open[1])

	if c1.PairKey() == c2.PairKey() {
		c1.Remove()
		c2.Remove()
		// O valor do acerto é o streak já incrementado: o primeiro par de
		// uma vez limpa vale 1, o segundo consecutivo vale 2, e assim por
		// diante.
		p.streak++
		p.score += p.streak
		ids := []int{c1.ID(), c2.ID()}
		gr.open = nil

		gr.broadcast(message.PairResolved(pairResolvedPayload{
			Matched: true,
			CardIDs: ids,
			Players: gr.playerViews(),
		}))

		if gr.allRemoved() {
			gr.endMatch()
			return
		}
		// Quem acerta continua jogando (regra de referência); a variante
		// alternativa passa a vez mesmo no acerto.
		if !gr.rules.MatchKeepsTurn {
			gr.advanceTurn()
			gr.broadcastTurn()
		}
		return
	}

	// Par errado: o streak morre agora, mas as cartas ficam viradas por uma
	// janela visual antes do flip-back resolver o resto.
	p.streak = 0
	gr.broadcast(message.PairResolved(pairResolvedPayload{
		Matched: false,
		CardIDs: []int{c1.ID(), c2.ID()},
		Players: gr.playerViews(),
	}))
	gr.scheduleFlipBack()
}

// handleFlipBack aplica o lado adiado do par errado. Só roda se a geração
// da sala não mudou desde o agendamento (restart/teardown invalida).
func (gr *GameRoom) handleFlipBack(generation uint64) {
	if generation != gr.generation {
		return
	}
	if gr.phase != phase_IN_PROGRESS || len(gr.open) != 2 {
		return
	}
	for _, id := range gr.open {
		if c := gr.cardByID(id); c != nil && c.Face() == card.FaceRevealed {
			c.Hide()
		}
	}
	gr.open = nil
	gr.advanceTurn()
	gr.broadcastTurn()
}

// advanceTurn passa a vez para o próximo jogador conectado na ordem de
// entrada, com wrap. O contador de turnos incrementa a cada rotação
// completa (ou a cada passagem, conforme a regra da sala).
func (gr *GameRoom) advanceTurn() {
	if len(gr.players) == 0 {
		return
	}
	old := gr.currentIdx
	next := gr.seekConnected(old + 1)
	wrapped := next <= old
	gr.currentIdx = next
	gr.players[next].streak = 0
	if wrapped || !gr.rules.TurnPerRotation {
		gr.turnCount++
	}
}

func (gr *GameRoom) broadcastTurn() {
	gr.broadcast(message.TurnAdvanced(turnAdvancedPayload{
		CurrentPlayer: gr.currentPlayerID(),
		TurnCount:     gr.turnCount,
		Players:       gr.playerViews(),
	}))
}

// endMatch fecha a partida: ranking por pontuação decrescente, empate
// decidido pela ordem de entrada. A sala continua viva para um restart.
func (gr *GameRoom) endMatch() {
	gr.phase = phase_ENDED
	gr.generation++
	gr.stopFlipTimer()
	gr.open = nil

	ranking := gr.buildRanking()
	gr.broadcast(message.GameEnded(gameEndedPayload{Ranking: ranking}))
	if gr.ranking != nil {
		// Persistência de placar é um sink externo, fire-and-forget: o
		// resolvedor nunca espera por I/O.
		go gr.ranking.PublishStandings(gr.ID, ranking)
	}
	gr.publishState()
}

func (gr *GameRoom) buildRanking() []RankEntry {
	ordered := make([]*roomPlayer, len(gr.players))
	copy(ordered, gr.players)
	// SliceStable preserva a ordem de entrada nos empates.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	ranking := make([]RankEntry, len(ordered))
	for i, p := range ordered {
		ranking[i] = RankEntry{PlayerID: p.id, Name: p.name, Score: p.score}
	}
	return ranking
}

// sweepPresence expulsa assentos cuja desconexão estourou a janela de
// graça. Roda no loop do ator, então muta com a mesma exclusão de tudo.
func (gr *GameRoom) sweepPresence() {
	cutoff := gr.now().Add(-gr.rules.GraceWindow)
	for {
		evicted := false
		for idx, p := range gr.players {
			if !p.connected && p.disconnectedAt.Before(cutoff) {
				log.Printf("[Room %s] evicting %s after grace window", gr.ID, p.name)
				gr.removeSeat(idx)
				evicted = true
				break // o slice mudou; recomeça a busca
			}
		}
		if !evicted || gr.closed.Load() {
			return
		}
	}
}

// removeSeat tira um assento da sala e conserta tudo que dependia dele:
// índice da vez, host e cartas abertas. Destrói a sala se ficou vazia.
func (gr *GameRoom) removeSeat(idx int) {
	p := gr.players[idx]
	wasHost := p.id == gr.hostID
	wasCurrent := gr.phase == phase_IN_PROGRESS && idx == gr.currentIdx

	if p.session != nil {
		p.session.clearRoom()
	}
	gr.players = append(gr.players[:idx], gr.players[idx+1:]...)

	if len(gr.players) == 0 {
		gr.closeRoom("room is empty")
		return
	}

	if idx < gr.currentIdx {
		gr.currentIdx--
	} else if gr.currentIdx >= len(gr.players) {
		gr.currentIdx = 0
	}

	if wasHost {
		// O host é sempre o membro mais antigo restante.
		gr.hostID = gr.players[0].id
		gr.broadcast(message.HostChanged(hostChangedPayload{NewHostID: gr.hostID}))
	}

	gr.broadcast(message.RoomUpdated(roomUpdatedPayload{Players: gr.playerViews(), HostID: gr.hostID}))

	if wasCurrent {
		// A vez era do removido: esconde o que ele abriu, invalida o timer
		// pendente e entrega a vez ao próximo conectado imediatamente.
		gr.generation++
		gr.stopFlipTimer()
		for _, id := range gr.open {
			if c := gr.cardByID(id); c != nil && c.Face() == card.FaceRevealed {
				c.Hide()
			}
		}
		gr.open = nil
		gr.currentIdx = gr.seekConnected(gr.currentIdx)
		gr.players[gr.currentIdx].streak = 0
		gr.broadcastTurn()
	}

	gr.publishState()
}

// --- Consultas internas ---

// seekConnected devolve o índice do primeiro jogador conectado a partir de
// start (inclusive), com wrap. Se ninguém está conectado, devolve start
// normalizado — a vez fica parada até alguém voltar.
func (gr *GameRoom) seekConnected(start int) int {
	n := len(gr.players)
	if n == 0 {
		return 0
	}
	start = ((start % n) + n) % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if gr.players[idx].connected {
			return idx
		}
	}
	return start
}

func (gr *GameRoom) seatBySession(session *PlayerSession) *roomPlayer {
	if idx := gr.seatIndexBySession(session); idx >= 0 {
		return gr.players[idx]
	}
	return nil
}

func (gr *GameRoom) seatIndexBySession(session *PlayerSession) int {
	for idx, p := range gr.players {
		if p.session == session && p.session != nil {
			return idx
		}
	}
	return -1
}

// seatIndexByName procura um assento pelo nome de exibição, filtrando pelo
// estado de conexão. É a chave de identidade da reconexão.
func (gr *GameRoom) seatIndexByName(name string, connected bool) int {
	for idx, p := range gr.players {
		if p.name == name && p.connected == connected {
			return idx
		}
	}
	return -1
}

func (gr *GameRoom) cardByID(id int) *card.Card {
	if id < 0 || id >= len(gr.cards) {
		return nil
	}
	return gr.cards[id]
}

func (gr *GameRoom) currentPlayerID() string {
	if gr.phase != phase_IN_PROGRESS || len(gr.players) == 0 {
		return ""
	}
	return gr.players[gr.currentIdx].id
}

func (gr *GameRoom) allRemoved() bool {
	for _, c := range gr.cards {
		if c.Face() != card.FaceRemoved {
			return false
		}
	}
	return len(gr.cards) > 0
}

func (gr *GameRoom) playerViews() []PlayerView {
	views := make([]PlayerView, len(gr.players))
	for i, p := range gr.players {
		views[i] = PlayerView{
			ID:        p.id,
			Name:      p.name,
			Score:     p.score,
			Streak:    p.streak,
			Connected: p.connected,
		}
	}
	return views
}

func (gr *GameRoom) publicCards() []CardView {
	views := make([]CardView, len(gr.cards))
	for i, c := range gr.cards {
		views[i] = CardView{ID: c.ID()}
	}
	return views
}

func (gr *GameRoom) cardStates() []CardStateView {
	views := make([]CardStateView, len(gr.cards))
	for i, c := range gr.cards {
		v := CardStateView{
			ID:       c.ID(),
			Revealed: c.Face() == card.FaceRevealed,
			Removed:  c.Face() == card.FaceRemoved,
		}
		// Só faces viradas ou removidas são informação pública.
		if v.Revealed || v.Removed {
			v.Value = c.PairKey()
		}
		views[i] = v
	}
	return views
}

func (gr *GameRoom) stateSync(p *roomPlayer) stateSyncPayload {
	return stateSyncPayload{
		RoomID:        gr.ID,
		Title:         gr.title,
		Mode:          gr.mode,
		MaxPlayers:    gr.maxPlayers,
		Phase:         gr.phase,
		SelfID:        p.id,
		HostID:        gr.hostID,
		CurrentPlayer: gr.currentPlayerID(),
		TurnCount:     gr.turnCount,
		Players:       gr.playerViews(),
		Cards:         gr.cardStates(),
	}
}

func messageRoomClosed(reason string) network.Message {
	return message.RoomClosed(roomClosedPayload{Reason: reason})
}
