package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sckim-a/memoryGame/internal/game/card"
	"github.com/sckim-a/memoryGame/internal/game/theme"
	"github.com/sckim-a/memoryGame/internal/network"
	"github.com/sckim-a/memoryGame/internal/session/message"
)

// Os testes chamam os métodos de lógica diretamente, sem a goroutine do
// ator: a lógica é síncrona e o passo adiado (flip-back) é disparado na mão
// com handleFlipBack, em vez de esperar timers reais.

type fakeSender struct {
	ch chan network.Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{ch: make(chan network.Message, 128)}
}

func (f *fakeSender) Send() chan<- network.Message { return f.ch }

// drain esvazia a caixa de saída do cliente falso.
func (f *fakeSender) drain() []network.Message {
	var msgs []network.Message
	for {
		select {
		case msg := <-f.ch:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func (f *fakeSender) typesReceived() []string {
	var types []string
	for _, msg := range f.drain() {
		types = append(types, msg.Type)
	}
	return types
}

func containsType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// testRules usa delays enormes para nenhum timer real interferir.
func testRules() Rules {
	r := DefaultRules()
	r.FlipBackDelay = time.Hour
	r.SweepInterval = time.Hour
	return r
}

func newTestRoom(maxPlayers, pairCount int) *GameRoom {
	return newGameRoom("test", RoomConfig{
		Title:      "test room",
		Mode:       theme.ModeNumber,
		MaxPlayers: maxPlayers,
		PairCount:  pairCount,
		Rules:      testRules(),
	}, nil, nil)
}

func joinPlayer(t *testing.T, gr *GameRoom, name string) (*PlayerSession, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	session := NewPlayerSession(sender)
	require.NoError(t, gr.handleJoin(session, name))
	return session, sender
}

// pairIDs localiza os ids das duas cartas de um pairKey no baralho da sala.
func pairIDs(t *testing.T, gr *GameRoom, key string) (int, int) {
	t.Helper()
	ids := make([]int, 0, 2)
	for _, c := range gr.cards {
		if c.PairKey() == key {
			ids = append(ids, c.ID())
		}
	}
	require.Len(t, ids, 2, "pair key %q", key)
	return ids[0], ids[1]
}

func TestAutoStartWhenFull(t *testing.T) {
	gr := newTestRoom(2, 2)
	_, senderA := joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")

	assert.Equal(t, phase_IN_PROGRESS, gr.phase)
	assert.Len(t, gr.cards, 4)
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID(), "first joiner starts")
	assert.Equal(t, 1, gr.turnCount)
	assert.True(t, containsType(senderA.typesReceived(), message.TypeGameStarted))
}

func TestHostExplicitStart(t *testing.T) {
	gr := newTestRoom(4, 2)
	host, _ := joinPlayer(t, gr, "A")
	guest, _ := joinPlayer(t, gr, "B")

	// Quem não é host não inicia nada.
	gr.handleStart(guest)
	assert.Equal(t, phase_LOBBY, gr.phase)

	gr.handleStart(host)
	assert.Equal(t, phase_IN_PROGRESS, gr.phase)
}

func TestMatchKeepsTurnAndStreakScoring(t *testing.T) {
	// Cenário de referência: 2 jogadores, 2 pares ([1 1 2 2]).
	gr := newTestRoom(2, 2)
	a, senderA := joinPlayer(t, gr, "A")
	_, senderB := joinPlayer(t, gr, "B")
	senderA.drain()
	senderB.drain()

	p1a, p1b := pairIDs(t, gr, "1")
	p2a, p2b := pairIDs(t, gr, "2")

	// Primeiro par: vale 1 ponto e a vez continua com A.
	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p1b)
	assert.Equal(t, 1, gr.players[0].score)
	assert.Equal(t, 1, gr.players[0].streak)
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID())
	assert.Empty(t, gr.open)

	// Segundo par consecutivo: vale 2, total 3, e a partida acaba.
	gr.handleFlip(a, p2a)
	gr.handleFlip(a, p2b)
	assert.Equal(t, 3, gr.players[0].score)
	assert.Equal(t, phase_ENDED, gr.phase)

	// Ambos recebem o placar final, A na frente.
	typesB := senderB.typesReceived()
	assert.True(t, containsType(typesB, message.TypeGameEnded))
}

func TestMismatchResetsStreakAndAdvancesTurn(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, senderA := joinPlayer(t, gr, "A")
	_, senderB := joinPlayer(t, gr, "B")
	senderA.drain()
	senderB.drain()

	p1a, _ := pairIDs(t, gr, "1")
	p2a, _ := pairIDs(t, gr, "2")

	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p2a)

	// Antes do flip-back: cartas viradas, streak zerado, vez ainda de A.
	assert.Equal(t, 0, gr.players[0].streak)
	assert.Len(t, gr.open, 2)
	assert.Equal(t, card.FaceRevealed, gr.cards[p1a].Face())
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID())

	// Terceiro flip com duas abertas é um no-op.
	other, _ := pairIDs(t, gr, "2")
	senderB.drain()
	gr.handleFlip(a, other)
	assert.Len(t, gr.open, 2)
	assert.Empty(t, senderB.typesReceived(), "rejected flip must not broadcast")

	// Flip-back adiado: esconde as cartas e passa a vez para B.
	gr.stopFlipTimer()
	gr.handleFlipBack(gr.generation)
	assert.Empty(t, gr.open)
	assert.Equal(t, card.FaceHidden, gr.cards[p1a].Face())
	assert.Equal(t, gr.players[1].id, gr.currentPlayerID())
	assert.True(t, containsType(senderB.typesReceived(), message.TypeTurnAdvanced))
}

func TestFlipRejections(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, senderA := joinPlayer(t, gr, "A")
	b, senderB := joinPlayer(t, gr, "B")
	senderA.drain()
	senderB.drain()

	p1a, p1b := pairIDs(t, gr, "1")

	// Fora de vez: nenhum estado muda, nenhum broadcast sai.
	gr.handleFlip(b, p1a)
	assert.Equal(t, card.FaceHidden, gr.cards[p1a].Face())
	assert.Empty(t, senderA.typesReceived())

	// Carta já revelada: segundo flip na mesma carta é um no-op.
	gr.handleFlip(a, p1a)
	senderA.drain()
	senderB.drain()
	gr.handleFlip(a, p1a)
	assert.Len(t, gr.open, 1)
	assert.Empty(t, senderB.typesReceived())

	// Id inexistente.
	gr.handleFlip(a, 99)
	assert.Len(t, gr.open, 1)

	// Carta removida não volta para o jogo.
	gr.handleFlip(a, p1b)
	require.Equal(t, card.FaceRemoved, gr.cards[p1a].Face())
	senderA.drain()
	gr.handleFlip(a, p1a)
	assert.Empty(t, gr.open)
	assert.Empty(t, senderA.typesReceived())
}

func TestFlipIgnoredInLobby(t *testing.T) {
	gr := newTestRoom(4, 2)
	a, senderA := joinPlayer(t, gr, "A")
	senderA.drain()

	gr.handleFlip(a, 0)
	assert.Empty(t, gr.open)
	assert.Empty(t, senderA.typesReceived())
}

func TestTurnCounterPerRotation(t *testing.T) {
	gr := newTestRoom(2, 3)
	a, _ := joinPlayer(t, gr, "A")
	b, _ := joinPlayer(t, gr, "B")

	mismatch := func(s *PlayerSession) {
		// Duas cartas de pares diferentes, ainda escondidas.
		p1a, _ := pairIDs(t, gr, "1")
		p2a, _ := pairIDs(t, gr, "2")
		gr.handleFlip(s, p1a)
		gr.handleFlip(s, p2a)
		gr.stopFlipTimer()
		gr.handleFlipBack(gr.generation)
	}

	assert.Equal(t, 1, gr.turnCount)

	// A erra: a vez vai para B sem fechar a rotação.
	mismatch(a)
	assert.Equal(t, gr.players[1].id, gr.currentPlayerID())
	assert.Equal(t, 1, gr.turnCount)

	// B erra: a rotação fecha e o contador avança.
	mismatch(b)
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID())
	assert.Equal(t, 2, gr.turnCount)
}

func TestRankingSortedWithJoinOrderTieBreak(t *testing.T) {
	gr := newTestRoom(4, 2)
	joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")
	joinPlayer(t, gr, "C")

	gr.players[0].score = 2
	gr.players[1].score = 5
	gr.players[2].score = 2

	ranking := gr.buildRanking()
	require.Len(t, ranking, 3)
	assert.Equal(t, "B", ranking[0].Name)
	// Empate em 2 pontos: A entrou antes de C.
	assert.Equal(t, "A", ranking[1].Name)
	assert.Equal(t, "C", ranking[2].Name)
}

func TestJoinRejections(t *testing.T) {
	gr := newTestRoom(2, 2)
	joinPlayer(t, gr, "A")

	// Nome vazio é pré-validação do cliente; o servidor só descarta.
	s := NewPlayerSession(newFakeSender())
	assert.ErrorIs(t, gr.handleJoin(s, ""), ErrIdentityConflict)

	// Nome duplicado de um membro conectado quebraria a chave de reconexão.
	dup := NewPlayerSession(newFakeSender())
	assert.ErrorIs(t, gr.handleJoin(dup, "A"), ErrIdentityConflict)

	joinPlayer(t, gr, "B") // auto-start: sala cheia

	// Partida em andamento (e sem assento desconectado com esse nome).
	late := NewPlayerSession(newFakeSender())
	assert.ErrorIs(t, gr.handleJoin(late, "C"), ErrGameInProgress)
}

func TestJoinAfterAutoStartRejected(t *testing.T) {
	gr := newTestRoom(3, 2)
	joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")
	joinPlayer(t, gr, "C") // sala cheia -> auto-start

	extra := NewPlayerSession(newFakeSender())
	assert.ErrorIs(t, gr.handleJoin(extra, "D"), ErrGameInProgress)
	assert.Nil(t, extra.Room())
}

func TestRestartResetsStateButKeepsSeats(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")

	joinPlayer(t, gr, "B")
	p1a, p1b := pairIDs(t, gr, "1")
	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p1b)
	require.Equal(t, 1, gr.players[0].score)

	gr.handleRestart(a)
	assert.Equal(t, phase_IN_PROGRESS, gr.phase)
	assert.Equal(t, 0, gr.players[0].score)
	assert.Equal(t, 0, gr.players[0].streak)
	assert.Equal(t, 1, gr.turnCount)
	assert.Len(t, gr.players, 2)
	for _, c := range gr.cards {
		assert.Equal(t, card.FaceHidden, c.Face())
	}
}

func TestStaleFlipBackIsNoOpAfterRestart(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")

	p1a, _ := pairIDs(t, gr, "1")
	p2a, _ := pairIDs(t, gr, "2")
	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p2a)
	gr.stopFlipTimer()
	stale := gr.generation

	// O restart troca a geração; o timer antigo não pode mexer na sala nova.
	gr.handleRestart(a)
	require.NotEqual(t, stale, gr.generation)

	gr.handleFlipBack(stale)
	assert.Equal(t, phase_IN_PROGRESS, gr.phase)
	assert.Empty(t, gr.open)
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID())
	assert.Equal(t, 1, gr.turnCount, "stale flip-back must not advance the turn")
}

func TestReconnectKeepsSeatScoreAndTurn(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")
	_, senderB := joinPlayer(t, gr, "B")

	p1a, p1b := pairIDs(t, gr, "1")
	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p1b)
	require.Equal(t, 1, gr.players[0].score)

	seatID := gr.players[0].id
	hostID := gr.hostID

	// Host cai no meio da própria vez.
	gr.handleDisconnect(a)
	assert.False(t, gr.players[0].connected)
	assert.Nil(t, a.Room(), "fallen session must not keep the room pointer")

	senderB.drain()

	// Volta dentro da janela, com o mesmo nome e uma conexão nova.
	senderA2 := newFakeSender()
	a2 := NewPlayerSession(senderA2)
	require.NoError(t, gr.handleJoin(a2, "A"))

	assert.Equal(t, seatID, gr.players[0].id, "seat identity preserved")
	assert.Equal(t, 1, gr.players[0].score, "score preserved")
	assert.True(t, gr.players[0].connected)
	assert.Equal(t, seatID, gr.currentPlayerID(), "still their turn")
	assert.Equal(t, hostID, gr.hostID)
	assert.Equal(t, gr, a2.Room())

	// A sessão nova recebe o resync completo; ninguém vê hostChanged.
	typesA2 := senderA2.typesReceived()
	assert.True(t, containsType(typesA2, message.TypeStateSync))
	typesB := senderB.typesReceived()
	assert.False(t, containsType(typesB, message.TypeHostChanged))
}

func TestStateSyncHidesHiddenCardValues(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")

	p1a, _ := pairIDs(t, gr, "1")
	gr.handleFlip(a, p1a)

	sync := gr.stateSync(gr.players[0])
	for _, c := range sync.Cards {
		if c.Revealed || c.Removed {
			assert.NotEmpty(t, c.Value)
		} else {
			assert.Empty(t, c.Value, "hidden card %d must not leak its pair key", c.ID)
		}
	}
}

func TestGraceEvictionReassignsHostAndTurn(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")
	_, senderB := joinPlayer(t, gr, "B")

	base := time.Now()
	gr.now = func() time.Time { return base }

	// Host cai na própria vez e não volta.
	gr.handleDisconnect(a)
	senderB.drain()

	// Dentro da janela nada acontece.
	gr.sweepPresence()
	assert.Len(t, gr.players, 2)

	// Estourou a janela: assento expulso, host e vez vão para B.
	gr.now = func() time.Time { return base.Add(gr.rules.GraceWindow + time.Second) }
	gr.sweepPresence()

	require.Len(t, gr.players, 1)
	assert.Equal(t, "B", gr.players[0].name)
	assert.Equal(t, gr.players[0].id, gr.hostID)
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID())

	types := senderB.typesReceived()
	assert.True(t, containsType(types, message.TypeHostChanged))
	assert.True(t, containsType(types, message.TypeTurnAdvanced))
	assert.False(t, gr.IsFinished())
}

func TestSweepIsIdempotentAndClosesEmptyRoom(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")
	b, _ := joinPlayer(t, gr, "B")

	base := time.Now()
	gr.now = func() time.Time { return base }
	gr.handleDisconnect(a)
	gr.handleDisconnect(b)

	// Avisos duplicados de queda não mudam nada.
	gr.handleDisconnect(a)
	assert.Len(t, gr.players, 2)

	gr.now = func() time.Time { return base.Add(gr.rules.GraceWindow + time.Second) }
	gr.sweepPresence()

	assert.True(t, gr.IsFinished(), "room with no seats left must close")
}

func TestLobbyDisconnectFreesSeatImmediately(t *testing.T) {
	gr := newTestRoom(4, 2)
	a, _ := joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")

	gr.handleDisconnect(a)
	require.Len(t, gr.players, 1)
	assert.Equal(t, "B", gr.players[0].name)
	assert.Equal(t, gr.players[0].id, gr.hostID, "host moves to the remaining player")
}

func TestHostLossWithoutGraceClosesRoom(t *testing.T) {
	rules := testRules()
	rules.HostGraceOnLoss = false
	gr := newGameRoom("test", RoomConfig{
		Title:      "no grace",
		Mode:       theme.ModeNumber,
		MaxPlayers: 2,
		PairCount:  2,
		Rules:      rules,
	}, nil, nil)

	a, _ := joinPlayer(t, gr, "A")
	_, senderB := joinPlayer(t, gr, "B")

	gr.handleDisconnect(a)
	assert.True(t, gr.IsFinished())
	assert.True(t, containsType(senderB.typesReceived(), message.TypeRoomClosed))
}

func TestLeaveMidTurnAdvancesAndHidesOpenCards(t *testing.T) {
	gr := newTestRoom(2, 2)
	a, _ := joinPlayer(t, gr, "A")
	_, senderB := joinPlayer(t, gr, "B")

	p1a, _ := pairIDs(t, gr, "1")
	gr.handleFlip(a, p1a)
	senderB.drain()

	gr.handleLeave(a)

	require.Len(t, gr.players, 1)
	assert.Equal(t, card.FaceHidden, gr.cards[p1a].Face())
	assert.Empty(t, gr.open)
	assert.Equal(t, gr.players[0].id, gr.currentPlayerID())
	assert.Nil(t, a.Room())
	assert.True(t, containsType(senderB.typesReceived(), message.TypeTurnAdvanced))
}

func TestMatchAdvancesTurnWhenRuleDisabled(t *testing.T) {
	rules := testRules()
	rules.MatchKeepsTurn = false
	gr := newGameRoom("test", RoomConfig{
		Title:      "variant",
		Mode:       theme.ModeNumber,
		MaxPlayers: 2,
		PairCount:  3,
		Rules:      rules,
	}, nil, nil)

	a, _ := joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")

	p1a, p1b := pairIDs(t, gr, "1")
	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p1b)

	assert.Equal(t, 1, gr.players[0].score)
	assert.Equal(t, gr.players[1].id, gr.currentPlayerID(), "variant rule passes the turn even on a match")
}

type captureSink struct {
	ch chan []RankEntry
}

func (c *captureSink) PublishStandings(roomID string, standings any) {
	if ranking, ok := standings.([]RankEntry); ok {
		c.ch <- ranking
	}
}

func TestGameEndPublishesStandings(t *testing.T) {
	sink := &captureSink{ch: make(chan []RankEntry, 1)}
	gr := newGameRoom("test", RoomConfig{
		Title:      "sink",
		Mode:       theme.ModeNumber,
		MaxPlayers: 2,
		PairCount:  2,
		Rules:      testRules(),
	}, nil, sink)

	a, _ := joinPlayer(t, gr, "A")
	joinPlayer(t, gr, "B")

	p1a, p1b := pairIDs(t, gr, "1")
	p2a, p2b := pairIDs(t, gr, "2")
	gr.handleFlip(a, p1a)
	gr.handleFlip(a, p1b)
	gr.handleFlip(a, p2a)
	gr.handleFlip(a, p2b)

	select {
	case ranking := <-sink.ch:
		require.Len(t, ranking, 2)
		assert.Equal(t, "A", ranking[0].Name)
		assert.Equal(t, 3, ranking[0].Score)
	case <-time.After(2 * time.Second):
		t.Fatal("standings were never published")
	}
}
