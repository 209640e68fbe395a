package session

import "time"

// Rules concentra as decisões de produto que as variantes do jogo discordam
// entre si. O resolvedor consulta estas flags em vez de fixar a política no
// código, então cada sala pode ser criada com um conjunto diferente.
type Rules struct {
	// MatchKeepsTurn: quem acerta um par continua jogando. É a regra
	// convencional do jogo da memória e o que dá sentido ao streak.
	MatchKeepsTurn bool

	// TurnPerRotation: o contador de turnos incrementa uma vez por rotação
	// completa dos jogadores. Com false, incrementa a cada passagem de vez.
	TurnPerRotation bool

	// HostGraceOnLoss: a desconexão do host usa a mesma janela de graça de
	// qualquer jogador. Com false, a sala é destruída na hora (comportamento
	// das variantes antigas).
	HostGraceOnLoss bool

	// FlipBackDelay é a pausa visual antes de esconder um par errado,
	// para todos os clientes renderizarem as duas faces.
	FlipBackDelay time.Duration

	// GraceWindow é o tempo que um desconectado tem para voltar antes de
	// perder o assento.
	GraceWindow time.Duration

	// SweepInterval é a frequência da varredura de presença.
	SweepInterval time.Duration
}

// DefaultRules é a política de referência.
func DefaultRules() Rules {
	return Rules{
		MatchKeepsTurn:  true,
		TurnPerRotation: true,
		HostGraceOnLoss: true,
		FlipBackDelay:   800 * time.Millisecond,
		GraceWindow:     60 * time.Second,
		SweepInterval:   5 * time.Second,
	}
}
