package session

// DTOs projetados para os clientes. Nenhuma projeção expõe o pairKey de
// carta escondida: a identidade das cartas fechadas é segredo do servidor.

// RoomSummary é a projeção de lobby de uma sala.
type RoomSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Mode       string `json:"mode"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Phase      string `json:"phase"`
}

// PlayerView é a projeção pública de um assento.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Streak    int    `json:"streak"`
	Connected bool   `json:"connected"`
}

// CardView é a visão pública de uma carta fechada: só posição/identidade.
type CardView struct {
	ID int `json:"id"`
}

// CardStateView é a visão completa usada no resync de reconexão. O valor só
// é preenchido para cartas reveladas ou removidas, que já são informação
// pública.
type CardStateView struct {
	ID       int    `json:"id"`
	Value    string `json:"value,omitempty"`
	Revealed bool   `json:"revealed"`
	Removed  bool   `json:"removed"`
}

// RankEntry é uma linha do placar final.
type RankEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type joinedPayload struct {
	RoomID     string       `json:"roomId"`
	Title      string       `json:"title"`
	Mode       string       `json:"mode"`
	MaxPlayers int          `json:"maxPlayers"`
	SelfID     string       `json:"selfId"`
	HostID     string       `json:"hostId"`
	Players    []PlayerView `json:"players"`
}

type roomUpdatedPayload struct {
	Players []PlayerView `json:"players"`
	HostID  string       `json:"hostId"`
}

type gameStartedPayload struct {
	Cards         []CardView   `json:"cards"`
	CurrentPlayer string       `json:"currentPlayer"`
	TurnCount     int          `json:"turnCount"`
	Players       []PlayerView `json:"players"`
}

type cardRevealedPayload struct {
	CardID int    `json:"cardId"`
	Value  string `json:"value"`
}

type pairResolvedPayload struct {
	Matched bool         `json:"matched"`
	CardIDs []int        `json:"cardIds"`
	Players []PlayerView `json:"players"`
}

type turnAdvancedPayload struct {
	CurrentPlayer string       `json:"currentPlayer"`
	TurnCount     int          `json:"turnCount"`
	Players       []PlayerView `json:"players"`
}

type gameEndedPayload struct {
	Ranking []RankEntry `json:"ranking"`
}

type hostChangedPayload struct {
	NewHostID string `json:"newHostId"`
}

type roomClosedPayload struct {
	Reason string `json:"reason"`
}

type stateSyncPayload struct {
	RoomID        string          `json:"roomId"`
	Title         string          `json:"title"`
	Mode          string          `json:"mode"`
	MaxPlayers    int             `json:"maxPlayers"`
	Phase         string          `json:"phase"`
	SelfID        string          `json:"selfId"`
	HostID        string          `json:"hostId"`
	CurrentPlayer string          `json:"currentPlayer"`
	TurnCount     int             `json:"turnCount"`
	Players       []PlayerView    `json:"players"`
	Cards         []CardStateView `json:"cards"`
}
