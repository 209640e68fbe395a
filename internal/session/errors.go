package session

import "errors"

// Taxonomia de erros da sessão. Nenhum deles é fatal: a política do jogo é
// descartar silenciosamente a requisição inválida (sem mutação, sem
// broadcast), logando apenas no servidor. Os sentinelas existem para os
// handlers e os testes distinguirem o motivo da rejeição.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidCardState = errors.New("card already revealed or removed")
	ErrNotHost          = errors.New("only the host can do that")
	ErrIdentityConflict = errors.New("display name unavailable in this room")
)
