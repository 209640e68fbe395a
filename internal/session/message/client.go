package message

// Isso aqui são as mensagens que vão no sentido servidor -> cliente.
// Os payloads são DTOs do pacote session; este pacote só conhece o envelope.

import (
	"github.com/sckim-a/memoryGame/internal/network"
)

// Tipos de evento de saída. Os nomes fazem parte do contrato com os clientes.
const (
	TypeRoomListUpdated = "roomListUpdated"
	TypeJoined          = "joined"
	TypeRoomUpdated     = "roomUpdated"
	TypeGameStarted     = "gameStarted"
	TypeCardRevealed    = "cardRevealed"
	TypePairResolved    = "pairResolved"
	TypeTurnAdvanced    = "turnAdvanced"
	TypeGameEnded       = "gameEnded"
	TypeHostChanged     = "hostChanged"
	TypeRoomClosed      = "roomClosed"
	TypeStateSync       = "stateSync"
)

func RoomListUpdated(payload any) network.Message {
	return network.NewMessage(TypeRoomListUpdated, payload)
}

func Joined(payload any) network.Message {
	return network.NewMessage(TypeJoined, payload)
}

func RoomUpdated(payload any) network.Message {
	return network.NewMessage(TypeRoomUpdated, payload)
}

func GameStarted(payload any) network.Message {
	return network.NewMessage(TypeGameStarted, payload)
}

func CardRevealed(payload any) network.Message {
	return network.NewMessage(TypeCardRevealed, payload)
}

func PairResolved(payload any) network.Message {
	return network.NewMessage(TypePairResolved, payload)
}

func TurnAdvanced(payload any) network.Message {
	return network.NewMessage(TypeTurnAdvanced, payload)
}

func GameEnded(payload any) network.Message {
	return network.NewMessage(TypeGameEnded, payload)
}

func HostChanged(payload any) network.Message {
	return network.NewMessage(TypeHostChanged, payload)
}

func RoomClosed(payload any) network.Message {
	return network.NewMessage(TypeRoomClosed, payload)
}

func StateSync(payload any) network.Message {
	return network.NewMessage(TypeStateSync, payload)
}
