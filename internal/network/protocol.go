package network

import (
	"encoding/json"
)

// Message é o envelope padrão para toda a comunicação.
// Ele contém um tipo para roteamento e um payload com os dados.
// As struct tags como json:"type" servem para manter a convenção entre cliente e servidor.
type Message struct {
	Type    string          `json:"type"`    // Ex: "flipCard", "cardRevealed"
	Payload json.RawMessage `json:"payload"` // Dados específicos, mantidos em JSON bruto para decodificação posterior.
}

// NewMessage monta um envelope serializando o payload informado.
// Um payload nil gera uma mensagem só com o tipo, útil para eventos de controle.
func NewMessage(msgType string, payload any) Message {
	if payload == nil {
		return Message{Type: msgType}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// Payloads são structs nossas; falha de marshal aqui é bug de programação.
		return Message{Type: msgType}
	}
	return Message{Type: msgType, Payload: data}
}
