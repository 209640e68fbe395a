package network

import (
	"log"
)

// clientMessage empacota uma mensagem com o cliente que a enviou.
// O Hub precisa de ambos para repassar ao EventHandler.
type clientMessage struct {
	client *Client
	msg    Message
}

// Hub mantém o conjunto de clientes ativos e roteia eventos para o handler.
// Todo o estado interno é acessado SOMENTE pela goroutine do Hub, então o
// EventHandler pode manter seus próprios mapas sem locks.
type Hub struct {
	// Clientes registrados. Mapa de *Client para bool funciona como um "set".
	clients map[*Client]bool

	// Canal para registrar novos clientes.
	register chan *Client

	// Canal para desregistrar clientes.
	unregister chan *Client

	// Canal para mensagens de entrada dos clientes.
	incoming chan clientMessage

	// Canal para mensagens destinadas a todas as conexões (escopo lobby).
	broadcast chan Message

	// O handler da lógica do jogo que processará os eventos.
	handler EventHandler
}

// NewHub cria, inicializa e retorna um novo Hub.
func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		broadcast:  make(chan Message, 64),
		handler:    handler,
	}
}

// Broadcast enfileira uma mensagem para todas as conexões ativas.
// O envio nunca bloqueia: sob pressão a mensagem é descartada, o que é
// aceitável porque os eventos de lobby são atualizações idempotentes.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("[Hub] WARN: broadcast channel full, dropping %q", msg.Type)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Fechar o canal 'send' é o sinal para a writeLoop do cliente parar.
				close(client.send)
				h.handler.OnDisconnect(client)
			}

		case clientMsg := <-h.incoming:
			// O Hub não se importa com o conteúdo; delega para a lógica do jogo.
			h.handler.OnMessage(clientMsg.client, clientMsg.msg)

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Cliente lento demais; descarta em vez de travar o Hub.
				}
			}
		}
	}
}
