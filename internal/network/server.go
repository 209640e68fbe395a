package network

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server é a estrutura principal do servidor de rede. Gerencia um Hub.
type Server struct {
	hub *Hub
}

// upgrader armazena as configurações para promover uma conexão HTTP para WebSocket.
var upgrader = websocket.Upgrader{
	// Em desenvolvimento aceitamos qualquer origem.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer aceita um EventHandler, o ponto de injeção da lógica do jogo.
func NewServer(handler EventHandler) *Server {
	return &Server{
		hub: NewHub(handler),
	}
}

// Hub expõe o hub deste servidor, para que a camada de jogo possa fazer
// broadcasts de escopo lobby (lista de salas).
func (s *Server) Hub() *Hub {
	return s.hub
}

// wsHandler lida com a requisição HTTP e a promove para uma conexão WebSocket.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		hub:  s.hub,
		send: make(chan Message, 256),
	}

	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Listen inicia o Hub e o servidor HTTP com a rota do WebSocket.
func (s *Server) Listen(address string) error {
	go s.hub.Run()

	http.HandleFunc("/ws", s.wsHandler)

	log.Printf("[Server] WebSocket listening on ws://%s/ws", address)

	return http.ListenAndServe(address, nil)
}
