package network

// EventHandler é a interface que conecta a lógica da rede com a lógica do jogo.
// O nosso código de jogo (fora deste pacote) implementa esta interface e é
// chamado SEMPRE pela goroutine do Hub, nunca em paralelo.
type EventHandler interface {
	// OnConnect é chamado quando um novo cliente se conecta com sucesso.
	OnConnect(c *Client)

	// OnDisconnect é chamado quando um cliente se desconecta.
	OnDisconnect(c *Client)

	// OnMessage é chamado quando uma nova mensagem é recebida de um cliente.
	OnMessage(c *Client, msg Message)
}

// Sender é qualquer destino capaz de receber mensagens de saída.
// Desacopla a camada de sessão do *Client concreto, o que também permite
// usar remetentes falsos nos testes.
type Sender interface {
	Send() chan<- Message
}

// Broadcaster entrega uma mensagem para todas as conexões ativas.
// O Hub implementa esta interface; o envio nunca bloqueia o chamador.
type Broadcaster interface {
	Broadcast(msg Message)
}
