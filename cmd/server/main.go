package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/sckim-a/memoryGame/internal/network"
	"github.com/sckim-a/memoryGame/internal/services/cluster"
	"github.com/sckim-a/memoryGame/internal/services/ranking"
	"github.com/sckim-a/memoryGame/internal/session"
)

// ============================================================================
// Constantes de Configuração Padrão
// ============================================================================
const (
	defaultServiceName    = "memory-game"
	defaultServicePort    = 8080
	defaultRankingSubject = "memorygame.rankings"
)

// Config armazena todas as configurações da aplicação.
type Config struct {
	ServiceName    string
	ServicePort    int
	HealthPort     int
	ConsulAddr     string // vazio desliga o registro no Consul
	NatsURL        string // vazio desliga o sink de ranking
	RankingSubject string
}

// loadConfig carrega a configuração a partir de variáveis de ambiente.
func loadConfig() (*Config, error) {
	cfg := &Config{
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ConsulAddr:     os.Getenv("CONSUL_HTTP_ADDR"),
		NatsURL:        os.Getenv("NATS_URL"),
		RankingSubject: os.Getenv("RANKING_SUBJECT"),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if cfg.RankingSubject == "" {
		cfg.RankingSubject = defaultRankingSubject
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = strconv.Itoa(defaultServicePort)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("formato de PORT inválido: %w", err)
	}
	cfg.ServicePort = port

	healthStr := os.Getenv("HEALTH_CHECK_PORT")
	if healthStr == "" {
		// Por padrão, a mesma porta do serviço.
		cfg.HealthPort = cfg.ServicePort
		return cfg, nil
	}
	healthPort, err := strconv.Atoi(healthStr)
	if err != nil {
		return nil, fmt.Errorf("formato de HEALTH_CHECK_PORT inválido: %w", err)
	}
	cfg.HealthPort = healthPort
	return cfg, nil
}

func main() {
	// 1. CARREGA A CONFIGURAÇÃO
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Fatal: Falha ao carregar configuração: %v", err)
	}
	log.Printf("[Main] Configuração: ServiceName=%s, Port=%d, Consul=%q, NATS=%q",
		cfg.ServiceName, cfg.ServicePort, cfg.ConsulAddr, cfg.NatsURL)

	// 2. SINK DE RANKING (opcional)
	var sink session.RankingSink
	if cfg.NatsURL != "" {
		publisher, err := ranking.NewPublisher(cfg.NatsURL, cfg.RankingSubject)
		if err != nil {
			log.Fatalf("Fatal: Falha ao conectar no NATS: %v", err)
		}
		defer publisher.Close()
		sink = publisher
		log.Printf("[Main] Ranking sink ligado em %s (%s).", cfg.NatsURL, cfg.RankingSubject)
	} else {
		log.Println("[Main] NATS_URL vazio; placares finais não serão publicados.")
	}

	// 3. MONTA A LÓGICA DO JOGO E O SERVIDOR DE REDE
	gameHandler := session.NewGameHandler(sink)
	server := network.NewServer(gameHandler)
	gameHandler.AttachHub(server.Hub())
	log.Println("[Main] GameHandler e servidor de rede criados.")

	// 4. HEALTH CHECK + REGISTRO NO CONSUL (opcional)
	http.HandleFunc("/health", cluster.NewBasicHealthHandler())
	if cfg.ConsulAddr != "" {
		if err := cluster.RegisterServiceInConsul(cfg.ServiceName, cfg.ServicePort, cfg.HealthPort, cfg.ConsulAddr); err != nil {
			log.Fatalf("Fatal: Falha ao registrar serviço no Consul: %v", err)
		}
		log.Printf("[Main] Serviço '%s' registrado no Consul.", cfg.ServiceName)
	} else {
		log.Println("[Main] CONSUL_HTTP_ADDR vazio; registro de serviço desligado.")
	}

	// 5. INICIA O SERVIDOR PRINCIPAL (bloqueante)
	address := fmt.Sprintf("0.0.0.0:%d", cfg.ServicePort)
	if err := server.Listen(address); err != nil {
		log.Fatalf("Falha fatal ao iniciar o servidor de rede: %v", err)
	}
}
