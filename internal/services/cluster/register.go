package cluster

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"
)

// RegisterServiceInConsul registra este processo no Consul com um health
// check HTTP. O agente do Consul resolve o endereço do contêiner sozinho,
// então só informamos nome, porta e a URL do check.
func RegisterServiceInConsul(serviceName string, servicePort int, healthPort int, consulAddr string) error {
	config := consul.DefaultConfig()
	config.Address = consulAddr

	consulClient, err := consul.NewClient(config)
	if err != nil {
		return fmt.Errorf("creating consul client: %w", err)
	}

	// O hostname gera um ID de serviço único por instância.
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	serviceID := fmt.Sprintf("%s-%s", serviceName, hostname)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: serviceName,
		Port: servicePort,
		Check: &consul.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", hostname, healthPort),
			Timeout:  "5s",
			Interval: "10s",
			// Desregistra sozinho se a instância ficar crítica por 1 minuto.
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := consulClient.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("registering service %q: %w", serviceID, err)
	}
	return nil
}
