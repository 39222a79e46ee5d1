package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes a service instance announced to Consul.
type Registration struct {
	ID       string
	Name     string
	Host     string
	HTTPPort int
	GRPCPort int
	Tags     []string
}

// ConsulRegistry registers service instances with a Consul agent.
type ConsulRegistry struct {
	agent  *api.Agent
	logger *zerolog.Logger
}

// NewConsulRegistry creates a registry talking to the agent at addr.
func NewConsulRegistry(logger *zerolog.Logger, addr string) (*ConsulRegistry, error) {
	cfg := api.DefaultConfig()
	cfg.Address = addr

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistry{agent: client.Agent(), logger: logger}, nil
}

// Register announces the instance with a gRPC health check on its gRPC port.
func (r *ConsulRegistry) Register(reg Registration) error {
	if err := r.agent.ServiceRegister(buildServiceRegistration(reg)); err != nil {
		return fmt.Errorf("failed to register service %q: %w", reg.ID, err)
	}

	r.logger.Info().Str("service_id", reg.ID).Str("service", reg.Name).Msg("registered with consul")

	return nil
}

// Deregister removes the instance from the catalog.
func (r *ConsulRegistry) Deregister(id string) error {
	if err := r.agent.ServiceDeregister(id); err != nil {
		return fmt.Errorf("failed to deregister service %q: %w", id, err)
	}

	r.logger.Info().Str("service_id", id).Msg("deregistered from consul")

	return nil
}

func buildServiceRegistration(reg Registration) *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Host,
		Port:    reg.HTTPPort,
		Tags:    reg.Tags,
		Meta: map[string]string{
			"grpc_port": strconv.Itoa(reg.GRPCPort),
		},
		Check: &api.AgentServiceCheck{
			GRPC:                           net.JoinHostPort(reg.Host, strconv.Itoa(reg.GRPCPort)),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}
