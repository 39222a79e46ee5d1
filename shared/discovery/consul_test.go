package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildServiceRegistration(t *testing.T) {
	reg := buildServiceRegistration(Registration{
		ID:       "content-service-1",
		Name:     "content-service",
		Host:     "10.0.0.5",
		HTTPPort: 8080,
		GRPCPort: 9090,
		Tags:     []string{"http"},
	})

	assert.Equal(t, "content-service-1", reg.ID)
	assert.Equal(t, "content-service", reg.Name)
	assert.Equal(t, "10.0.0.5", reg.Address)
	assert.Equal(t, 8080, reg.Port)
	assert.Equal(t, []string{"http"}, reg.Tags)
	assert.Equal(t, "9090", reg.Meta["grpc_port"])
	if assert.NotNil(t, reg.Check) {
		assert.Equal(t, "10.0.0.5:9090", reg.Check.GRPC)
		assert.Equal(t, "1m", reg.Check.DeregisterCriticalServiceAfter)
	}
}
