package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/voxbridge/internal/envvar"
)

// Environment is the runtime environment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// FromEnv reads the environment from VOXBRIDGE_ENV, defaulting to development.
func FromEnv() Environment {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envvar.VoxbridgeEnv))) {
	case "prod", "production":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
