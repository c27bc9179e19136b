package di

import (
	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/modules/settings"
	"github.com/neurotradx/neurotradx/internal/modules/users"
)

// InitializeRepositories creates all repositories
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.SettingsRepo = settings.NewRepository(container.ConfigDB.Conn(), log)
	container.UserRepo = users.NewRepository(container.UsersDB.Conn(), log)
}
