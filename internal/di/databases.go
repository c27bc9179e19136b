package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/config"
	"github.com/neurotradx/neurotradx/internal/database"
)

// InitializeDatabases opens and migrates users.db and config.db
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// users.db - accounts and preferences
	usersDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "users.db"),
		Profile: database.ProfileDurable,
		Name:    "users",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize users database: %w", err)
	}
	container.UsersDB = usersDB

	// config.db - runtime settings
	configDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		usersDB.Close()
		return nil, fmt.Errorf("failed to initialize config database: %w", err)
	}
	container.ConfigDB = configDB

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized")
	return container, nil
}
