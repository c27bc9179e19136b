// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/neurotradx/neurotradx/internal/clients/eodhd"
	"github.com/neurotradx/neurotradx/internal/clients/yahoo"
	"github.com/neurotradx/neurotradx/internal/database"
	"github.com/neurotradx/neurotradx/internal/insights"
	"github.com/neurotradx/neurotradx/internal/marketdata"
	"github.com/neurotradx/neurotradx/internal/modules/market"
	"github.com/neurotradx/neurotradx/internal/modules/optimization"
	"github.com/neurotradx/neurotradx/internal/modules/settings"
	"github.com/neurotradx/neurotradx/internal/modules/users"
	"github.com/neurotradx/neurotradx/internal/scheduler"
)

// Container holds all application dependencies. It is created by Wire.
type Container struct {
	// Databases
	UsersDB  *database.DB
	ConfigDB *database.DB

	// Repositories
	SettingsRepo *settings.Repository
	UserRepo     *users.Repository

	// Clients
	YahooClient *yahoo.Client
	EODHDClient *eodhd.Client // nil unless the eodhd provider is selected

	// Services
	PriceLoader         *marketdata.Loader
	Narrator            *insights.Adapter
	SettingsService     *settings.Service
	UserService         *users.Service
	OptimizationService *optimization.Service
	MarketService       *market.Service
}

// Databases lists the open databases in a stable order.
func (c *Container) Databases() []*database.DB {
	return []*database.DB{c.UsersDB, c.ConfigDB}
}

// Close closes every open database.
func (c *Container) Close() {
	for _, db := range c.Databases() {
		if db != nil {
			_ = db.Close()
		}
	}
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	WALCheckpoint  *scheduler.WALCheckpointJob
	IntegrityCheck *scheduler.IntegrityCheckJob
}

// All returns the jobs as a slice, for manual triggering.
func (j *JobInstances) All() []scheduler.Job {
	return []scheduler.Job{j.WALCheckpoint, j.IntegrityCheck}
}
