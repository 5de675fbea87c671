package main

import (
	"fmt"

	"csvview/internal/config"
	"csvview/internal/loader"
	"csvview/internal/logging"
	"csvview/internal/server"
	"csvview/internal/store"
	"csvview/internal/table"
)

// app bundles the pieces every command shares.
type app struct {
	store  *store.Store
	ctrl   *table.Controller
	loader *loader.Loader
}

// openApp builds the controller and loader from c. Persistence is skipped
// when storage is disabled or persist is false.
func openApp(c *config.Config, persist bool) (*app, error) {
	delim, err := parseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}

	a := &app{
		ctrl: table.New(table.Options{
			PageSize:  c.Table.PageSize,
			BlockSize: c.Table.BlockSize,
			FastJump:  c.Table.FastJump,
		}),
	}

	var p loader.Persister
	if persist && !c.Storage.Disabled {
		st, err := store.Open(c.DatabasePath(), store.Options{MaxBytes: c.Storage.MaxBytes})
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		a.store = st
		p = st
	} else {
		logging.BootWarn("Persistence disabled for this run")
	}
	a.loader = loader.New(p, loader.Options{Delimiter: delim})
	return a, nil
}

// clearer returns the store as a server.Clearer, or nil without one.
func (a *app) clearer() server.Clearer {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.StoreError("Close failed: %v", err)
		}
	}
}
