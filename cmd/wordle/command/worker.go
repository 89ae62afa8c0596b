package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-wordle/internal/driver"
	"github.com/pixil98/go-wordle/internal/lobby"
	"github.com/pixil98/go-wordle/internal/rooms"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	lexicon, err := cfg.Words.BuildLexicon()
	if err != nil {
		return nil, fmt.Errorf("loading word lists: %w", err)
	}

	catalog, err := cfg.I18n.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	settings, err := cfg.Rooms.Settings()
	if err != nil {
		return nil, fmt.Errorf("reading room settings: %w", err)
	}
	registry := rooms.NewRegistry(lexicon, rooms.WithSettings(settings))

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	lob := lobby.New(registry, natsServer)
	term := lobby.NewTerminal(lob, catalog, cfg.I18n.Language)

	// Listeners open sessions on the bus, so they wait for it.
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		worker, err := l.BuildListener(lob, term)
		if err != nil {
			return nil, fmt.Errorf("creating %s listener %d: %w", l.Protocol, i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = &afterReady{ready: natsServer.Ready(), worker: worker}
	}

	var opts []driver.DriverOpt
	if d := cfg.tickInterval(); d > 0 {
		opts = append(opts, driver.WithTickLength(d))
	}
	janitor := driver.NewDriver([]driver.Manager{registry}, opts...)

	return service.WorkerList{
		"nats":      natsServer,
		"driver":    janitor,
		"listeners": &listeners,
	}, nil
}

// afterReady holds a worker back until ready is closed.
type afterReady struct {
	ready  <-chan struct{}
	worker service.Worker
}

func (w *afterReady) Start(ctx context.Context) error {
	select {
	case <-w.ready:
	case <-ctx.Done():
		return nil
	}
	return w.worker.Start(ctx)
}
