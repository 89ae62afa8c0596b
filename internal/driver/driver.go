package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	DefaultTickLength = time.Minute
)

// Manager is anything that needs periodic housekeeping.
type Manager interface {
	Tick(context.Context) error
}

// Driver ticks its managers on a fixed interval until its context ends.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "driver started", "tickLength", d.tickLength, "managers", len(d.managers))

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				slog.WarnContext(ctx, "driver tick", "error", err)
			}
		}
	}
}

// Tick runs every manager once. A failing manager does not stop the others.
func (d *Driver) Tick(ctx context.Context) error {
	el := errors.NewErrorList()
	for _, m := range d.managers {
		el.Add(m.Tick(ctx))
	}
	return el.Err()
}
