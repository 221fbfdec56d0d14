package sdk

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/lox/bountybot/game"
)

// Option configures Run.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	cfg    game.Config
}

// WithLogger attaches a logger to the client. The default discards.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStakes overrides the default table stakes. The stakes must match the
// engine's or the replayed states will drift.
func WithStakes(cfg game.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// Run dials the engine at addr (host:port), plays the match with handler,
// and returns once the engine quits. Cancelling ctx closes the connection,
// which unblocks the read loop.
func Run(ctx context.Context, addr string, handler Handler, opts ...Option) error {
	o := options{logger: zerolog.Nop(), cfg: game.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	return NewClient(conn, handler, o.cfg, o.logger).Run(ctx)
}
