// Command mcp3421-read runs the HAL against an MCP3421 on a Linux I²C bus (or
// a simulated one) and logs its readings.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l0nax/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"mcp3421-go/bus"
	"mcp3421-go/services/bridge"
	"mcp3421-go/services/config"
	"mcp3421-go/services/hal"
	"mcp3421-go/services/heartbeat"
	"mcp3421-go/types"
)

const (
	flagConfig   = "config"
	flagSim      = "sim"
	flagSimVolts = "sim-volts"
	flagI2C      = "i2c"
	flagOnce     = "once"
	flagDump     = "dump"
)

var log zerolog.Logger

var dump = spew.ConfigState{
	Indent:                  "\t",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func init() {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	log = zerolog.New(cw).With().Timestamp().Logger()
}

func main() {
	app := &cli.App{
		Name:  "mcp3421-read",
		Usage: "read an MCP3421 ADC through the HAL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagConfig,
				Usage: "YAML config file; the embedded config is used when empty",
			},
			&cli.BoolFlag{
				Name:  flagSim,
				Usage: "serve simulated converters instead of hardware",
			},
			&cli.Float64Flag{
				Name:  flagSimVolts,
				Value: 0.5,
				Usage: "input voltage seen by simulated converters",
			},
			&cli.StringSliceFlag{
				Name:  flagI2C,
				Usage: "bus mapping `id=name`, e.g. i2c0=/dev/i2c-1",
			},
			&cli.BoolFlag{
				Name:  flagOnce,
				Usage: "print the first reading and exit",
			},
			&cli.BoolFlag{
				Name:  flagDump,
				Usage: "dump the config and every state document",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("mcp3421-read")
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c.Context, c.String(flagConfig), c.Bool(flagSim))
	if err != nil {
		return err
	}
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log = log.Level(lvl)
	if c.Bool(flagDump) {
		dump.Fdump(os.Stderr, cfg)
	}

	opts, err := halOptions(cfg, c.StringSlice(flagI2C), c.Bool(flagSim), c.Float64(flagSimVolts))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(32)
	ui := b.NewConnection("cli")
	values := ui.Subscribe(bus.T("hal", "capability", string(types.KindVoltage), bus.SingleWild, "value"))
	states := ui.Subscribe(bus.T("hal", "capability", bus.SingleWild, bus.SingleWild, "state"))
	services := ui.Subscribe(bus.T(bus.SingleWild, "state"))
	defer ui.Disconnect()

	halErr := make(chan error, 1)
	go func() { halErr <- hal.Run(ctx, b.NewConnection("hal"), opts) }()
	if cfg.Bridge != nil {
		go bridge.Start(ctx, b.NewConnection("bridge"))
	}
	hb := &heartbeat.Service{}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		return err
	}
	config.Publish(b.NewConnection("config"), cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping")
			return nil
		case err := <-halErr:
			return err
		case m := <-values.Channel():
			v, ok := m.Payload.(types.ADCValue)
			if !ok {
				continue
			}
			if c.Bool(flagOnce) {
				return printValue(c, m.Topic, v)
			}
			log.Info().
				Str("cap", m.Topic.String()).
				Int32("raw", v.Raw).
				Float64("volts", v.Volts).
				Int("bits", v.Bits).
				Int("gain", v.Gain).
				Msg("reading")
		case m := <-states.Channel():
			logState(c, m)
		case m := <-services.Channel():
			logState(c, m)
		}
	}
}

func loadConfig(ctx context.Context, path string, sim bool) (*config.Config, error) {
	if path == "" {
		device := "default"
		if sim {
			device = "sim"
		}
		return config.Embedded(config.WithDevice(ctx, device))
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func printValue(c *cli.Context, topic bus.Topic, v types.ADCValue) error {
	if c.Bool(flagDump) {
		dump.Fdump(c.App.Writer, v)
		return nil
	}
	_, err := c.App.Writer.Write([]byte(formatValue(topic, v) + "\n"))
	return err
}

func logState(c *cli.Context, m *bus.Message) {
	if c.Bool(flagDump) {
		dump.Fdump(os.Stderr, m.Payload)
		return
	}
	ev := log.Debug()
	switch st := m.Payload.(type) {
	case types.HALState:
		ev = log.Info().Str("level", st.Level).Str("status", st.Status).Str("error", st.Error)
	case types.CapabilityState:
		ev = log.Info().Str("link", string(st.Link)).Str("error", st.Error)
	case types.BridgeState:
		ev = log.Info().Str("link", string(st.Link)).Str("status", st.Status).Uint64("writes", st.Writes).Str("error", st.Error)
	case types.HeartbeatState:
		ev = ev.Uint64("seq", st.Seq).Int64("uptime_ms", st.UptimeMs)
	default:
		ev = ev.Interface("payload", st)
	}
	ev.Str("topic", m.Topic.String()).Msg("state")
}
