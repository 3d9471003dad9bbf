package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/hubertat/servicemaker"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/config"
	"github.com/hubertat/ledkit/hostboard"
)

var (
	Version string
	Build   string

	configPath  = flag.String("config", config.DefaultPath, "path of the TOML configuration file")
	flagInstall = flag.Bool("install", false, "Install service in os")
	logLevel    = flag.String("log-level", "", "log level (debug, info, warn, error); overrides the config file")

	ledService = servicemaker.ServiceMaker{
		User:               "ledkit",
		UserGroups:         []string{"gpio", "i2c"},
		ServicePath:        "/etc/systemd/system/ledkit.service",
		ServiceDescription: "ledkit service: indicator LED pattern sequencer. github.com/hubertat/ledkit",
		ExecDir:            "/srv/ledkit",
		ExecName:           "ledkit",
	}
)

func main() {
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "ledkit",
	})
	logger.Info("started", "version", Version, "build", Build)

	if *flagInstall {
		if err := ledService.InstallService(); err != nil {
			logger.Fatal("service install failed", "err", err)
		}
		logger.Info("service installed!")
		return
	}

	cfg, found, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	if !found {
		logger.Warn("config file not found, running the reference board on mock ports", "path", *configPath)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
		log.SetLevel(parsed)
	} else {
		logger.Warn("unknown log level, keeping info", "level", level)
	}

	layout, err := cfg.Layout()
	if err != nil {
		logger.Fatal("invalid board layout", "err", err)
	}
	dwell, err := cfg.DwellMs()
	if err != nil {
		logger.Fatal("invalid dwell", "err", err)
	}
	portCfgs, err := cfg.PortDrivers()
	if err != nil {
		logger.Fatal("invalid port config", "err", err)
	}
	ports, err := hostboard.NewPorts(portCfgs)
	if err != nil {
		logger.Fatal("failed to create io drivers", "err", err)
	}

	board := hostboard.New(layout, ports, logger.WithPrefix("board"))
	defer board.Close()

	logger.Info("bringing up board", "name", cfg.Name, "ports", len(ports))
	sys, err := ledkit.BringUp(board, layout, ledkit.Default())
	if err != nil {
		board.Close()
		logger.Fatal("bring-up failed", "err", err)
	}
	for channel := range sys.Encoders {
		logger.Debug("encoder counter live", "channel", channel)
	}

	seq, err := ledkit.NewSequencer(ledkit.Default(), sys.Delay,
		ledkit.WithDwell(dwell),
		ledkit.WithFrameHook(func(index int, frame ledkit.Pattern) {
			logger.Debug("frame applied", "frame", index, "leds", frame)
		}),
	)
	if err != nil {
		board.Close()
		logger.Fatal("failed to create sequencer", "err", err)
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn("systemd notify failed", "err", err)
	} else if ok {
		logger.Debug("systemd notified")
	}

	if watchdog, err := daemon.SdWatchdogEnabled(false); err != nil {
		logger.Warn("systemd watchdog check failed", "err", err)
	} else if watchdog > 0 {
		logger.Info("pinging systemd watchdog", "interval", watchdog/2)
		go keepAlive(context.Background(), watchdog/2, func() {
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				logger.Warn("watchdog ping failed", "err", err)
			}
		})
	}

	logger.Info("running sequencer", "frames", len(seq.Frames()), "dwell_ms", seq.DwellMs())
	seq.Run()
}
