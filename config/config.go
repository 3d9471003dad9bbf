// Package config loads the board description from a TOML file.
package config

import (
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/drivers"
)

const DefaultPath = "config.toml"

type Config struct {
	Name     string   `toml:"name"`
	LogLevel string   `toml:"log_level"`
	Dwell    Duration `toml:"dwell"`

	Clocks   Clocks                    `toml:"clocks"`
	Ports    map[string]drivers.Config `toml:"ports"`
	Leds     map[string]Led            `toml:"leds"`
	Encoders []Encoder                 `toml:"encoders"`
}

type Clocks struct {
	ExternalOscillatorHz uint32 `toml:"external_oscillator_hz"`
	SystemClockHz        uint32 `toml:"system_clock_hz"`
	PeripheralClockHz    uint32 `toml:"peripheral_clock_hz"`
	RequireUSBClock      bool   `toml:"require_usb_clock"`
}

// Led wires one LED; the table key is its name, e.g. [leds.Green1].
type Led struct {
	Port   string `toml:"port"`
	Pin    uint8  `toml:"pin"`
	Invert bool   `toml:"invert"`
}

// Encoder describes a rotary encoder channel; A and B are pins like "PA6".
type Encoder struct {
	Channel int    `toml:"channel"`
	Timer   string `toml:"timer"`
	A       string `toml:"a"`
	B       string `toml:"b"`
	Enabled bool   `toml:"enabled"`
}

// Duration reads TOML strings such as "1s" or "750ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", text)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default describes the reference board with every port on the mock driver.
func Default() *Config {
	layout := ledkit.DefaultLayout()

	cfg := &Config{
		Name:     "ledkit",
		LogLevel: "info",
		Dwell:    Duration{time.Duration(ledkit.DefaultDwellMs) * time.Millisecond},
		Clocks: Clocks{
			ExternalOscillatorHz: layout.Clocks.ExternalOscillatorHz,
			SystemClockHz:        layout.Clocks.SystemClockHz,
			PeripheralClockHz:    layout.Clocks.PeripheralClockHz,
			RequireUSBClock:      layout.Clocks.RequireUSBClock,
		},
		Ports: make(map[string]drivers.Config),
		Leds:  make(map[string]Led),
	}
	for _, port := range layout.Ports() {
		cfg.Ports[string(port)] = drivers.Config{Driver: "mock"}
	}
	for _, lp := range layout.Leds {
		cfg.Leds[lp.Led.String()] = Led{Port: string(lp.Pin.Port), Pin: lp.Pin.Line, Invert: lp.Invert}
	}
	for _, ch := range layout.Encoders {
		cfg.Encoders = append(cfg.Encoders, Encoder{
			Channel: ch.Number,
			Timer:   ch.Timer,
			A:       ch.A.String(),
			B:       ch.B.String(),
			Enabled: ch.Enabled,
		})
	}
	return cfg
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are returned and found is false.
func Load(path string) (cfg *Config, found bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed reading config file %s", path)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, true, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, true, nil
}

// Parse decodes TOML onto cfg. Keys missing from [clocks] keep their current
// values, and [ports] and [leds] entries are merged by name. [[encoders]]
// replaces the whole list when present.
func Parse(data []byte, cfg *Config) error {
	file := Config{Clocks: cfg.Clocks}
	if err := toml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, "failed to parse TOML")
	}

	if file.Name != "" {
		cfg.Name = file.Name
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.Dwell.Duration != 0 {
		cfg.Dwell = file.Dwell
	}
	cfg.Clocks = file.Clocks

	if cfg.Ports == nil {
		cfg.Ports = make(map[string]drivers.Config)
	}
	for port, driver := range file.Ports {
		cfg.Ports[port] = driver
	}
	if cfg.Leds == nil {
		cfg.Leds = make(map[string]Led)
	}
	for name, led := range file.Leds {
		cfg.Leds[name] = led
	}
	if file.Encoders != nil {
		cfg.Encoders = file.Encoders
	}
	return nil
}

// DwellMs is the frame dwell in whole milliseconds.
func (c *Config) DwellMs() (uint32, error) {
	ms := c.Dwell.Milliseconds()
	if ms <= 0 || ms > int64(^uint32(0)) {
		return 0, errors.Errorf("dwell %s out of range", c.Dwell)
	}
	return uint32(ms), nil
}

// Layout converts the file form into a validated ledkit.Layout.
func (c *Config) Layout() (ledkit.Layout, error) {
	layout := ledkit.Layout{
		Clocks: ledkit.ClockConfig{
			ExternalOscillatorHz: c.Clocks.ExternalOscillatorHz,
			SystemClockHz:        c.Clocks.SystemClockHz,
			PeripheralClockHz:    c.Clocks.PeripheralClockHz,
			RequireUSBClock:      c.Clocks.RequireUSBClock,
		},
	}

	names := make([]string, 0, len(c.Leds))
	for name := range c.Leds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		id, err := ledkit.ParseLedId(name)
		if err != nil {
			return ledkit.Layout{}, errors.Wrap(err, "leds")
		}
		led := c.Leds[name]
		port, err := ParsePort(led.Port)
		if err != nil {
			return ledkit.Layout{}, errors.Wrapf(err, "led %s", name)
		}
		layout.Leds = append(layout.Leds, ledkit.LedPin{
			Led:    id,
			Pin:    ledkit.PinRef{Port: port, Line: led.Pin},
			Invert: led.Invert,
		})
	}

	for _, enc := range c.Encoders {
		a, err := ParsePinRef(enc.A)
		if err != nil {
			return ledkit.Layout{}, errors.Wrapf(err, "encoder %d phase A", enc.Channel)
		}
		b, err := ParsePinRef(enc.B)
		if err != nil {
			return ledkit.Layout{}, errors.Wrapf(err, "encoder %d phase B", enc.Channel)
		}
		layout.Encoders = append(layout.Encoders, ledkit.EncoderChannel{
			Number:  enc.Channel,
			Timer:   enc.Timer,
			A:       a,
			B:       b,
			Enabled: enc.Enabled,
		})
	}

	if err := layout.Validate(); err != nil {
		return ledkit.Layout{}, err
	}
	return layout, nil
}

// PortDrivers returns the driver config of every port, keyed by ledkit.Port.
func (c *Config) PortDrivers() (map[ledkit.Port]drivers.Config, error) {
	ports := make(map[ledkit.Port]drivers.Config, len(c.Ports))
	for name, driver := range c.Ports {
		port, err := ParsePort(name)
		if err != nil {
			return nil, errors.Wrap(err, "ports")
		}
		ports[port] = driver
	}
	return ports, nil
}
