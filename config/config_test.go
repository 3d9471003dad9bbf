package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hubertat/ledkit"
)

const sampleConfig = `
name = "panel"
log_level = "debug"
dwell = "500ms"

[ports.B]
driver = "gpiocdev"
chip = "gpiochip1"

[ports.F]
driver = "mcpio"
bus = 1
device = 32
invert_outputs = true

[[encoders]]
channel = 2
timer = "TIM3"
a = "PB8"
b = "PB9"
enabled = true
`

func writeConfig(t testing.TB, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed writing config: %v", err)
	}
	return path
}

func TestDefaultLayoutRoundTrip(t *testing.T) {
	cfg := Default()

	layout, err := cfg.Layout()
	if err != nil {
		t.Fatalf("Layout returned err: %v", err)
	}

	want := ledkit.DefaultLayout()
	for _, wantLed := range want.Leds {
		found := false
		for _, lp := range layout.Leds {
			if lp == wantLed {
				found = true
			}
		}
		if !found {
			t.Errorf("led %s not wired to %s", wantLed.Led, wantLed.Pin)
		}
	}
	if len(layout.Encoders) != len(want.Encoders) {
		t.Fatalf("got %d encoders want %d", len(layout.Encoders), len(want.Encoders))
	}
	for i := range want.Encoders {
		if layout.Encoders[i] != want.Encoders[i] {
			t.Errorf("encoder %d got %+v want %+v", i, layout.Encoders[i], want.Encoders[i])
		}
	}
	if layout.Clocks != want.Clocks {
		t.Errorf("got clocks %+v want %+v", layout.Clocks, want.Clocks)
	}

	ms, err := cfg.DwellMs()
	if err != nil || ms != 1000 {
		t.Errorf("got dwell %d, %v want 1000", ms, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned err: %v", err)
	}
	if found {
		t.Error("missing file reported as found")
	}
	if cfg.Ports["F"].Driver != "mock" {
		t.Errorf("default port F driver %q want mock", cfg.Ports["F"].Driver)
	}
}

func TestLoad(t *testing.T) {
	cfg, found, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load returned err: %v", err)
	}
	if !found {
		t.Error("existing file reported as missing")
	}

	if cfg.Name != "panel" || cfg.LogLevel != "debug" {
		t.Errorf("got name %q level %q", cfg.Name, cfg.LogLevel)
	}
	if cfg.Dwell.Duration != 500*time.Millisecond {
		t.Errorf("got dwell %s want 500ms", cfg.Dwell)
	}

	ports, err := cfg.PortDrivers()
	if err != nil {
		t.Fatalf("PortDrivers returned err: %v", err)
	}
	// A, C and D were not in the file and keep their mock drivers
	if len(ports) != 5 {
		t.Errorf("got %d ports want 5", len(ports))
	}
	if ports["A"].Driver != "mock" {
		t.Errorf("got port A driver %q want mock", ports["A"].Driver)
	}
	if ports["B"].Chip != "gpiochip1" {
		t.Errorf("got chip %q want gpiochip1", ports["B"].Chip)
	}
	f := ports["F"]
	if f.Driver != "mcpio" || f.BusNo != 1 || f.DevNo != 32 || !f.InvertOutputs {
		t.Errorf("port F config not loaded: %+v", f)
	}

	layout, err := cfg.Layout()
	if err != nil {
		t.Fatalf("Layout returned err: %v", err)
	}
	if len(layout.Encoders) != 1 || layout.Encoders[0].A != (ledkit.PinRef{Port: "B", Line: 8}) {
		t.Errorf("encoders not replaced: %+v", layout.Encoders)
	}
	// leds were not in the file, so the reference wiring stays
	if len(layout.Leds) != 14 {
		t.Errorf("got %d leds want 14", len(layout.Leds))
	}
}

func TestLoadPartialClocks(t *testing.T) {
	defaults := Default().Clocks

	cases := map[string]struct {
		content string
		want    Clocks
	}{
		"usb only": {
			content: "[clocks]\nrequire_usb_clock = false\n",
			want: Clocks{
				ExternalOscillatorHz: defaults.ExternalOscillatorHz,
				SystemClockHz:        defaults.SystemClockHz,
				PeripheralClockHz:    defaults.PeripheralClockHz,
			},
		},
		"system clock only": {
			content: "[clocks]\nsystem_clock_hz = 96000000\n",
			want: Clocks{
				ExternalOscillatorHz: defaults.ExternalOscillatorHz,
				SystemClockHz:        96000000,
				PeripheralClockHz:    defaults.PeripheralClockHz,
				RequireUSBClock:      defaults.RequireUSBClock,
			},
		},
		"no table": {
			content: `name = "panel"`,
			want:    defaults,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, _, err := Load(writeConfig(t, tc.content))
			if err != nil {
				t.Fatalf("Load returned err: %v", err)
			}
			if cfg.Clocks != tc.want {
				t.Errorf("got clocks %+v want %+v", cfg.Clocks, tc.want)
			}
			if _, err := cfg.Layout(); err != nil {
				t.Errorf("Layout returned err: %v", err)
			}
		})
	}
}

func TestLoadMergesPorts(t *testing.T) {
	cfg, _, err := Load(writeConfig(t, "[ports.F]\ndriver = \"gpiocdev\"\n\n[leds.Red1]\nport = \"F\"\npin = 11\n"))
	if err != nil {
		t.Fatalf("Load returned err: %v", err)
	}

	ports, err := cfg.PortDrivers()
	if err != nil {
		t.Fatalf("PortDrivers returned err: %v", err)
	}
	for _, port := range []ledkit.Port{"A", "B", "C", "D"} {
		if ports[port].Driver != "mock" {
			t.Errorf("got port %s driver %q want mock", port, ports[port].Driver)
		}
	}
	if ports["F"].Driver != "gpiocdev" {
		t.Errorf("got port F driver %q want gpiocdev", ports["F"].Driver)
	}

	layout, err := cfg.Layout()
	if err != nil {
		t.Fatalf("Layout returned err: %v", err)
	}
	if len(layout.Leds) != 14 {
		t.Errorf("got %d leds want 14", len(layout.Leds))
	}
	for _, lp := range layout.Leds {
		if lp.Led == ledkit.LedRed1 && lp.Pin != (ledkit.PinRef{Port: "F", Line: 11}) {
			t.Errorf("got Red1 on %s want PF11", lp.Pin)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":   "name = ",
		"duration": `dwell = "soon"`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := Load(writeConfig(t, content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLayoutErrors(t *testing.T) {
	t.Run("unknown led", func(t *testing.T) {
		cfg := Default()
		cfg.Leds["Purple1"] = Led{Port: "A", Pin: 2}
		if _, err := cfg.Layout(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad encoder pin", func(t *testing.T) {
		cfg := Default()
		cfg.Encoders[1].A = "X6"
		if _, err := cfg.Layout(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("led on encoder pin", func(t *testing.T) {
		cfg := Default()
		cfg.Leds["Green1"] = Led{Port: "A", Pin: 6}
		if _, err := cfg.Layout(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestParsePinRef(t *testing.T) {
	ref, err := ParsePinRef("pd13")
	if err != nil {
		t.Fatalf("ParsePinRef returned err: %v", err)
	}
	if ref != (ledkit.PinRef{Port: "D", Line: 13}) {
		t.Errorf("got %s want PD13", ref)
	}

	for _, bad := range []string{"", "P", "PA", "A6", "P16", "PA300", "P$1"} {
		if _, err := ParsePinRef(bad); err == nil {
			t.Errorf("ParsePinRef(%q) returned nil error", bad)
		}
	}
}
