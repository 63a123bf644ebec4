package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/phantomgo/internal/config"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"github.com/san-kum/phantomgo/internal/hd/openhaptics"
	"github.com/san-kum/phantomgo/internal/logging"
	"github.com/san-kum/phantomgo/internal/monitor"
	"github.com/san-kum/phantomgo/internal/pen"
	"github.com/san-kum/phantomgo/internal/phantom"
	"github.com/san-kum/phantomgo/internal/simdevice"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configFile string
	preset     string
	backend    string
	rate       uint32
	logLevel   string
	logFile    string
	duration   float64
	theme      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "phantomgo",
		Short:        "haptic stylus servo loop",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "scene preset (ignored with --config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", config.BackendSim, "device backend: sim or openhaptics")
	rootCmd.PersistentFlags().Uint32Var(&rate, "rate", config.DefaultRate, "servo rate in Hz")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, off)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the servo loop headless for a while and print metrics",
		RunE:  runServo,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "run the servo loop with a live terminal monitor",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here instead of discarding them")
	monitorCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print device information and workspace limits",
		RunE:  deviceInfo,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "  %s\t%s\n", name, config.Presets[name].Description)
			}
			w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write a config file with default values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, monitorCmd, infoCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig starts from the config file, or else the preset, and applies
// the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Device.Backend = backend
	}
	if flags.Changed("rate") {
		cfg.Device.Rate = rate
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rig is an opened device with a pen attached to its scene.
type rig struct {
	sim     *simdevice.Device // nil for hardware
	session *phantom.Session
	pen     *pen.Pen
	log     *zap.Logger
}

func openRig(cfg *config.Config, log *zap.Logger) (*rig, error) {
	r := &rig{log: log}

	var rt hd.Runtime
	switch cfg.Device.Backend {
	case config.BackendOpenHaptics:
		var err error
		if rt, err = openhaptics.New(); err != nil {
			return nil, err
		}
	default:
		opts := cfg.SimOptions()
		opts.Logger = log
		dev, err := simdevice.New(opts)
		if err != nil {
			return nil, err
		}
		r.sim, rt = dev, dev
	}

	s, err := phantom.Connect(rt, cfg.Device.Name, log)
	if err != nil {
		return nil, err
	}
	r.session = s

	if err := s.SetSchedulerRate(cfg.Device.Rate); err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	scene, err := cfg.Scene.BuildScene()
	if err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	opts := cfg.PenOptions()
	opts.Logger = log
	if r.pen, err = pen.New(s, scene, cfg.Adapter.Build(), opts); err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	// the device may run at another rate than the one asked for
	hz, err := s.UpdateRate()
	if err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	r.pen.SetRate(hz)
	return r, nil
}

func (r *rig) start() error {
	if err := r.session.Start(); err != nil {
		return err
	}
	return r.pen.Attach()
}

func (r *rig) Close() error {
	return multierr.Append(r.pen.Detach(), r.session.Close())
}

func setupLogger(cfg *config.Config) (*zap.Logger, error) {
	log, _, err := logging.New(cfg.Log)
	return log, err
}

func runServo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	r, err := openRig(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			log.Warn("shutdown", zap.Error(cerr))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Duration*float64(time.Second)))
	defer cancel()

	if err := r.start(); err != nil {
		return err
	}
	fmt.Printf("running servo loop at %d Hz for %.1fs...\n", cfg.Device.Rate, cfg.Duration)
	start := time.Now()

	var frames, presses int
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FrameRate))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fr, err := r.pen.Frame()
				if err != nil {
					return err
				}
				frames++
				if fr.Pressed != phantom.None {
					presses++
					log.Info("buttons pressed", zap.Stringer("buttons", fr.Pressed))
				}
			}
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fields := []zap.Field{zap.Uint64("ticks", r.pen.Metrics().Ticks())}
				for _, v := range r.pen.Metrics().Values() {
					fields = append(fields, zap.Float64(v.Name, v.Value))
				}
				log.Debug("servo metrics", fields...)
			}
		}
	})
	runErr := g.Wait()
	if err := r.pen.Detach(); err != nil {
		runErr = multierr.Append(runErr, err)
	}

	rec := r.pen.Metrics()
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("servo ticks: %d\n", rec.Ticks())
	fmt.Printf("frames: %d (%d button presses)\n", frames, presses)
	if smp := r.pen.Sample(); smp != nil {
		fmt.Printf("last tip: %v\n", r.pen.Adapter().Position(smp.Tip))
	}

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, v := range rec.Values() {
		fmt.Fprintf(w, "  %s:\t%.6f\n", v.Name, v.Value)
	}
	if hz, amp := rec.Spectrum().Dominant(); amp > 0 {
		fmt.Fprintf(w, "  dominant_force_hz:\t%.1f (%.4f N)\n", hz, amp)
	}
	w.Flush()

	if hist := rec.History(); len(hist) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(hist,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("|F| [N], most recent ticks")))
	}
	return runErr
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the monitor
	switch {
	case logFile != "":
		cfg.Log.Output = logFile
	case cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" || cfg.Log.Output == "":
		cfg.Log.Level = logging.LevelOff
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	r, err := openRig(cfg, log)
	if err != nil {
		return err
	}
	if err := r.start(); err != nil {
		return multierr.Append(err, r.Close())
	}

	opts := monitor.Options{
		Title:     fmt.Sprintf("phantomgo · %s", cfg.Device.Backend),
		FrameRate: cfg.FrameRate,
		Theme:     theme,
		Workspace: r.session.WorkspaceLimits(),
	}
	if r.sim != nil {
		opts.Driver = r.sim
		opts.Motion = simdevice.Motion(cfg.Sim.Motion)
	}

	_, err = tea.NewProgram(monitor.New(r.pen, opts), tea.WithAltScreen()).Run()
	return multierr.Append(err, r.Close())
}

func deviceInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	r, err := openRig(cfg, log)
	if err != nil {
		return err
	}
	defer r.Close()

	s := r.session
	info, err := s.DeviceInfo()
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}

	var pos geom.Vec3
	var buttons phantom.Buttons
	var readErr error
	err = s.ScheduleSynchronous(func() bool {
		var perr, berr error
		pos, perr = s.Position()
		buttons, berr = s.Buttons()
		readErr = multierr.Append(perr, berr)
		return false
	}, hd.MaxPriority)
	if err = multierr.Append(err, readErr); err != nil {
		return err
	}
	hz, err := s.UpdateRate()
	if err != nil {
		return err
	}

	ws := s.WorkspaceLimits()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model:\t%s\n", info.Model)
	fmt.Fprintf(w, "serial:\t%s\n", info.Serial)
	fmt.Fprintf(w, "vendor:\t%s\n", info.Vendor)
	fmt.Fprintf(w, "driver:\t%s\n", info.DriverVersion)
	fmt.Fprintf(w, "max force:\t%.2f N\n", info.NominalMaxForce)
	fmt.Fprintf(w, "update rate:\t%d Hz\n", hz)
	fmt.Fprintf(w, "workspace:\t%v .. %v mm\n", ws.Min, ws.Max)
	fmt.Fprintf(w, "usable:\t%v .. %v mm\n", ws.UsableMin, ws.UsableMax)
	fmt.Fprintf(w, "tabletop offset:\t%.1f mm\n", ws.TabletopOffset)
	fmt.Fprintf(w, "position:\t%v mm\n", pos)
	fmt.Fprintf(w, "buttons:\t%v\n", buttons)
	return w.Flush()
}
