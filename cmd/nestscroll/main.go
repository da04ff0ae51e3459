package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nestscroll/internal/config"
	"github.com/san-kum/nestscroll/internal/gesture"
	"github.com/san-kum/nestscroll/internal/metrics"
	"github.com/san-kum/nestscroll/internal/panel"
	"github.com/san-kum/nestscroll/internal/scroll"
	"github.com/san-kum/nestscroll/internal/storage"
	"github.com/san-kum/nestscroll/internal/sweep"
	"github.com/san-kum/nestscroll/internal/tui"
	"github.com/san-kum/nestscroll/pkg/logger"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	metricsAddr string

	// scripted fling
	flingDistance float64
	flingDuration time.Duration
	flingSteps    int
	maxTicks      int
	printEvery    int

	sweepSpeeds    []float64
	sweepRates     []float64
	sweepDirection float64

	saveSession bool
	saveRun     bool

	cfg     *config.Config
	log     logger.Logger
	logFile *os.File
)

func main() {
	rootCmd := &cobra.Command{
		Use:                "nestscroll",
		Short:              "nested scroll panel coordinator",
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		RunE:               runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "data directory (default from config)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "layout preset")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.Flags().BoolVar(&saveSession, "save", true, "save the session on exit")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "interactive terminal session",
		RunE:  runTUI,
	}
	runCmd.Flags().BoolVar(&saveSession, "save", true, "save the session on exit")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "headless scripted fling",
		RunE:  simulate,
	}
	simulateCmd.Flags().Float64Var(&flingDistance, "distance", -600, "pointer travel in points (negative is upwards)")
	simulateCmd.Flags().DurationVar(&flingDuration, "duration", 100*time.Millisecond, "drag duration")
	simulateCmd.Flags().IntVar(&flingSteps, "steps", 6, "drag samples after begin")
	simulateCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "frame limit for momentum")
	simulateCmd.Flags().IntVar(&printEvery, "every", 10, "print every n-th frame")
	simulateCmd.Flags().BoolVar(&saveRun, "save", false, "save the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare fling outcomes across release speeds and rates",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64SliceVar(&sweepSpeeds, "speeds", []float64{500, 1000, 2000, 4000, 8000}, "release speeds in points/s")
	sweepCmd.Flags().Float64SliceVar(&sweepRates, "rates", nil, "deceleration rates (default from config)")
	sweepCmd.Flags().Float64Var(&sweepDirection, "direction", -1, "pointer direction at release: -1 up, 1 down")
	sweepCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "frame limit per case")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run offsets",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "re-run recorded inputs and compare offsets",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list layout presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  dumpConfig,
	}

	rootCmd.AddCommand(runCmd, simulateCmd, sweepCmd, listCmd, plotCmd, exportCmd, replayCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRunE is skipped when a command fails.
		teardown(rootCmd, nil)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The TUI owns the terminal, so it logs to a file instead.
	var w io.Writer = os.Stderr
	if cmd.Name() == "nestscroll" || cmd.Name() == "run" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, "nestscroll.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		logFile, w = f, f
	}

	log, err = logger.New(w, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Init(log)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// serveMetrics exposes the collector when an address is configured.
func serveMetrics(ctx context.Context, c *metrics.Collector) {
	if cfg.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
}

func newCoordinator(l config.Layout, rate float64, resetLock bool, observers ...scroll.Observer) *scroll.Coordinator {
	opts := []scroll.Option{
		scroll.WithInnerPanel(panel.NewInner(l.InnerTop, l.InnerContent, l.InnerViewport)),
		scroll.WithDecelerationRate(rate),
		scroll.WithResetLockOnBegin(resetLock),
		scroll.WithLogger(log.Named("scroll")),
	}
	for _, o := range observers {
		opts = append(opts, scroll.WithObserver(o))
	}
	return scroll.NewCoordinator(panel.NewOuter(l.OuterContent, l.OuterViewport), opts...)
}

func observers(ms []metrics.Metric) []scroll.Observer {
	out := make([]scroll.Observer, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

func runMetadata(source string) storage.RunMetadata {
	return storage.RunMetadata{
		Source:           source,
		Preset:           preset,
		Layout:           cfg.Layout,
		DecelerationRate: cfg.DecelerationRate,
		FPS:              cfg.FPS,
		ResetLockOnBegin: cfg.ResetLockOnBegin,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rec := storage.NewRecorder()
	session := metrics.Defaults()
	collector := metrics.NewCollector()
	serveMetrics(ctx, collector)

	opts := []tui.Option{
		tui.WithLogger(log),
		tui.WithObserver(rec),
		tui.WithObserver(collector),
	}
	for _, o := range observers(session) {
		opts = append(opts, tui.WithObserver(o))
	}

	m := tui.New(cfg, opts...)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return err
	}

	if !saveSession || rec.Len() == 0 {
		return nil
	}

	// Terminal resizes are recorded as frames, so the configured layout is
	// where a replay starts.
	meta := runMetadata("tui")
	meta.Metrics = metrics.Summary(session)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(meta, rec.Frames())
	if err != nil {
		return err
	}
	log.Info(ctx, "session saved", logger.String("id", id), logger.Int("frames", rec.Len()))
	fmt.Printf("saved: %s\n", id)
	return nil
}

func simulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fling := gesture.Fling{Distance: flingDistance, Duration: flingDuration, Steps: flingSteps}
	samples, err := fling.Samples()
	if err != nil {
		return err
	}

	rec := storage.NewRecorder()
	session := metrics.Defaults()
	collector := metrics.NewCollector()
	serveMetrics(ctx, collector)

	c := newCoordinator(cfg.Layout, cfg.DecelerationRate, cfg.ResetLockOnBegin,
		append(observers(session), rec, collector)...)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tT\tPHASE\tOUTER\tINNER\tLOCKED")

	for _, ts := range samples {
		c.Handle(ts.Sample)
		o := c.Offsets()
		fmt.Fprintf(w, "-\t%s\t%s\t%.1f\t%.1f\t%v\n", ts.At, ts.Sample.Phase, o.Outer, o.Inner, c.InnerLocked())
	}

	if printEvery < 1 {
		printEvery = 1
	}
	frame := time.Second / time.Duration(cfg.FPS)
	var elapsed time.Duration
	ticks := 0
	for ticks < maxTicks && c.State() == scroll.StateDecelerating {
		select {
		case <-ctx.Done():
			w.Flush()
			return ctx.Err()
		default:
		}

		c.Tick(frame)
		elapsed += frame
		ticks++

		if ticks%printEvery == 0 || c.State() != scroll.StateDecelerating {
			o := c.Offsets()
			fmt.Fprintf(w, "%d\t%s\tmomentum\t%.1f\t%.1f\t%v\n", ticks, (flingDuration + elapsed).Round(time.Millisecond), o.Outer, o.Inner, c.InnerLocked())
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if c.State() == scroll.StateDecelerating {
		log.Warn(ctx, "momentum still running at frame limit", logger.Int("max_ticks", maxTicks))
	}

	summary := metrics.Summary(session)
	fmt.Printf("\nframes: %d\n", ticks)
	for _, m := range session {
		fmt.Printf("%s: %.2f\n", m.Name(), summary[m.Name()])
	}

	if !saveRun {
		return nil
	}

	meta := runMetadata("simulate")
	meta.Metrics = summary
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(meta, rec.Frames())
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rates := sweepRates
	if len(rates) == 0 {
		rates = []float64{cfg.DecelerationRate}
	}

	start := time.Now()
	results, err := sweep.Run(ctx, sweep.Config{
		Layout:           cfg.Layout,
		Direction:        sweepDirection,
		Frame:            time.Second / time.Duration(cfg.FPS),
		MaxTicks:         maxTicks,
		ResetLockOnBegin: cfg.ResetLockOnBegin,
	}, sweep.Grid(sweepSpeeds, rates))
	if err != nil {
		return err
	}
	log.Debug(ctx, "sweep finished", logger.Int("cases", len(results)), logger.Any("took", time.Since(start)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPEED\tRATE\tOUTER\tINNER\tLOCKED\tHANDOFFS\tFRAMES\tSTOP")
	for _, r := range results {
		reason := string(r.Reason)
		if reason == "" {
			reason = "running"
		}
		fmt.Fprintf(w, "%.0f\t%.3f\t%.1f\t%.1f\t%v\t%d\t%d\t%s\n",
			r.Speed, r.Rate, r.Final.Outer, r.Final.Inner, r.Locked, r.Handoffs, r.Frames, reason)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tPRESET\tTIME\tFRAMES\tHANDOFFS\tRATE")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.0f\t%.3f\n",
			run.ID,
			run.Source,
			p,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Metrics["handoffs"],
			run.DecelerationRate,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("frames: %d\n\n", len(frames))

	outer := make([]float64, len(frames))
	inner := make([]float64, len(frames))
	for i, f := range frames {
		outer[i] = f.Outer
		inner[i] = f.Inner
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"outer offset", outer},
		{"inner offset", inner},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(cfg.DataDir).ExportJSON(os.Stdout, args[0])
}

func replayRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	c := newCoordinator(meta.Layout, meta.DecelerationRate, meta.ResetLockOnBegin)
	res, err := storage.Replay(frames, c)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("frames: %d\n", res.Frames)
	fmt.Printf("final: outer %.1f inner %.1f\n", res.Final.Outer, res.Final.Inner)
	fmt.Printf("max deviation: %.6f\n", res.MaxDeviation)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOUTER\tINNER TOP\tINNER\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		l := p.Layout
		fmt.Fprintf(w, "%s\t%.0f/%.0f\t%.0f\t%.0f/%.0f\t%s\n",
			name, l.OuterContent, l.OuterViewport, l.InnerTop, l.InnerContent, l.InnerViewport, p.Description)
	}
	return w.Flush()
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
