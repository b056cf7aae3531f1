package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decker502/netfield/pkg/app"
	"github.com/decker502/netfield/pkg/config"
	"github.com/decker502/netfield/pkg/embedded"
	"github.com/decker502/netfield/pkg/field"
	"github.com/decker502/netfield/pkg/terminal"
)

var (
	// Global flags
	verbose    bool
	presetName string
	configPath string
	watch      bool
	logFile    string

	// window / snapshot flags
	width  int
	height int

	// snapshot flags
	frames  int
	outPath string
	seed    int64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "netfield",
	Short: "Animated particle network background",
	Long: `netfield draws a field of drifting particles joined by proximity lines,
optionally attracted to the pointer.

Run without a subcommand to open a window. Presets come from the built-in
data/presets.yaml unless --config points at another file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = buildLogger(cmd.Name() == "term")
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runWindow,
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Run the animation in the terminal",
	Long: `Renders the field with tcell. Each character cell stands for 8x16 pixels.
Press q, Esc or Ctrl+C to quit. Logs are discarded unless --log-file is set.`,
	RunE: runTerminal,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render a number of frames offscreen and write a PNG",
	RunE:  runSnapshot,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available presets",
	RunE:  runPresets,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "", "Preset name (default: the file's default preset)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Preset YAML file (default: built-in presets)")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "Reload presets when --config changes")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	rootCmd.Flags().IntVar(&width, "width", app.WindowWidth, "Window width")
	rootCmd.Flags().IntVar(&height, "height", app.WindowHeight, "Window height")

	snapshotCmd.Flags().IntVar(&width, "width", 1280, "Image width")
	snapshotCmd.Flags().IntVar(&height, "height", 720, "Image height")
	snapshotCmd.Flags().IntVarP(&frames, "frames", "n", 120, "Frames to simulate before writing")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "netfield.png", "Output PNG path")
	snapshotCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0: time based)")

	rootCmd.AddCommand(termCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(presetsCmd)
}

func main() {
	embedded.Init(dataFS)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger 构建 zap 日志
// 终端模式下日志会破坏画面，没有 --log-file 时丢弃
func buildLogger(terminalMode bool) (*zap.Logger, error) {
	if terminalMode && logFile == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func loadPresets() (*config.PresetFile, error) {
	if configPath != "" {
		return config.LoadPresetFile(configPath)
	}
	return config.LoadEmbeddedPresets()
}

func loadFieldConfig() (field.Config, error) {
	presets, err := loadPresets()
	if err != nil {
		return field.Config{}, err
	}
	return presets.FieldConfig(presetName)
}

// startWatcher 在 --watch 时监视 --config 文件，把选中预设的新配置交给 apply
func startWatcher(ctx context.Context, apply func(field.Config)) (stop func(), err error) {
	if !watch {
		return func() {}, nil
	}
	if configPath == "" {
		return nil, fmt.Errorf("--watch requires --config")
	}
	pw, err := config.NewPresetWatcher(configPath, func(f *config.PresetFile) {
		cfg, err := f.FieldConfig(presetName)
		if err != nil {
			logger.Warn("[Main] reloaded presets lack the selected preset", zap.Error(err))
			return
		}
		apply(cfg)
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := pw.Start(ctx); err != nil {
		return nil, err
	}
	return pw.Stop, nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadFieldConfig()
	if err != nil {
		return err
	}

	a, err := app.NewApp(app.Config{Field: cfg, Logger: logger, Width: width, Height: height})
	if err != nil {
		return fmt.Errorf("应用初始化失败: %w", err)
	}
	defer a.Close()

	stop, err := startWatcher(cmd.Context(), a.Reload)
	if err != nil {
		return err
	}
	defer stop()

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("netfield")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logger.Info("[Main] starting window", zap.String("preset", presetName))
	return ebiten.RunGame(a)
}

func runTerminal(cmd *cobra.Command, args []string) error {
	cfg, err := loadFieldConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reload := terminal.NewReloadQueue()
	stop, err := startWatcher(ctx, reload.Offer)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		stop()
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	return terminal.Run(ctx, screen, cfg, terminal.Options{Logger: logger, Reload: reload})
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadFieldConfig()
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("--frames must be at least 1")
	}

	opts := []field.Option{field.WithLogger(logger)}
	if seed != 0 {
		opts = append(opts, field.WithRand(rand.New(rand.NewSource(seed))))
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	if err := renderSnapshot(cfg, width, height, frames, opts, out); err != nil {
		return err
	}
	logger.Info("[Main] snapshot written", zap.String("path", outPath), zap.Int("frames", frames))
	return out.Close()
}

func runPresets(cmd *cobra.Command, args []string) error {
	presets, err := loadPresets()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tBOUNDARY\tINDEX\tPOINTER")
	for _, name := range presets.Names() {
		cfg, err := presets.FieldConfig(name)
		if err != nil {
			return err
		}
		marker := ""
		if name == presets.Default {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%s%s\t%d\t%s\t%s\t%v\n", name, marker, cfg.ParticleCount, cfg.Boundary, cfg.SpatialIndex, cfg.PointerInteraction)
	}
	return w.Flush()
}
