package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kirella/bodysim/internal/config"
	"github.com/kirella/bodysim/internal/engine"
	"github.com/kirella/bodysim/internal/metrics"
	"github.com/kirella/bodysim/internal/models"
	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
	"github.com/kirella/bodysim/internal/viz"
)

var (
	tolAbs   float64
	tolRel   float64
	dt       float64
	duration float64
	theta    float64
	omega    float64
	pos      float64
	vel      float64
	wx       float64
	wy       float64
	wz       float64
	// Config file and preset name
	configFile string
	preset     string
	showPlot   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bodysim",
		Short: "adaptive multibody integration lab",
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run an adaptive simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", true, "plot the trajectory")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tolAbs, "tol-abs", config.DefaultTolAbs, "absolute tolerance")
	cmd.Flags().Float64Var(&tolRel, "tol-rel", config.DefaultTolRel, "relative tolerance")
	cmd.Flags().Float64Var(&dt, "dt", 0, "initial step size (0 = estimate)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&theta, "theta", config.DefaultTheta, "initial angle (pendulum)")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity (pendulum)")
	cmd.Flags().Float64Var(&pos, "pos", 1.0, "initial position (springmass)")
	cmd.Flags().Float64Var(&vel, "vel", 0.0, "initial velocity (springmass)")
	cmd.Flags().Float64Var(&wx, "wx", 0.0, "initial spin x (rigidbody)")
	cmd.Flags().Float64Var(&wy, "wy", 2.0, "initial spin y (rigidbody)")
	cmd.Flags().Float64Var(&wz, "wz", 0.0, "initial spin z (rigidbody)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig merges preset, config file, and flags into one run config,
// with flags taking precedence over the file and the file over the preset.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model
	cfg.InitState = config.InitStateConfig{Theta: theta, Omega: omega, Pos: pos, Vel: vel, Wx: wx, Wy: wy, Wz: wz}

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Model = model
	}

	if cmd.Flags().Changed("tol-abs") {
		cfg.TolAbs = tolAbs
	}
	if cmd.Flags().Changed("tol-rel") {
		cfg.TolRel = tolRel
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("theta") {
		cfg.InitState.Theta = theta
	}
	if cmd.Flags().Changed("omega") {
		cfg.InitState.Omega = omega
	}
	if cmd.Flags().Changed("pos") {
		cfg.InitState.Pos = pos
	}
	if cmd.Flags().Changed("vel") {
		cfg.InitState.Vel = vel
	}
	if cmd.Flags().Changed("wx") {
		cfg.InitState.Wx = wx
	}
	if cmd.Flags().Changed("wy") {
		cfg.InitState.Wy = wy
	}
	if cmd.Flags().Changed("wz") {
		cfg.InitState.Wz = wz
	}
	return cfg, nil
}

// buildSystem constructs the requested model and its initial state.
func buildSystem(cfg *config.Config) (stepper.System, statespace.State, metrics.Hamiltonian, error) {
	switch cfg.Model {
	case "pendulum":
		p := models.NewPendulum()
		return p, p.State(cfg.InitState.Theta, cfg.InitState.Omega), p, nil
	case "springmass":
		m := models.NewSpringMass()
		return m, m.State(cfg.InitState.Pos, cfg.InitState.Vel), m, nil
	case "rigidbody":
		rb := models.NewRigidBody()
		return rb, rb.State(cfg.InitState.Wx, cfg.InitState.Wy, cfg.InitState.Wz), rb, nil
	default:
		return nil, statespace.State{}, nil, fmt.Errorf("unknown model: %s", cfg.Model)
	}
}

func newStepper(cfg *config.Config, sys stepper.System) (*stepper.Stepper, error) {
	st, err := stepper.New(sys, stepper.DOPRI54(), cfg.TolAbs, cfg.TolRel)
	if err != nil {
		return nil, err
	}
	if cfg.MaxAttempts > 0 {
		st.SetMaxAttempts(cfg.MaxAttempts)
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	sys, x0, ham, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	st, err := newStepper(cfg, sys)
	if err != nil {
		return err
	}

	eng := engine.New(st, nil)
	stepSizes := metrics.NewStepSize()
	eng.AddMetric(stepSizes)
	if ham != nil {
		eng.AddMetric(metrics.NewEnergyDrift(ham))
	}

	fmt.Printf("running %s with dopri54, tolAbs=%.1e tolRel=%.1e...\n", cfg.Model, cfg.TolAbs, cfg.TolRel)
	start := time.Now()

	result, err := eng.Run(context.Background(), x0, engine.Config{Duration: cfg.Duration, InitialDt: cfg.Dt})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed)
	fmt.Fprintf(w, "steps accepted\t%d\n", result.Stats.Accepted)
	fmt.Fprintf(w, "steps rejected\t%d\n", result.Stats.Rejected)
	fmt.Fprintf(w, "f evaluations\t%d\n", result.Stats.Evaluations)
	fmt.Fprintf(w, "dt min\t%.3e\n", stepSizes.Min())
	fmt.Fprintf(w, "dt max\t%.3e\n", stepSizes.Max())
	for name, val := range result.Metrics {
		fmt.Fprintf(w, "%s\t%.6e\n", name, val)
	}
	w.Flush()

	if showPlot && len(result.States) > 1 {
		series := make([]float64, len(result.States))
		for i, s := range result.States {
			series[i] = s.Q[0][0]
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series, asciigraph.Height(12), asciigraph.Width(72), asciigraph.Caption("q[0] over time")))

		fmt.Println()
		fmt.Println(asciigraph.Plot(result.Dts, asciigraph.Height(6), asciigraph.Width(72), asciigraph.Caption("accepted dt")))
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	sys, x0, ham, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	st, err := newStepper(cfg, sys)
	if err != nil {
		return err
	}
	if err := st.Start(0, x0, cfg.Dt, nil); err != nil {
		return err
	}

	return viz.Run(st, cfg.Model, ham)
}
