package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	cfio "github.com/paveg/colframe/internal/io"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/monitoring"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/validation"
	"github.com/paveg/colframe/internal/vector"
	"github.com/paveg/colframe/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	logLevel   string
	metrics    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var restoreLogger func()

	root := &cobra.Command{
		Use:   "colframe",
		Short: "Inspect and convert tabular files",
		Long: `colframe reads CSV, TSV, JSON, JSON lines and Parquet files into a typed
columnar frame. It can print a frame, describe its schema, convert between
formats, fill numeric columns with random values and split rows into random
groups.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, warnings, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			restoreLogger = logging.SetLogger(logger)
			for _, w := range warnings {
				logger.Debug("configuration", zap.String("recommendation", w))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if restoreLogger != nil {
				_ = logging.L().Sync()
				restoreLogger()
			}
			if !flags.metrics {
				return nil
			}
			summary, err := json.MarshalIndent(monitoring.Default().GetSummary(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), string(summary))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to a YAML or JSON configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.metrics, "metrics", false, "Print an operation metrics summary to stderr")

	root.AddCommand(
		newShowCmd(),
		newSchemaCmd(),
		newConvertCmd(),
		newFillCmd(),
		newSplitCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the configuration file, or the environment when no file
// is given, and applies flag overrides. The returned strings are tuning
// recommendations for the host.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, []string, error) {
	var cfg config.Config
	if flags.configFile != "" {
		loaded, err := config.LoadFromFile(flags.configFile)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadFromEnv()
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if flags.metrics {
		cfg.MetricsCollection = true
	}
	validated, warnings, err := config.NewConfigValidator().Validate(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return validated, warnings, nil
}

func newShowCmd() *cobra.Command {
	var head int
	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the first rows of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := cfio.ReadFile(args[0])
			if err != nil {
				return err
			}
			if head >= 0 && head < df.Len() {
				if df, err = df.Slice(0, head); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), df.String())
			return nil
		},
	}
	cmd.Flags().IntVarP(&head, "head", "n", 10, "Number of rows to print (negative prints all)")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema FILE",
		Short: "Describe the columns of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := cfio.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), df.Schema())
			fmt.Fprintf(cmd.OutOrStdout(), "checksum: %016x\n", df.Checksum())
			return nil
		},
	}
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert between formats chosen by file extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := cfio.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := cfio.WriteFile(args[1], df); err != nil {
				return err
			}
			logging.L().Info("converted", zap.String("from", args[0]), zap.String("to", args[1]), zap.Int("rows", df.Len()))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", df.Len(), args[1])
			return nil
		},
	}
}

// fillOptions controls how a column buffer is filled
type fillOptions struct {
	min, max float64
	seed     uint64
	dims     int
	shape    []int
}

func newFillCmd() *cobra.Command {
	var (
		opts   fillOptions
		shape  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "fill FILE COLUMN",
		Short: "Fill a numeric column with uniform random values",
		Long: `Fill overwrites a numeric column in place with values drawn uniformly from
[min, max). With --shape the column is viewed as a matrix and --dims controls
how many dimensions are random: 0 fills everything with one value, 1 gives
every row its own constant and 2 makes every cell random.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return dferrors.NewInvalidInputError("fill", "--output is required")
			}
			if shape != "" {
				parsed, err := parseShape(shape)
				if err != nil {
					return err
				}
				opts.shape = parsed
			}
			df, err := cfio.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := fillColumn(df, args[1], opts); err != nil {
				return err
			}
			if err := cfio.WriteFile(output, df); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "filled %s in %d rows, wrote %s\n", args[1], df.Len(), output)
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.min, "min", 0, "Lower bound (inclusive)")
	cmd.Flags().Float64Var(&opts.max, "max", 1, "Upper bound (exclusive)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&opts.dims, "dims", 1, "Number of random dimensions")
	cmd.Flags().StringVar(&shape, "shape", "", "View the column as ROWSxCOLS, one side may be -1 (e.g. -1x4)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	return cmd
}

func parseShape(s string) ([]int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	shape := make([]int, len(parts))
	for i, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, dferrors.NewInvalidInputError("fill", fmt.Sprintf("bad shape %q", s))
		}
		shape[i] = d
	}
	return shape, nil
}

func fillColumn(df *dataframe.DataFrame, name string, opts fillOptions) error {
	if opts.max < opts.min {
		return dferrors.NewInvalidInputError("fill", fmt.Sprintf("max %g is below min %g", opts.max, opts.min))
	}
	col, err := df.RawCol(name)
	if err != nil {
		return err
	}
	if err := validation.ValidateNumeric(name, col.Kind(), "fill"); err != nil {
		return err
	}
	switch col.Kind() {
	case series.KindInt64:
		return fillTyped[int64](col, opts)
	case series.KindInt32:
		return fillTyped[int32](col, opts)
	case series.KindFloat64:
		return fillTyped[float64](col, opts)
	case series.KindFloat32:
		return fillTyped[float32](col, opts)
	default:
		return dferrors.NewUnsupportedTypeError("fill", col.Kind().String())
	}
}

func fillTyped[T interface {
	vector.Number
	series.Element
}](col series.Column, opts fillOptions) error {
	typed, err := series.As[T](col)
	if err != nil {
		return err
	}
	r := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	gen := vector.Uniform(r, T(opts.min), T(opts.max))
	raw := typed.Raw()

	if len(opts.shape) == 0 {
		vector.RandomFill(raw, opts.dims, gen)
		return nil
	}
	if len(opts.shape) != 2 {
		return dferrors.NewInvalidInputError("fill", "shape must have two dimensions")
	}
	view, err := vector.Reshape2(raw, opts.shape[0], opts.shape[1])
	if err != nil {
		return err
	}
	vector.RandomFill2(view, opts.dims, gen)
	return nil
}

func newSplitCmd() *cobra.Command {
	var (
		ratio  []float64
		seed   uint64
		column string
		output string
	)
	cmd := &cobra.Command{
		Use:   "split FILE",
		Short: "Assign every row to a random group",
		Long: `Split adds an int64 column holding a random group number for every row.
Group sizes follow --ratio (normalized); rows left over by rounding go to
group 0. The same seed always produces the same assignment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return dferrors.NewInvalidInputError("split", "--output is required")
			}
			df, err := cfio.ReadFile(args[0])
			if err != nil {
				return err
			}
			r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			groups, err := vector.GenerateGroups(df.Len(), ratio, r)
			if err != nil {
				return err
			}
			labels := make([]int64, len(groups))
			for i, g := range groups {
				labels[i] = int64(g)
			}
			if _, err := df.InsertColumn(series.New(column, labels)); err != nil {
				return err
			}
			if err := cfio.WriteFile(output, df); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "split %d rows into %d groups, wrote %s\n", df.Len(), len(ratio), output)
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&ratio, "ratio", []float64{0.8, 0.1, 0.1}, "Relative group sizes")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&column, "column", "group", "Name of the added column")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info()
			if !asJSON {
				fmt.Fprint(cmd.OutOrStdout(), info.String())
				return nil
			}
			data, err := json.Marshal(info)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
