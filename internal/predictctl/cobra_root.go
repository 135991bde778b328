package predictctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"predictord/internal/model"
	"predictord/pkg/types"
)

// Command actions; swapped out in tests.
var (
	fnRunLoad   = runLoad
	fnStatus    = fetchStatus
	fnSaveModel = model.SaveArtifact
)

func fetchStatus(ctx context.Context, cfg *Config) (*types.StatusResponse, error) {
	return newHTTPBackend(cfg.Target, nil).Status(ctx)
}

// buildRootCmdWith constructs the command tree; results are written to out.
func buildRootCmdWith(cfg *Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "predictctl",
		Short:         "Client utility for predictord",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().StringVar(&cfg.Target, "target", cfg.Target, "Server address (defaults PREDICTCTL_TARGET or 127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&cfg.Protocol, "protocol", cfg.Protocol, "Transport: grpc|http (defaults PREDICTCTL_PROTOCOL or grpc)")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults PREDICTCTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		SetLogLevel(cfg.LogLvl)
	}

	// predict
	lo := LoadOptions{}
	var timeout time.Duration
	var referencePath string
	predictCmd := &cobra.Command{
		Use:     "predict",
		Short:   "Send generated requests and report latency",
		Example: "  predictctl predict -n 1000 -c 32\n  predictctl --protocol http predict --rows 4\n  predictctl predict --reference demo.prdm",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := fnDial(cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
			info, err := b.ModelInfo(ictx)
			cancel()
			if err != nil {
				return fmt.Errorf("fetch model info: %w", err)
			}
			logger.Info().Str("model", info.Name).Str("target", cfg.Target).Str("protocol", cfg.Protocol).
				Int("count", lo.Count).Int("concurrency", lo.Concurrency).Msg("sending")
			lo.Timeout = timeout
			if referencePath != "" {
				ref, err := model.Load(referencePath)
				if err != nil {
					return fmt.Errorf("load reference: %w", err)
				}
				defer ref.Close()
				lo.Reference = ref
			}
			sum, err := fnRunLoad(ctx, b, info.Signature, lo)
			if sum != nil {
				sum.Write(out)
			}
			if err != nil {
				return err
			}
			if sum.Failed() > 0 {
				return fmt.Errorf("%d of %d requests failed", sum.Failed(), sum.Sent)
			}
			return nil
		},
	}
	predictCmd.Flags().IntVarP(&lo.Count, "count", "n", envInt("PREDICTCTL_COUNT", 100), "Number of requests")
	predictCmd.Flags().IntVarP(&lo.Concurrency, "concurrency", "c", 8, "Requests in flight")
	predictCmd.Flags().IntVar(&lo.Rows, "rows", 1, "Rows per request")
	predictCmd.Flags().Int64Var(&lo.Seed, "seed", 1, "Request generator seed")
	predictCmd.Flags().BoolVar(&lo.Weights, "weights", false, "Attach per-id weights to sparse inputs")
	predictCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Per-request timeout (0 = none)")
	predictCmd.Flags().StringVar(&referencePath, "reference", "", "Local copy of the served artifact; results are compared value by value against it (default: id and shape check only)")
	root.AddCommand(predictCmd)

	// model
	root.AddCommand(&cobra.Command{Use: "model", Short: "Print the loaded model's info", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		b, err := fnDial(cfg)
		if err != nil {
			return err
		}
		defer b.Close()
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		info, err := b.ModelInfo(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, info)
	}})

	// status (HTTP only; served on the same port)
	root.AddCommand(&cobra.Command{Use: "status", Short: "Print engine status", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		st, err := fnStatus(ctx, cfg)
		if err != nil {
			return err
		}
		return printJSON(out, st)
	}})

	// gen-model
	ro := model.DefaultRandomOptions()
	genCmd := &cobra.Command{Use: "gen-model <out.prdm>", Short: "Write a random native model artifact", Example: "  predictctl gen-model demo.prdm --seed 7 --embedding-dim 16", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		if !model.ValidDType(ro.DType) {
			return fmt.Errorf("unknown --dtype %q (want fp32, fp16 or int8)", ro.DType)
		}
		if err := fnSaveModel(args[0], model.NewRandomSpec(ro)); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", args[0])
		return nil
	}}
	genCmd.Flags().StringVar(&ro.Name, "name", ro.Name, "Model name")
	genCmd.Flags().StringVar(&ro.Version, "version", ro.Version, "Model version")
	genCmd.Flags().Int64Var(&ro.Seed, "seed", ro.Seed, "Weight seed")
	genCmd.Flags().IntSliceVar(&ro.DenseDims, "dense-dims", ro.DenseDims, "Widths of the dense inputs")
	genCmd.Flags().Int64SliceVar(&ro.Cardinalities, "cardinalities", ro.Cardinalities, "Embedding table sizes, one sparse input each")
	genCmd.Flags().IntVar(&ro.EmbeddingDim, "embedding-dim", ro.EmbeddingDim, "Embedding width")
	genCmd.Flags().IntSliceVar(&ro.Bottom, "bottom", ro.Bottom, "Bottom MLP layer sizes")
	genCmd.Flags().IntSliceVar(&ro.Over, "over", ro.Over, "Over MLP layer sizes")
	genCmd.Flags().IntVar(&ro.OutputDim, "output-dim", ro.OutputDim, "Output width")
	genCmd.Flags().StringVar(&ro.Pooling, "pooling", ro.Pooling, "Embedding bag pooling: sum|mean")
	genCmd.Flags().StringVar(&ro.DType, "dtype", ro.DType, "Weight storage: fp32|fp16|int8 (int8 is row-wise quantized)")
	genCmd.Flags().IntVar(&ro.MaxConcurrency, "max-concurrency", ro.MaxConcurrency, "Declared safe execution concurrency")
	root.AddCommand(genCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
