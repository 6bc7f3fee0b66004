package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/ctcbeam/internal/batch"
	"github.com/MeKo-Tech/ctcbeam/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// decodeCmd represents the decode command.
var decodeCmd = &cobra.Command{
	Use:   "decode [emissions files]",
	Short: "Decode emission files into label strings",
	Long: `Decode one or more emissions files to label strings.

Emissions files are JSON documents of the form {"frames": [[...], ...]}
with one row per timestep and one probability per class. Class 0 is the
blank; class i+1 corresponds to line i of the alphabet file. Directory
arguments are expanded, optionally recursively.

Examples:
  ctcbeam decode emissions.json --alphabet alphabet.txt
  ctcbeam decode *.json --alphabet alphabet.txt --method greedy
  ctcbeam decode ./emissions --recursive --include "*.json" --alphabet alphabet.txt
  ctcbeam decode emissions.json --alphabet alphabet.txt --beam-width 25 --format json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		// Get configuration (includes CLI flags, config file, env vars, and defaults)
		cfg := GetConfig()

		method := cfg.Decoder.Method
		if method != config.MethodGreedy && method != config.MethodBeamSearch {
			return fmt.Errorf("invalid decode method: %s (must be %s or %s)",
				method, config.MethodGreedy, config.MethodBeamSearch)
		}

		format := cfg.Output.Format
		isValidFormat := false
		for _, f := range batch.ValidFormats() {
			if format == f {
				isValidFormat = true
				break
			}
		}
		if !isValidFormat {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join(batch.ValidFormats(), ", "))
		}

		if cfg.Decoder.AlphabetPath == "" {
			return errors.New("no alphabet file provided (use --alphabet)")
		}

		recursive, _ := cmd.Flags().GetBool("recursive")
		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		quiet, _ := cmd.Flags().GetBool("quiet")
		stats, _ := cmd.Flags().GetBool("stats")

		batchConfig := &batch.Config{
			AlphabetPath:    cfg.Decoder.AlphabetPath,
			Method:          method,
			BeamWidth:       cfg.Decoder.BeamWidth,
			Top:             cfg.Decoder.Top,
			Format:          format,
			OutputFile:      cfg.Output.File,
			ScorePrecision:  cfg.Output.ScorePrecision,
			Workers:         cfg.Decoder.Workers,
			Recursive:       recursive,
			IncludePatterns: include,
			ExcludePatterns: exclude,
			Quiet:           quiet,
			ShowStats:       stats,
		}

		result, err := batch.ProcessBatch(args, batchConfig)
		if err != nil {
			return err
		}

		if err := result.SaveResults(cmd.OutOrStdout(), format, cfg.Output.File,
			cfg.Output.ScorePrecision, quiet); err != nil {
			return err
		}

		if stats {
			result.PrintStats(cmd.OutOrStdout(), quiet)
		}

		if n := result.Failed(); n > 0 {
			return fmt.Errorf("%d file(s) failed to decode", n)
		}
		return nil
	},
}

func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("method", "m", config.MethodBeamSearch,
		"decode method (greedy, beam_search)")
	cmd.Flags().IntP("beam-width", "w", 10, "beam width for beam search")
	cmd.Flags().IntP("top", "t", 5, "number of hypotheses to report per file")
	cmd.Flags().Int("workers", 4, "number of files to decode concurrently")
	cmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().Int("score-precision", 6, "decimal places for scores in text output")
	cmd.Flags().BoolP("recursive", "r", false, "recurse into directory arguments")
	cmd.Flags().StringSlice("include", nil, "include only files matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "exclude files matching these glob patterns")
	cmd.Flags().BoolP("quiet", "q", false, "suppress non-result output")
	cmd.Flags().Bool("stats", false, "print processing statistics")
}

// bindDecodeFlags binds all flags to viper configuration keys.
func bindDecodeFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"decoder.method", "method"},
		{"decoder.beam_width", "beam-width"},
		{"decoder.top", "top"},
		{"decoder.workers", "workers"},
		{"output.format", "format"},
		{"output.file", "output"},
		{"output.score_precision", "score-precision"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	addDecodeFlags(decodeCmd)
	bindDecodeFlags(decodeCmd)
}

// GetDecodeCommand returns the decode command for testing purposes.
func GetDecodeCommand() *cobra.Command {
	return decodeCmd
}
