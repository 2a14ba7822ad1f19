package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adaian/adreport-cli/internal/analyzer"
	"github.com/adaian/adreport-cli/internal/model"
)

var (
	analyzeFamily   string
	analyzeCampaign string
	analyzeDevice   string
	analyzeKeywords string
	analyzeCreative string
	analyzeAudience string
	analyzeOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze ad export CSVs and generate a report",
	Long:  "Reads Naver ad export files, computes totals locally, and asks the configured model backend for a Korean analysis report. The report JSON goes to stdout or --output.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		family := model.Family(analyzeFamily)
		inputs, err := collectInputs(family)
		if err != nil {
			return err
		}

		a, st, err := initAnalyzer(ctx, nil)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := a.Run(ctx, family, inputs)
		if err != nil {
			var runErr *analyzer.Error
			if errors.As(err, &runErr) {
				fmt.Fprintln(os.Stderr, runErr.UserMessage())
			}
			return err
		}

		zap.L().Info("report generated",
			zap.String("run_id", res.RunID),
			zap.String("family", string(family)),
		)

		out := os.Stdout
		if analyzeOutput != "" {
			f, err := os.Create(analyzeOutput)
			if err != nil {
				return eris.Wrapf(err, "create output file %s", analyzeOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	},
}

// collectInputs reads the per-role files named on the command line.
func collectInputs(family model.Family) ([]analyzer.Input, error) {
	paths := map[string]string{
		"campaign": analyzeCampaign,
		"device":   analyzeDevice,
		"keyword":  analyzeKeywords,
		"creative": analyzeCreative,
		"audience": analyzeAudience,
	}

	var inputs []analyzer.Input
	for role, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s file", role)
		}
		inputs = append(inputs, analyzer.Input{
			Role: role,
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return inputs, nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFamily, "family", "search", "report family: search or gfa")
	analyzeCmd.Flags().StringVar(&analyzeCampaign, "campaign", "", "campaign export CSV (required)")
	analyzeCmd.Flags().StringVar(&analyzeDevice, "device", "", "device export CSV (search family)")
	analyzeCmd.Flags().StringVar(&analyzeKeywords, "keywords", "", "keyword export CSV (search family)")
	analyzeCmd.Flags().StringVar(&analyzeCreative, "creative", "", "creative export CSV (gfa family)")
	analyzeCmd.Flags().StringVar(&analyzeAudience, "audience", "", "audience export CSV (gfa family)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "write report JSON to this file instead of stdout")
	_ = analyzeCmd.MarkFlagRequired("campaign")
	rootCmd.AddCommand(analyzeCmd)
}
