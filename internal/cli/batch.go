package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/absfs/tjdecode"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) batchCommand() *cobra.Command {
	var (
		flags      scanFlags
		outDir     string
		workers    int
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "batch ROOT",
		Short: "Decode every container under a folder",
		Long: `Scan ROOT and decode every enabled container on a pool of workers. Each
file is reported as [OK] or [ERROR] as it finishes; a failing file never
stops the others. The exit status is 1 if any file failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, a.cfg)
			if err != nil {
				return err
			}
			if workers < 0 {
				return fmt.Errorf("--workers: %w", tjdecode.ValidateWorkers(workers))
			}
			root, err := slashPath(args[0])
			if err != nil {
				return err
			}

			batch := tjdecode.BatchOptions{Scan: opts}
			if outDir != "" {
				if batch.OutputDir, err = slashPath(outDir); err != nil {
					return err
				}
			}

			dec, err := a.decoder(workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			batch.OnResult = func(r tjdecode.Result) {
				mu.Lock()
				defer mu.Unlock()
				if r.OK() {
					fmt.Fprintf(out, "[OK] %s -> %s (%s)\n",
						filepath.FromSlash(r.Path), filepath.FromSlash(r.Output), humanize.Bytes(uint64(r.Size)))
				} else {
					fmt.Fprintf(out, "[ERROR] %s: %s\n", filepath.FromSlash(r.Path), describe(r.Err))
				}
			}

			report, runErr := dec.DecodeAll(cmd.Context(), root, batch)
			if report == nil {
				return runErr
			}

			fmt.Fprintf(out, "%s decoded, %s failed, %s written in %s\n",
				humanize.Comma(int64(report.Succeeded)),
				humanize.Comma(int64(report.Failed)),
				humanize.Bytes(uint64(report.BytesWritten)),
				report.Finished.Sub(report.Started).Round(time.Millisecond))

			if reportPath != "" {
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
			}

			if runErr != nil {
				return runErr
			}
			if report.Failed > 0 {
				return errFailed
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "Write outputs under this folder, mirroring ROOT")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of workers (default from config, else one per CPU)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON report of the run to this file")
	return cmd
}

func writeReport(name string, report *tjdecode.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
