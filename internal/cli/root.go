// Package cli implements the tjdecode command line tool
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/absfs/osfs"
	"github.com/absfs/tjdecode"
	"github.com/absfs/tjdecode/internal/config"
	"github.com/spf13/cobra"
)

// errFailed is returned when some files failed; they have been reported
// already
var errFailed = errors.New("one or more files failed")

type app struct {
	configPath string
	profile    string
	baseKey    string
	headerSize int
	logLevel   string
	logFile    string

	cfg      *config.File
	logger   *slog.Logger
	closeLog io.Closer
}

// Execute runs the tool with args and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.closeLog != nil {
		a.closeLog.Close()
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(stderr, "tjdecode:", describe(err))
		}
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tjdecode",
		Short: "Decode tj!, tje and tjz game asset containers",
		Long: `tjdecode recognises the encrypted asset containers shipped with the game
client, derives each file's key from its header and the client's base key,
and writes the decrypted payload next to the source or into a mirror tree.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Configuration file (default is tjdecode/config.yaml in the user config dir)")
	flags.StringVarP(&a.profile, "profile", "p", "", "Base key profile from the configuration file")
	flags.StringVarP(&a.baseKey, "base-key", "k", "", "Base key as 16 hex bytes; overrides $"+tjdecode.DefaultEnvVar+" and profiles")
	flags.IntVar(&a.headerSize, "header-size", 0, "Payload offset in bytes (default 23)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFile, "log-file", "", "Write JSON logs to this file, rotated by size")

	root.AddCommand(
		a.classifyCommand(),
		a.decodeCommand(),
		a.scanCommand(),
		a.batchCommand(),
		a.showCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, closer, err := newLogger(a.logLevel, a.logFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	a.closeLog = closer

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.headerSize != 0 {
		if err := tjdecode.ValidatePayloadOffset(a.headerSize); err != nil {
			return fmt.Errorf("--header-size: %w", err)
		}
	}
	return nil
}

// decoder builds a decoder on the local disk. workers overrides the
// configured worker count when positive.
func (a *app) decoder(workers int) (*tjdecode.Decoder, error) {
	kp, err := a.cfg.KeyProvider(a.profile, a.baseKey)
	if err != nil {
		return nil, err
	}

	fs, err := osfs.NewFS()
	if err != nil {
		return nil, err
	}

	conf := &tjdecode.Config{
		KeyProvider:   kp,
		PayloadOffset: a.cfg.HeaderSize,
		OutputInfix:   a.cfg.OutputInfix,
		Logger:        a.logger,
		Parallel:      tjdecode.ParallelConfig{MaxWorkers: a.cfg.Workers},
	}
	if a.headerSize != 0 {
		conf.PayloadOffset = a.headerSize
	}
	if workers > 0 {
		conf.Parallel.MaxWorkers = workers
	}
	return tjdecode.New(fs, conf)
}

// slashPath makes a command line path absolute in slash form
func slashPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

// describe renders an error with its corrective hint
func describe(err error) string {
	if hint := tjdecode.KindOf(err).Hint(); hint != "" {
		return fmt.Sprintf("%v (%s)", err, hint)
	}
	return err.Error()
}
