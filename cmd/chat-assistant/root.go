package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	"github.com/minhyannv/chat-assistant-go/pkg/completion"
	configpkg "github.com/minhyannv/chat-assistant-go/pkg/config"
	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
	"github.com/minhyannv/chat-assistant-go/pkg/tui"
	"github.com/minhyannv/chat-assistant-go/pkg/web"
)

const (
	localSessionID = "local"
	tuiLogFile     = "chat-assistant.log"
)

// cliOptions holds flag values shared by all subcommands.
type cliOptions struct {
	secretsPath string
	localPath   string
	verbose     bool
	addr        string
}

// app is the resolved runtime for one process.
type app struct {
	config configpkg.Config
	client *completion.Client
	logger loggerpkg.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &cliOptions{}
	defaults := configpkg.DefaultConfig()

	root := &cobra.Command{
		Use:   "chat-assistant",
		Short: "Chat with an AI assistant powered by RouteLLM",
		Long: `chat-assistant forwards your messages to an OpenAI-compatible
chat-completion endpoint and shows the conversation.

Credentials are read, in order, from the deployment secrets file
(secrets.toml, table [ROUTELLM]), the local config file (config.env),
and the ROUTELLM_API_KEY / ROUTELLM_API_BASE_URL environment variables.
Exported variables replace values from the local config file but never
the deployment secrets.

Examples:
  chat-assistant               Start the terminal chat page
  chat-assistant serve         Serve the chat page on http://localhost:8501
  chat-assistant repl          Plain line-by-line chat`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(in) || !isTerminal(out) {
				return runREPLCommand(cmd, opts, in, out, errOut)
			}
			a, err := bootstrap(opts, errOut)
			if err != nil {
				return err
			}

			// The alternate screen owns the terminal; logs go to a file.
			tuiLogger := loggerpkg.Logger(loggerpkg.NopLogger{})
			if opts.verbose {
				f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				tuiLogger = loggerpkg.NewWriterLogger(f)
			}

			session := chat.NewSession(localSessionID, a.client,
				chat.WithLogger(loggerpkg.Named(tuiLogger, "chat")),
				chat.WithVerbose(opts.verbose),
			)
			return tui.Run(cmd.Context(), session, a.client, tuiLogger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.secretsPath, "secrets", defaults.SecretsPath, "Deployment secrets file (TOML, table [ROUTELLM])")
	flags.StringVar(&opts.localPath, "config", defaults.LocalPath, "Local config file defining API_KEY and API_BASE_URL (.env or .yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", defaults.Verbose, "Verbose logging")

	root.AddCommand(newServeCmd(opts, errOut))
	root.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Chat line by line on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPLCommand(cmd, opts, in, out, errOut)
		},
	})

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root
}

func newServeCmd(opts *cliOptions, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat page to browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts, errOut)
			if err != nil {
				return err
			}
			store := chat.NewStore(a.client,
				chat.WithLogger(loggerpkg.Named(a.logger, "chat")),
				chat.WithVerbose(opts.verbose),
			)
			srv := web.NewServer(store,
				web.WithLogger(loggerpkg.Named(a.logger, "web")),
				web.WithVerbose(opts.verbose),
			)
			return srv.Run(cmd.Context(), a.config.Addr)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", configpkg.DefaultAddr, "Listen address")
	return cmd
}

func runREPLCommand(cmd *cobra.Command, opts *cliOptions, in io.Reader, out, errOut io.Writer) error {
	a, err := bootstrap(opts, errOut)
	if err != nil {
		return err
	}
	session := chat.NewSession(localSessionID, a.client,
		chat.WithLogger(loggerpkg.Named(a.logger, "chat")),
		chat.WithVerbose(opts.verbose),
	)
	return runREPL(cmd.Context(), session, replOptions{Verbose: opts.verbose, Logger: a.logger}, in, out)
}

// bootstrap resolves credentials and builds the completion client. When no
// source defines the credentials it prints the remediation text and returns
// configpkg.ErrNotConfigured before anything else is constructed.
func bootstrap(opts *cliOptions, errOut io.Writer) (*app, error) {
	_ = godotenv.Load()

	logger := loggerpkg.NewWriterLogger(errOut)

	cfg := configpkg.DefaultConfig()
	cfg.SecretsPath = opts.secretsPath
	cfg.LocalPath = opts.localPath
	cfg.Verbose = opts.verbose
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}

	cfg, source, err := configpkg.Load(cfg, loggerpkg.Named(logger, "config"))
	if err != nil {
		if errors.Is(err, configpkg.ErrNotConfigured) {
			_, _ = fmt.Fprint(errOut, configpkg.HelpText(cfg.SecretsPath, cfg.LocalPath))
		}
		return nil, err
	}
	loggerpkg.Debug(cfg.Verbose, logger, "configuration loaded", map[string]any{
		"source":   source,
		"model":    cfg.Model,
		"base_url": cfg.Credentials.BaseURL,
	})

	client, err := completion.New(cfg, completion.WithLogger(loggerpkg.Named(logger, "completion")))
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	return &app{config: cfg, client: client, logger: logger}, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
