package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/helios-data/helios/internal/cli/config"
	"github.com/helios-data/helios/internal/convert"
	"github.com/helios-data/helios/internal/llm"
	"github.com/helios-data/helios/internal/schema"
	"github.com/spf13/cobra"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively convert Oracle SQL statements",
		Long: `Start an interactive converter session.

Statements are buffered until a terminating semicolon and converted in
place. Dot-commands adjust the session without restarting it.`,
		Example: `  helios repl
  helios> SELECT NVL(a, b) FROM t;
  SELECT COALESCE(a, b) FROM t;`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
}

// replSession carries converter settings that dot-commands may change
// between statements.
type replSession struct {
	cfg        config.Config
	logger     *slog.Logger
	resolver   *schema.Resolver
	translator llm.Translator
}

func runRepl(cmd *cobra.Command) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	sess := &replSession{
		cfg:        cfg,
		logger:     logger,
		resolver:   newResolver(&cfg, logger),
		translator: newTranslator(&cfg, logger),
	}

	// Session history lives under the user home so it survives across
	// projects.
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".helios_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "helios> ",
		HistoryFile:     historyFile,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Helios converter REPL (provider: %s)\n", sess.cfg.Provider)
	fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	fmt.Fprintln(out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt("helios> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Handle dot-commands, but only outside a buffered statement.
		if buf.Len() == 0 && strings.HasPrefix(trimmed, ".") {
			if sess.handleDotCommand(cmd, trimmed) {
				if trimmed == ".quit" || trimmed == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		buf.WriteString("\n")
		if !strings.HasSuffix(trimmed, ";") {
			rl.SetPrompt("   ...> ")
			continue
		}
		rl.SetPrompt("helios> ")

		script := buf.String()
		buf.Reset()
		sess.convert(cmd.Context(), cmd, script)
	}

	return nil
}

func (s *replSession) convert(ctx context.Context, cmd *cobra.Command, script string) {
	opts, err := converterOptions(&s.cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	cv := convert.New(opts, s.resolver, s.translator, s.logger)
	res := cv.ConvertScript(ctx, script)
	fmt.Fprint(cmd.OutOrStdout(), res.Output)
	fmt.Fprintln(cmd.OutOrStdout())
}

func (s *replSession) handleDotCommand(cmd *cobra.Command, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(out)
		return true

	case ".provider":
		if len(parts) < 2 {
			fmt.Fprintln(errOut, "Usage: .provider <hive|delta|iceberg>")
			return true
		}
		s.cfg.Provider = parts[1]
		fmt.Fprintf(out, "Provider set to %s\n", parts[1])
		return true

	case ".llm":
		if len(parts) < 2 || (parts[1] != "on" && parts[1] != "off") {
			fmt.Fprintln(errOut, "Usage: .llm <on|off>")
			return true
		}
		s.cfg.UseLLM = parts[1] == "on"
		fmt.Fprintf(out, "LLM escalation %s\n", parts[1])
		return true

	case ".schema":
		if len(parts) < 2 {
			fmt.Fprintln(errOut, "Usage: .schema <auto|cache|metastore|spark-sql>")
			return true
		}
		if _, err := schema.ParseMode(parts[1]); err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			return true
		}
		s.cfg.SchemaMode = parts[1]
		fmt.Fprintf(out, "Schema mode set to %s\n", parts[1])
		return true

	default:
		fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .provider <name>   Switch the target provider (hive, delta, iceberg)
  .llm <on|off>      Toggle LLM escalation for unsupported statements
  .schema <mode>     Switch schema resolution (auto, cache, metastore, spark-sql)
  .quit / .exit      Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	fmt.Fprintln(w, help)
}

// replCompleter completes dot-commands and their arguments.
func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".provider",
			readline.PcItem("hive"),
			readline.PcItem("delta"),
			readline.PcItem("iceberg"),
		),
		readline.PcItem(".llm",
			readline.PcItem("on"),
			readline.PcItem("off"),
		),
		readline.PcItem(".schema",
			readline.PcItem("auto"),
			readline.PcItem("cache"),
			readline.PcItem("metastore"),
			readline.PcItem("spark-sql"),
		),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
