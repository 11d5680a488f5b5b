package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
	nodeerrors "github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/node"
	"github.com/teilomillet/ollamanode/pixels"
	"github.com/teilomillet/ollamanode/presets"
	"github.com/teilomillet/ollamanode/prompt"
	"github.com/teilomillet/ollamanode/server"
)

const Version = "v0.1.0"

const usage = `usage: ollamanode [-config file] [-settings file] <command> [args]

commands:
  generate   run one generation and print the text
  models     list models known to Ollama
  presets    list system prompt presets
  schema     print the node input schema as JSON
  set-url    store the Ollama base URL in the settings file
  validate   validate the configuration file
  serve      run the HTTP server
  version    print version and exit
`

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli holds what every command needs.
type cli struct {
	configPath   string
	settingsPath string
	stdout       io.Writer
	stderr       io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ollamanode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	c := &cli{stdout: stdout, stderr: stderr}
	fs.StringVar(&c.configPath, "config", "config.yaml", "Path to configuration file")
	fs.StringVar(&c.settingsPath, "settings", "", "Path to the OLLAMA_URL settings file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]

	var err error
	switch cmd {
	case "generate":
		err = c.generate(rest)
	case "models":
		err = c.models()
	case "presets":
		err = c.presets()
	case "schema":
		err = c.schema()
	case "set-url":
		err = c.setURL(rest)
	case "validate":
		err = c.validate()
	case "serve":
		err = c.serve()
	case "version":
		fmt.Fprintf(stdout, "ollamanode %s\n", Version)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "ollamanode %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

// loadConfig reads the YAML configuration. The default path may be absent,
// in which case built-in defaults are used; an explicit missing file is an
// error.
func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || c.configPath != "config.yaml" {
			return nil, err
		}
		cfg = config.DefaultConfig()
	}
	if c.settingsPath != "" {
		cfg.Ollama.SettingsPath = c.settingsPath
	}
	return cfg, nil
}

func (c *cli) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	nodeerrors.SetLogger(logger)
	return cfg, logger, nil
}

// newNode builds a node for one-shot commands. The settings file is read
// once; there is nothing to hot-reload for a single call.
func (c *cli) newNode() (*node.Node, *zap.Logger, error) {
	cfg, logger, err := c.setup()
	if err != nil {
		return nil, nil, err
	}
	ollamaCfg := cfg.Ollama
	ollamaCfg.WatchSettings = false

	urls, _, err := server.NewURLSource(ollamaCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return server.NewNode(cfg, urls, nil, logger), logger, nil
}

func (c *cli) generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	in := node.DefaultInputs()
	var images stringList
	fs.StringVar(&in.Model, "model", "", "Ollama model (defaults to node.default_model)")
	fs.IntVar(&in.KeepAlive, "keep-alive", 0, "Minutes to keep the model loaded")
	fs.StringVar(&in.SystemPrompt, "system", "", "System prompt")
	fs.StringVar(&in.Preset, "preset", presets.None, "System prompt preset")
	fs.StringVar(&in.PromptStructure, "structure", prompt.Custom, "Prompt structure template")
	fs.BoolVar(&in.StructureOutput, "structured", false, "Ask for structured output")
	fs.StringVar(&in.StructureFormat, "structure-format", prompt.DefaultStructureFormat, "Structure instruction appended when -structured is set")
	fs.StringVar(&in.OutputFormat, "format", string(prompt.RawText), "Output format: raw_text or json")
	fs.Var(&images, "image", "Image file to attach (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		in.Prompt = strings.Join(fs.Args(), " ")
	}

	for _, path := range images {
		t, err := pixels.Open(path)
		if err != nil {
			return err
		}
		in.Images = append(in.Images, t)
	}
	if len(in.Images) > 0 {
		in.InputType = node.InputImage
	}

	n, logger, err := c.newNode()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintln(c.stdout, n.Generate(context.Background(), in))
	return nil
}

func (c *cli) models() error {
	n, logger, err := c.newNode()
	if err != nil {
		return err
	}
	defer logger.Sync()

	for _, m := range n.Models(context.Background()) {
		fmt.Fprintln(c.stdout, m)
	}
	return nil
}

func (c *cli) presets() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	for _, p := range presets.Choices(cfg.Prompts.Dir) {
		fmt.Fprintln(c.stdout, p)
	}
	return nil
}

func (c *cli) schema() error {
	n, logger, err := c.newNode()
	if err != nil {
		return err
	}
	defer logger.Sync()

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(n.Schema(context.Background()))
}

func (c *cli) setURL(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one URL, got %d arguments", len(args))
	}
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid url: %s", url)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Ollama.SettingsPath
	if path == "" {
		path = config.DefaultSettingsPath()
	}

	if err := config.UpdateKey(path, config.URLKey, url); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s set to %s in %s\n", config.URLKey, url, path)
	return nil
}

func (c *cli) validate() error {
	if _, err := config.LoadFile(c.configPath); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Configuration is valid")
	return nil
}

func (c *cli) serve() error {
	cfg, logger, err := c.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting ollamanode", zap.String("version", Version), zap.Int("port", cfg.Server.Port))
	return srv.Start(ctx)
}
