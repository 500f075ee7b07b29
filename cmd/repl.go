package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/spf13/viper"
	"github.com/tara-vision/nexus/internal/agent"
	"github.com/tara-vision/nexus/internal/hostenv"
	"github.com/tara-vision/nexus/internal/llm"
	"github.com/tara-vision/nexus/internal/logger"
	"github.com/tara-vision/nexus/internal/provider"
	"github.com/tara-vision/nexus/internal/remote"
	"github.com/tara-vision/nexus/internal/safety"
	"github.com/tara-vision/nexus/internal/storage"
	"github.com/tara-vision/nexus/internal/tools"
	"github.com/tara-vision/nexus/internal/ui"
)

// repl holds everything the in-band commands act on.
type repl struct {
	agent    *agent.Agent
	provider *provider.Provider
	store    *storage.Manager
	renderer *ui.Renderer
	prompts  *ui.Prompts

	modelsOnce sync.Once
	models     []string
}

func startREPL(ctx context.Context) {
	// Get configuration from config or environment
	host := viper.GetString("host")
	if host == "" {
		fmt.Fprintln(os.Stderr, "Error: LLM server host not found.")
		fmt.Fprintln(os.Stderr, "Set it via:")
		fmt.Fprintln(os.Stderr, "  - Environment variable: export NEXUS_HOST=https://openrouter.ai/api")
		fmt.Fprintln(os.Stderr, "  - Config file: ~/.nexus/config.yaml")
		fmt.Fprintln(os.Stderr, "  - Command flag: --host http://localhost:11434")
		os.Exit(1)
	}

	if err := ui.ApplyTheme(viper.GetString("theme")); err != nil {
		logger.Warn("falling back to default theme", "error", err)
	}

	spinner := ui.NewSpinner()
	if viper.GetBool("no_spinner") {
		spinner.Disable()
	}
	renderer := ui.NewRenderer(os.Stdout, spinner)
	prompts := ui.NewPrompts()

	// Print welcome message
	fmt.Print(renderer.WelcomeMessage())

	prov, err := provider.New(ctx, host, viper.GetString("vendor"), viper.GetString("key"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing provider: %v\n", err)
		os.Exit(1)
	}

	key := viper.GetString("key")
	if prov.NeedsKey() {
		key, err = prompts.Secret(fmt.Sprintf("API key for %s", prov.Info().Name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: an API key is required for %s: %v\n", prov.Info().Host, err)
			os.Exit(1)
		}
		prov.SetAPIKey(key)
		saveSetting("key", key)
	}

	modelID, err := prov.SelectModel(ctx, viper.GetString("model"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting model: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewManager(viper.GetString("data_dir"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	workingDir, _ := os.Getwd()
	machine := hostenv.Probe()

	shell := safety.NewShellRunner(viper.GetDuration("safety.timeout"))
	shell.Dir = workingDir
	gate := &safety.Gate{
		Rewriter:  safety.Rewriter{PackageManager: hostenv.CanonicalManager(viper.GetString("safety.package_manager"), machine)},
		Shell:     shell,
		Prompter:  prompts,
		Indicator: renderer,
		Console:   renderer,
	}

	registry := tools.NewDefaultRegistry(&tools.Toolbox{
		Gate:             gate,
		Remote:           remote.NewClient(viper.GetDuration("remote.timeout")),
		Memory:           store,
		DefaultRemoteURL: viper.GetString("remote.default_url"),
		Asker:            prompts,
		Indicator:        renderer,
		Searcher:         tools.NewSearcher(),
		Notifier:         renderer,
		WorkingDir:       workingDir,
	})

	session := agent.NewSession(key, modelID, ui.CurrentTheme(),
		viper.GetInt("agent.history_window"), viper.GetInt("agent.history_cap"))

	client := llm.NewClient(prov.CreateClient(), llm.Config{
		Model:        modelID,
		SystemPrompt: llm.BuildSystemPrompt(registry.Names(), machine.Summary()),
		Temperature:  float32(viper.GetFloat64("llm.temperature")),
		Timeout:      viper.GetDuration("llm.timeout"),
		JSONMode:     viper.GetBool("llm.json_mode"),
	})
	client.TrackUsage(&session.Usage)

	r := &repl{
		agent: agent.New(session, client, registry,
			agent.WithPresenter(renderer),
			agent.WithActivityLog(store),
			agent.WithConfig(agent.Config{
				MaxSteps:    viper.GetInt("agent.max_steps"),
				AutoApprove: viper.GetBool("agent.auto_approve"),
			}),
		),
		provider: prov,
		store:    store,
		renderer: renderer,
		prompts:  prompts,
	}

	// Show provider info
	fmt.Print(renderer.ProviderMessage(prov.Info()))
	logger.Info("session started", "session", session.ShortID(), "model", modelID, "tools", registry.Names())
	fmt.Println()

	// Setup readline with in-band command completion
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          renderer.PromptString(),
		HistoryFile:     filepath.Join(store.GetRootDir(), "history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewCommandCompleter(ui.ThemeNames, func() []string { return r.servedModels(ctx) }),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	// Main REPL loop
	for {
		rl.SetPrompt(renderer.PromptString())
		line, err := rl.Readline()
		if err != nil { // io.EOF or Ctrl+C
			fmt.Println("\nGoodbye!")
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" {
			fmt.Println("Goodbye!")
			break
		}

		if r.handleCommand(ctx, line) {
			continue
		}

		// Ctrl+C during a turn cancels the model call or running command
		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		r.agent.Run(turnCtx, line)
		stop()
	}
}

// handleCommand runs an in-band command and reports whether line was one.
func (r *repl) handleCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	session := r.agent.Session()

	switch {
	case len(parts) == 1 && parts[0] == "help":
		fmt.Println(r.renderer.HelpText())

	case len(parts) == 1 && parts[0] == "usage":
		fmt.Println(r.renderer.FormatUsage(&session.Usage))

	case len(parts) == 1 && parts[0] == "reset":
		r.agent.Reset()
		fmt.Println(r.renderer.SuccessMessage("Conversation cleared."))

	case len(parts) >= 2 && parts[0] == "set" && parts[1] == "model":
		r.setModel(ctx, parts[2:])

	case len(parts) >= 2 && parts[0] == "set" && parts[1] == "theme":
		if len(parts) != 3 {
			fmt.Println(r.renderer.WarningMessage("Usage: set theme <" + strings.Join(ui.ThemeNames(), "|") + ">"))
			break
		}
		if err := ui.ApplyTheme(parts[2]); err != nil {
			fmt.Println(r.renderer.ErrorMessage(err))
			break
		}
		session.Theme = ui.CurrentTheme()
		saveSetting("theme", session.Theme)
		fmt.Println(r.renderer.SuccessMessage("Theme set to " + session.Theme))

	case len(parts) >= 2 && parts[0] == "set" && parts[1] == "remote":
		if len(parts) != 3 {
			fmt.Println(r.renderer.WarningMessage("Usage: set remote <url>"))
			break
		}
		if err := validateRemoteURL(parts[2]); err != nil {
			fmt.Println(r.renderer.ErrorMessage(err))
			break
		}
		if err := r.store.Set(storage.KeyRemoteURL, parts[2]); err != nil {
			fmt.Println(r.renderer.ErrorMessage(err))
			break
		}
		fmt.Println(r.renderer.SuccessMessage("Remote server set to " + parts[2]))

	default:
		return false
	}
	fmt.Println()
	return true
}

func (r *repl) setModel(ctx context.Context, args []string) {
	var id string
	if len(args) > 0 {
		id = strings.Join(args, " ")
	} else {
		models := r.servedModels(ctx)
		if len(models) == 0 {
			fmt.Println(r.renderer.WarningMessage("The server did not list any models. Use: set model <id>"))
			return
		}
		selected, err := r.prompts.Select("Select a model", models)
		if err != nil {
			return
		}
		id = selected
	}

	r.agent.SetModel(id)
	r.provider.SetModel(id)
	saveSetting("model", id)
	fmt.Println(r.renderer.SuccessMessage("Model set to " + id))
}

// servedModels asks the backend for its models once per session.
func (r *repl) servedModels(ctx context.Context) []string {
	r.modelsOnce.Do(func() {
		models, err := r.provider.DetectModels(ctx)
		if err != nil {
			logger.Warn("model listing failed", "error", err)
			return
		}
		r.models = models
	})
	return r.models
}

func validateRemoteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid remote URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid remote URL %q: expected http(s)://host:port", raw)
	}
	return nil
}

// saveSetting persists a value to the config file, creating it on first
// write.
func saveSetting(key, value string) {
	viper.Set(key, value)
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = viper.SafeWriteConfig()
	}
	if err != nil {
		logger.Warn("could not save setting", "key", key, "error", err)
	}
}
