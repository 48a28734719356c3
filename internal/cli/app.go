// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Dependency wiring and command handlers.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jeranaias/costgate/internal/config"
	"github.com/jeranaias/costgate/internal/errs"
	"github.com/jeranaias/costgate/internal/gate"
	"github.com/jeranaias/costgate/internal/ledger"
	"github.com/jeranaias/costgate/internal/provider"
	"github.com/jeranaias/costgate/internal/router"
	"github.com/jeranaias/costgate/internal/runtime"
	"github.com/jeranaias/costgate/internal/sandbox"
	"github.com/jeranaias/costgate/internal/storage"
	"github.com/jeranaias/costgate/internal/task"
)

// =============================================================================
// APP WIRING
// =============================================================================

// App owns every constructed component. There are no package-level
// singletons: the engine, gate, catalog, ledger, and sandbox exist only
// inside an App.
type App struct {
	Config  *config.Config
	Catalog *provider.Catalog
	Ledger  *ledger.Ledger
	Gate    *gate.Gate
	Engine  *router.Engine
	Sandbox *sandbox.Sandbox
	History *storage.History

	configPath string
}

// NewApp loads configuration (explicit path optional), probes the runtime,
// and wires all components. A configuration error here is the system's one
// fatal condition; callers print it and exit non-zero.
func NewApp(configPath string) (*App, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(cfg, configPath)
}

func newAppFromConfig(cfg *config.Config, configPath string) (*App, error) {
	client := runtime.NewClient(&runtime.ClientConfig{
		BaseURL: cfg.Runtime.URL,
		Timeout: cfg.ProbeTimeout(),
	})

	catalog, err := provider.New(cfg, client)
	if err != nil {
		return nil, err
	}

	led, err := ledger.Open(cfg.DataDir(), cfg.Ledger.MaxAuditSizeMB)
	if err != nil {
		return nil, err
	}

	history, err := storage.Open(cfg.DataDir(), led.SessionID())
	if err != nil {
		// History is convenience, not evidence; run without it.
		log.Printf("CLI: history store unavailable: %v", err)
		history = nil
	}

	g := gate.New(cfg.Routing.BaselineProvider, cfg.Gate.RatePerSec, cfg.Gate.Burst, led)

	opts := router.Options{PremiumPolicy: cfg.Routing.PremiumPolicy}
	if history != nil {
		opts.History = history
	}
	engine := router.New(catalog, g, led, opts)

	sb := sandbox.New(cfg.Runtime.BinaryPath, cfg.ExecTimeout(), led)

	return &App{
		Config:     cfg,
		Catalog:    catalog,
		Ledger:     led,
		Gate:       g,
		Engine:     engine,
		Sandbox:    sb,
		History:    history,
		configPath: configPath,
	}, nil
}

// Close releases app resources.
func (a *App) Close() {
	if a.History != nil {
		a.History.Close()
	}
}

// =============================================================================
// ROUTE
// =============================================================================

// HandleRoute routes one task and prints the decision.
func HandleRoute(app *App, args []string) error {
	parsed := NewArgParser(args)
	text := parsed.PositionalJoined()
	if text == "" {
		return fmt.Errorf("usage: costgate route \"<task text>\"")
	}

	t := task.Task{Text: text}
	if parsed.BoolFlag("override") {
		t.Context = map[string]string{gate.OverrideFlag: "true"}
	}

	decision := app.Engine.Route(t)

	if parsed.BoolFlag("json") {
		return NewJSONResponse("route", decision).Print()
	}
	printDecision(decision)
	return nil
}

func printDecision(d router.Decision) {
	fmt.Println(TitleStyle.Render("Routing Decision"))
	fmt.Printf("%s %s\n", RenderLabel("Provider:"), HighlightStyle.Render(d.ProviderID))
	fmt.Printf("%s %s\n", RenderLabel("Tier:"), ValueStyle.Render(d.Tier))
	fmt.Printf("%s %s (%.2f)\n", RenderLabel("Category:"), ValueStyle.Render(d.Category), d.Confidence)
	fmt.Printf("%s %.4f¢\n", RenderLabel("Estimated cost:"), d.EstimatedCost)
	fmt.Printf("%s %s\n", RenderLabel("Savings:"), HighlightStyle.Render(fmt.Sprintf("%.0f%% vs baseline", d.CostSavingsPct)))
	if d.Downgraded {
		fmt.Printf("%s %s\n", RenderLabel("Note:"), WarningStyle.Render("premium candidate downgraded by permission gate"))
	}
	fmt.Printf("%s %s\n", RenderLabel("Reasoning:"), DimStyle.Render(d.Reasoning))
}

// =============================================================================
// EXEC
// =============================================================================

// HandleExec runs a prompt on a local model through the sandbox. Ctrl-C
// cancels the run; cancellation and timeout share the sandbox's
// terminate-and-reap path.
func HandleExec(app *App, args []string) error {
	parsed := NewArgParser(args)
	pos := parsed.Positional()
	if len(pos) < 2 {
		return fmt.Errorf("usage: costgate exec <model> \"<prompt>\"")
	}
	model := pos[0]
	prompt := ""
	for i, p := range pos[1:] {
		if i > 0 {
			prompt += " "
		}
		prompt += p
	}

	// A provider the catalog knows to be non-local is a caller mistake
	// distinct from an allowlist violation: the sandbox cannot run paid
	// providers at all.
	if p, ok := app.Catalog.Get(model); ok && !p.Local {
		return errs.NotImplemented("cli.exec", "provider %q is %s tier; the sandbox executes local models only", model, p.Tier)
	}

	opts := sandbox.Options{
		MaxOutputUnits: parsed.IntFlag("max-output", 0),
		Temperature:    parsed.FloatFlag("temperature", 0),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := app.Sandbox.Execute(ctx, model, prompt, opts)
	if err != nil {
		return fmt.Errorf("%s (%s after %s)", err, res.ErrorKind, res.ExecutionTime.Round(time.Millisecond))
	}

	fmt.Print(renderOutput(res.Output))
	fmt.Println(DimStyle.Render(fmt.Sprintf("\n%s · %d units in · %d units out",
		res.ExecutionTime.Round(time.Millisecond), res.TokensIn, res.TokensOut)))
	return nil
}

// =============================================================================
// STATS
// =============================================================================

// HandleStats prints the usage aggregate and, with --history N, recent
// decisions from the history store.
func HandleStats(app *App, args []string) error {
	parsed := NewArgParser(args)

	agg, err := app.Ledger.Stats()
	if err != nil {
		return err
	}

	historyN := parsed.IntFlag("history", 0)

	if parsed.BoolFlag("json") {
		payload := map[string]interface{}{"aggregate": agg}
		if historyN > 0 && app.History != nil {
			rows, err := app.History.Recent(historyN)
			if err != nil {
				return err
			}
			payload["history"] = rows
		}
		return NewJSONResponse("stats", payload).Print()
	}

	fmt.Println(TitleStyle.Render("Usage Statistics"))
	fmt.Printf("%s %d\n", RenderLabel("Total requests:"), agg.TotalRequests)
	fmt.Printf("%s %.0f%%\n", RenderLabel("Avg savings:"), agg.AvgSavingsPct())
	if len(agg.Providers) > 0 {
		fmt.Println(RenderLabel("By provider:"))
		for id, n := range agg.Providers {
			fmt.Printf("  %s %d\n", PadCell(id, 24), n)
		}
	}

	if historyN > 0 {
		if app.History == nil {
			fmt.Println(DimStyle.Render("history store unavailable"))
			return nil
		}
		rows, err := app.History.Recent(historyN)
		if err != nil {
			return err
		}
		fmt.Println(RenderSeparator())
		for _, r := range rows {
			fmt.Printf("%s  %s  %s  %s\n",
				DimStyle.Render(r.CreatedAt.Local().Format("01-02 15:04")),
				PadCell(r.ProviderID, 20),
				PadCell(r.Category, 20),
				DimStyle.Render(FitCell(r.Excerpt, 40)))
		}
	}
	return nil
}

// =============================================================================
// DOCTOR
// =============================================================================

// HandleDoctor checks the environment: runtime binary, runtime API, data
// directory, and catalog state.
func HandleDoctor(app *App) error {
	fmt.Println(TitleStyle.Render("costgate doctor"))

	binPath, binErr := runtime.FindExecutable(app.Config.Runtime.BinaryPath)
	fmt.Printf("%s %s", RenderStatus(binErr == nil), "runtime binary")
	if binErr == nil {
		fmt.Printf("  %s", DimStyle.Render(binPath))
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.ProbeTimeout())
	defer cancel()
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: app.Config.Runtime.URL, Timeout: app.Config.ProbeTimeout()})
	apiErr := client.CheckRunning(ctx)
	fmt.Printf("%s %s  %s\n", RenderStatus(apiErr == nil), "runtime API", DimStyle.Render(app.Config.Runtime.URL))

	dirErr := checkWritable(app.Config.DataDir())
	fmt.Printf("%s %s  %s\n", RenderStatus(dirErr == nil), "data directory", DimStyle.Render(app.Config.DataDir()))

	fmt.Printf("%s %d providers (%d local)\n",
		RenderStatus(len(app.Catalog.All()) > 0), len(app.Catalog.All()), app.Catalog.LocalCount())

	if binErr != nil || apiErr != nil || dirErr != nil {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".doctor-")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// =============================================================================
// VERIFY
// =============================================================================

// HandleVerify checks audit log HMAC signatures.
func HandleVerify(app *App) error {
	n, err := app.Ledger.VerifyAuditLog()
	if err != nil {
		return err
	}
	fmt.Printf("%s %d audit lines verified\n", SuccessStyle.Render("[OK]"), n)
	return nil
}
