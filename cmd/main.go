package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/mkarl/bloggen/internal/models"
	"github.com/mkarl/bloggen/internal/types"
	"github.com/mkarl/bloggen/pkg/catalog"
	cfgPkg "github.com/mkarl/bloggen/pkg/config"
	"github.com/mkarl/bloggen/pkg/generator"
	"github.com/mkarl/bloggen/pkg/ledger"
	"github.com/mkarl/bloggen/pkg/llm"
	"github.com/mkarl/bloggen/pkg/pipeline"
	"github.com/mkarl/bloggen/pkg/publish"
	"github.com/mkarl/bloggen/pkg/registry"
	"github.com/mkarl/bloggen/server"
)

type Flags struct {
	ConfigPath  string
	CatalogPath string
	OutDir      string
	Connector   string
	Model       string
	Workers     int
	DryRun      bool
	HTMLPreview bool
	Serve       bool
	Addr        string
}

func main() {
	flags := parseFlags()

	if err := run(flags); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Flags {
	var flags Flags

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&flags.CatalogPath, "catalog", "", "Path to a YAML connector catalog (default: built-in)")
	flag.StringVar(&flags.OutDir, "out", "", "Output directory for generated posts")
	flag.StringVar(&flags.Connector, "connector", "", "Process a single connector by canonical ID")
	flag.StringVar(&flags.Model, "model", "", "LLM model to use")
	flag.IntVar(&flags.Workers, "workers", 0, "Connectors processed concurrently")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Generate and write posts without uploading to the CMS")
	flag.BoolVar(&flags.HTMLPreview, "html", false, "Also write an HTML preview per post")
	flag.BoolVar(&flags.Serve, "serve", false, "Start the web server instead of running once")
	flag.StringVar(&flags.Addr, "addr", "", "HTTP listen address when --serve")
	flag.Parse()

	return flags
}

func mergeFlags(config *cfgPkg.Config, flags Flags) {
	if flags.CatalogPath != "" {
		config.Pipeline.Catalog = flags.CatalogPath
	}
	if flags.OutDir != "" {
		config.Output.Dir = flags.OutDir
	}
	if flags.Model != "" {
		config.LLM.Model = flags.Model
	}
	if flags.Workers > 0 {
		config.Pipeline.Workers = flags.Workers
	}
	if flags.HTMLPreview {
		config.Output.HTMLPreview = true
	}
	if flags.Addr != "" {
		config.Server.Addr = flags.Addr
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("posts"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(flags Flags) error {
	config, err := cfgPkg.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	mergeFlags(config, flags)

	if flags.DryRun {
		// No CMS call happens, so a missing token must not block the run.
		if config.CMS.Token == "" {
			config.CMS.Token = "unused"
		}
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid configuration (%d problems)", len(errs))
	}

	connectors, err := catalog.Load(config.Pipeline.Catalog)
	if err != nil {
		return err
	}
	if flags.Connector != "" {
		c, ok := catalog.Find(connectors, flags.Connector)
		if !ok {
			return fmt.Errorf("connector %s is not in the catalog", flags.Connector)
		}
		connectors = []models.ConnectorDescriptor{c}
	}

	// Initialize components
	registryClient, err := registry.NewWithConfig(registry.ClientConfig{
		BaseURL:   config.Registry.BaseURL,
		RateLimit: config.Registry.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize registry client: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: config.LLM.Temperature,
		APIKey:      config.LLM.APIKey,
		BaseURL:     config.LLM.BaseURL,
		RateLimit:   config.LLM.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	localWriter, err := publish.NewLocalWriter(publish.LocalWriterConfig{
		Dir:         config.Output.Dir,
		HTMLPreview: config.Output.HTMLPreview,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize local writer: %v", err)
	}

	var cms types.CMSPublisher
	if !flags.DryRun {
		uploader, err := publish.NewWebflowUploader(publish.WebflowConfig{
			BaseURL:      config.CMS.BaseURL,
			CollectionID: config.CMS.CollectionID,
			Token:        config.CMS.Token,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize CMS uploader: %v", err)
		}
		cms = uploader
	}

	var runLedger types.RunLedger
	if l, err := ledger.Open(config.Output.Dir); err != nil {
		color.Yellow("run ledger unavailable: %v", err)
	} else {
		runLedger = l
		defer l.Close()
	}

	pipelineConfig := pipeline.Config{
		Registry: registryClient,
		Chat:     chatEngine,
		Local:    localWriter,
		CMS:      cms,
		Ledger:   runLedger,
		CTAs:     generator.DefaultCTAs(),
		Workers:  config.Pipeline.Workers,
		DryRun:   flags.DryRun,
	}

	// Web server mode
	if flags.Serve {
		runner := func(onEvent func(pipeline.Event)) []pipeline.Result {
			cfg := pipelineConfig
			cfg.OnEvent = onEvent
			p, err := pipeline.NewWithConfig(cfg)
			if err != nil {
				log.Printf("[server] pipeline init failed: %v", err)
				return nil
			}
			return p.Run(context.Background(), connectors)
		}

		srv := server.New(runner)
		color.Cyan("Listening on %s", config.Server.Addr)
		return http.ListenAndServe(config.Server.Addr, srv.Routes())
	}

	color.Blue("\nGenerating %d blog posts with %s\n", len(connectors), config.LLM.Model)

	bar := getProgressBar(len(connectors), "✍  Generating blog posts...")
	pipelineConfig.OnEvent = func(e pipeline.Event) {
		// An upload rejection is not terminal: the connector still
		// finishes with a "done" event.
		terminal := e.Stage == "done" ||
			(e.Stage != "upload" && (e.Status == "failed" || e.Status == "skipped"))
		if terminal {
			bar.Add(1)
			return
		}
		if e.Status == "started" {
			bar.Describe(color.BlueString("✍  %s: %s...", e.Connector, e.Stage))
		}
	}

	p, err := pipeline.NewWithConfig(pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %v", err)
	}

	results := p.Run(context.Background(), connectors)
	bar.Finish()
	fmt.Println()

	ok, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case pipeline.StatusOK:
			ok++
			if flags.DryRun {
				color.Green("✓ %s → %s", r.Connector.CanonicalID, r.FilePath)
			} else if r.Upload.Success {
				color.Green("✓ %s → %s (CMS status %d)", r.Connector.CanonicalID, r.FilePath, r.Upload.StatusCode)
			} else {
				color.Yellow("✓ %s → %s (CMS upload failed: status %d)", r.Connector.CanonicalID, r.FilePath, r.Upload.StatusCode)
			}
		case pipeline.StatusSkipped:
			skipped++
			color.Yellow("- %s skipped: %v", r.Connector.CanonicalID, r.Err)
		default:
			failed++
			color.Red("✗ %s failed: %v", r.Connector.CanonicalID, r.Err)
		}
	}

	color.Cyan("\n%d generated, %d skipped, %d failed\n", ok, skipped, failed)

	if ok == 0 && failed > 0 {
		os.Exit(1)
	}
	return nil
}
