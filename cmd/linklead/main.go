// Command linklead extracts job and company data from LinkedIn exports,
// pages, or alert emails and pushes the mapped records to HubSpot.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"linklead-engine/internal/config"
	"linklead-engine/internal/enrich"
	"linklead-engine/internal/hubspot"
	"linklead-engine/internal/pipeline"
	"linklead-engine/internal/secrets"
	"linklead-engine/internal/store"
	"linklead-engine/internal/ui"
)

func main() {
	log.SetPrefix("[linklead] ")
	log.SetFlags(log.LstdFlags)

	app := &cli.App{
		Name:  "linklead",
		Usage: "extract LinkedIn job/company data and create HubSpot company + deal records",
		Flags: runFlags,
		// Bare `linklead --job-pdf ...` runs the pipeline.
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the extraction pipeline (same as the bare command)",
				Flags:  runFlags,
				Action: runAction,
			},
			{
				Name:  "history",
				Usage: "list recent pipeline runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to show"},
				},
				Action: historyAction,
			},
			{
				Name:   "check",
				Usage:  "verify the stored HubSpot token with a cheap API call",
				Action: checkAction,
			},
			{
				Name:  "secret",
				Usage: "manage credentials in the OS keychain",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "store a secret (value read from stdin when omitted)",
						ArgsUsage: "<account> [value]",
						Action:    secretSetAction,
					},
					{
						Name:      "delete",
						Usage:     "remove a stored secret",
						ArgsUsage: "<account>",
						Action:    secretDeleteAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var runFlags = []cli.Flag{
	&cli.StringFlag{Name: "job-pdf", Usage: "path to an exported LinkedIn job PDF"},
	&cli.StringFlag{Name: "company-pdf", Usage: "path to an exported LinkedIn company PDF"},
	&cli.StringFlag{Name: "job-url", Usage: "LinkedIn job URL to scrape"},
	&cli.StringFlag{Name: "company-url", Usage: "LinkedIn company URL to scrape"},
	&cli.BoolFlag{Name: "from-email", Usage: "take the job from the newest unseen alert email"},
	&cli.StringFlag{Name: "output", Usage: "write the mapped payload to a file (.json or .yml)"},
	&cli.BoolFlag{Name: "no-hubspot", Usage: "skip the HubSpot submission (dry run)"},
	&cli.BoolFlag{Name: "no-headless", Usage: "show the browser window while scraping"},
	&cli.BoolFlag{Name: "llm", Usage: "force-enable description cleanup"},
	&cli.BoolFlag{Name: "no-llm", Usage: "force-disable description cleanup"},
	&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the review prompt and submit"},
	&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
}

func runAction(c *cli.Context) error {
	if c.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	cfg, dataDir, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("no-headless") {
		cfg.Browser.Headless = false
	}

	llmEnabled := cfg.LLM.Enabled
	if c.Bool("llm") {
		llmEnabled = true
	}
	if c.Bool("no-llm") {
		llmEnabled = false
	}
	enricher := enrich.FromConfig(llmEnabled, cfg.LLM.Method, cfg.LLM.BaseURL, cfg.LLM.Model)

	var presenter ui.Presenter = ui.NewPlain()
	if c.Bool("yes") {
		presenter = ui.AutoApprove{}
	}

	var sink *hubspot.Client
	if !c.Bool("no-hubspot") {
		token, err := secrets.HubSpotToken()
		if err != nil {
			return fmt.Errorf("hubspot token: %w (or pass --no-hubspot)", err)
		}
		sink = hubspot.New(token, hubspot.WithAPIVersion(cfg.HubSpot.APIVersion))
		if err := sink.TestConnection(ctx); err != nil {
			return fmt.Errorf("hubspot connection check: %w", err)
		}
	}

	db, err := store.Open(filepath.Join(dataDir, "linklead.db"))
	if err != nil {
		log.Printf("run history unavailable: %v", err)
	} else {
		defer db.Close()
	}

	p := &pipeline.Pipeline{
		Config:    cfg,
		Enricher:  enricher,
		Presenter: presenter,
		Sink:      sink,
		Store:     db,
	}

	return p.Run(ctx, pipeline.Inputs{
		JobPDF:     c.String("job-pdf"),
		CompanyPDF: c.String("company-pdf"),
		JobURL:     c.String("job-url"),
		CompanyURL: c.String("company-url"),
		FromEmail:  c.Bool("from-email"),
		OutputPath: c.String("output"),
	})
}

func historyAction(c *cli.Context) error {
	_, dataDir, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(filepath.Join(dataDir, "linklead.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	for _, r := range runs {
		status := "aborted"
		if r.Submitted {
			status = fmt.Sprintf("company=%s deal=%s", r.CompanyID, r.DealID)
		}
		fmt.Printf("%s  %-9s  %q at %q  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			sourceKind(r.Source), r.JobTitle, r.CompanyName, status)
	}
	return nil
}

func checkAction(c *cli.Context) error {
	token, err := secrets.HubSpotToken()
	if err != nil {
		return err
	}
	client := hubspot.New(token)
	if err := client.TestConnection(c.Context); err != nil {
		return err
	}
	fmt.Println("hubspot connection ok")
	return nil
}

var knownAccounts = []string{
	secrets.AccountHubSpotToken,
	secrets.AccountLinkedInEmail,
	secrets.AccountLinkedInPasswd,
	secrets.AccountIMAPPassword,
}

func secretSetAction(c *cli.Context) error {
	account := c.Args().Get(0)
	if account == "" {
		return fmt.Errorf("usage: linklead secret set <account> [value]; accounts: %s",
			strings.Join(knownAccounts, ", "))
	}
	if !isKnownAccount(account) {
		return fmt.Errorf("unknown account %q; accounts: %s", account, strings.Join(knownAccounts, ", "))
	}

	value := c.Args().Get(1)
	if value == "" {
		fmt.Fprintf(os.Stderr, "value for %s: ", account)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		value = strings.TrimSpace(line)
	}

	if err := secrets.Set(account, value); err != nil {
		return err
	}
	fmt.Printf("stored %s\n", account)
	return nil
}

func secretDeleteAction(c *cli.Context) error {
	account := c.Args().Get(0)
	if account == "" {
		return fmt.Errorf("usage: linklead secret delete <account>")
	}
	if err := secrets.Delete(account); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", account)
	return nil
}

func isKnownAccount(account string) bool {
	for _, a := range knownAccounts {
		if a == account {
			return true
		}
	}
	return false
}

// loadConfig resolves the data dir, seeds config.yml on first run, and loads
// it. The data dir default is ~/.linklead, overridable via LINKLEAD_DATA_DIR.
func loadConfig() (config.Config, string, error) {
	dataDir := os.Getenv("LINKLEAD_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config.Config{}, "", err
		}
		dataDir = filepath.Join(home, ".linklead")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, "", err
	}

	cfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, "", err
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir
	}
	return cfg, cfg.App.DataDir, nil
}

func sourceKind(source string) string {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return "url"
	case strings.HasSuffix(strings.ToLower(source), ".pdf"):
		return "pdf"
	case source == "":
		return "unknown"
	default:
		return "file"
	}
}
