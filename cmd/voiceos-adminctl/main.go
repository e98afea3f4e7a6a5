// ABOUTME: Operator CLI for voiceos tenant configuration and knowledge bases
// ABOUTME: Drives the draft/reconcile packages against the remote service

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/spotfunnel/voiceos-admin/internal/auth"
	"github.com/spotfunnel/voiceos-admin/internal/draft"
	"github.com/spotfunnel/voiceos-admin/internal/reconcile"
	"github.com/spotfunnel/voiceos-admin/internal/remote"
)

const banner = `
            _                                     _ _
 __   _____(_) ___ ___  ___  ___    ___ ___ _ __ | | |
 \ \ / / _ \ |/ __/ _ \/ _ \/ __|  / __/ __| '_ \| | |
  \ V / (_) | | (_|  __/ (_) \__ \ | (_| (__| |_) | | |
   \_/ \___/|_|\___\___|\___/|___/  \___\___| .__/|_|_|
                                            |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "config":
		err = cmdConfig(ctx, args)
	case "kb":
		err = cmdKB(ctx, args)
	case "save":
		err = cmdSave(ctx, args)
	case "history":
		err = cmdHistory(ctx, args)
	case "hash-key":
		err = cmdHashKey(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: voiceos-adminctl <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  config show <tenant>                 Show the tenant's agent configuration")
	fmt.Println("  config set-prompt <tenant> <text>    Replace the system prompt and save")
	fmt.Println("  kb list <tenant>                     List knowledge-base records")
	fmt.Println("  kb add <tenant> [flags]              Add a record and save")
	fmt.Println("  kb rm <tenant> <kb-id>               Remove a record and save")
	fmt.Println("  save <tenant>                        Re-push the current remote state as-is")
	fmt.Println("  history <tenant>                     Show recent save attempts (via gateway)")
	fmt.Println("  hash-key <key>                       Print a bcrypt hash for auth.api_key_hashes")
	fmt.Println()
	yellow.Println("Config file:")
	fmt.Println("  " + getConfigPath())
}

// newReconciler builds a hydrated draft and reconciler for one tenant.
func newReconciler(ctx context.Context, cfg *Config, tenantID string) (*draft.Store, *reconcile.Reconciler, error) {
	timeout, err := cfg.remoteTimeout()
	if err != nil {
		return nil, nil, err
	}
	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIToken, timeout)

	d := draft.New()
	opts := []reconcile.Option{}
	if cfg.Save.KeepUnsavedDrafts {
		opts = append(opts, reconcile.WithKeepUnsavedDrafts())
	}
	rec := reconcile.New(client, d, tenantID, opts...)

	if err := rec.Hydrate(ctx); err != nil {
		return nil, nil, err
	}
	return d, rec, nil
}

func cmdConfig(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: config show|set-prompt <tenant> [text]")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tenantID := args[1]

	switch args[0] {
	case "show":
		d, _, err := newReconciler(ctx, cfg, tenantID)
		if err != nil {
			return err
		}
		printConfig(d.Config())
		return nil

	case "set-prompt":
		if len(args) < 3 {
			return fmt.Errorf("usage: config set-prompt <tenant> <text>")
		}
		d, rec, err := newReconciler(ctx, cfg, tenantID)
		if err != nil {
			return err
		}
		if err := d.SetField("system_prompt", strings.Join(args[2:], " ")); err != nil {
			return err
		}
		report, err := rec.Save(ctx)
		if err != nil {
			return err
		}
		printReport(report)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func cmdKB(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: kb list|add|rm <tenant> [args]")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tenantID := args[1]

	switch args[0] {
	case "list":
		d, _, err := newReconciler(ctx, cfg, tenantID)
		if err != nil {
			return err
		}
		printRecords(d.Records())
		return nil

	case "add":
		fs := flag.NewFlagSet("kb add", flag.ContinueOnError)
		name := fs.String("name", "", "record name (required)")
		content := fs.String("content", "", "record content (required)")
		description := fs.String("description", "", "record description")
		filler := fs.String("filler", "", "filler text spoken while the agent looks up the record")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}

		d, rec, err := newReconciler(ctx, cfg, tenantID)
		if err != nil {
			return err
		}
		if err := d.AddRecord(remote.KnowledgeBaseRecord{
			Name:        *name,
			Content:     *content,
			Description: *description,
			FillerText:  *filler,
		}); err != nil {
			return err
		}
		report, err := rec.Save(ctx)
		if err != nil {
			return err
		}
		printReport(report)
		printRecords(d.Records())
		return nil

	case "rm":
		if len(args) < 3 {
			return fmt.Errorf("usage: kb rm <tenant> <kb-id>")
		}
		d, rec, err := newReconciler(ctx, cfg, tenantID)
		if err != nil {
			return err
		}
		if err := d.RemoveRecordByID(args[2]); err != nil {
			return err
		}
		report, err := rec.Save(ctx)
		if err != nil {
			return err
		}
		printReport(report)
		return nil

	default:
		return fmt.Errorf("unknown kb subcommand: %s", args[0])
	}
}

// cmdSave hydrates and immediately saves, re-pushing the canonical state.
// Useful to verify credentials and exercise the full save path for a tenant.
func cmdSave(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: save <tenant>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, rec, err := newReconciler(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	report, err := rec.Save(ctx)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func cmdHistory(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: history <tenant>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Gateway.URL == "" {
		return fmt.Errorf("gateway.url is required in %s for history", getConfigPath())
	}

	url := strings.TrimRight(cfg.Gateway.URL, "/") + "/api/admin/tenants/" + args[0] + "/saves"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if cfg.Gateway.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Gateway.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var body struct {
		Saves []struct {
			SaveID     string `json:"save_id"`
			Success    bool   `json:"success"`
			FinishedAt string `json:"finished_at"`
			Operations []struct {
				Kind   string `json:"kind"`
				Target string `json:"target"`
				OK     bool   `json:"ok"`
			} `json:"operations"`
		} `json:"saves"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding history: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SAVE\tVERDICT\tOPS\tFINISHED")
	for _, s := range body.Saves {
		verdict := color.GreenString("ok")
		if !s.Success {
			verdict = color.RedString("failed")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.SaveID[:8], verdict, len(s.Operations), s.FinishedAt)
	}
	return w.Flush()
}

func cmdHashKey(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: hash-key <key>")
	}
	hash, err := auth.HashAPIKey(args[0])
	if err != nil {
		return fmt.Errorf("hashing key: %w", err)
	}
	fmt.Println(hash)
	return nil
}

func printConfig(cfg remote.TenantConfiguration) {
	yellow := color.New(color.FgYellow)

	yellow.Println("System prompt:")
	fmt.Println("  " + strings.ReplaceAll(cfg.SystemPrompt, "\n", "\n  "))
	fmt.Println()

	yellow.Println("Telephony:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "  phone\t%s\n", cfg.Telephony.PhoneNumber)
	fmt.Fprintf(w, "  forwarding\t%s\n", cfg.Telephony.ForwardingNumber)
	fmt.Fprintf(w, "  transfer\t%s (%s)\n", cfg.Telephony.TransferNumber, cfg.Telephony.TransferContact)
	w.Flush()
	fmt.Println()

	yellow.Println("Workflows:")
	for _, wf := range cfg.Workflows {
		fmt.Printf("  %s -> %s\n", wf.Name, wf.URL)
	}
	fmt.Println()

	yellow.Println("Taxonomies:")
	fmt.Printf("  reasons:  %s\n", strings.Join(cfg.CallReasons, ", "))
	fmt.Printf("  outcomes: %s\n", strings.Join(cfg.CallOutcomes, ", "))
	fmt.Printf("  reports:  %s\n", strings.Join(cfg.ReportFields, ", "))
}

func printRecords(records []remote.KnowledgeBaseRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tBYTES")
	for _, r := range records {
		id := r.ID
		if id == "" {
			id = color.YellowString("(unsaved)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", id, r.Name, r.Description, len(r.Content))
	}
	w.Flush()
}

func printReport(report *reconcile.Report) {
	if report.Success() {
		color.Green("Save %s succeeded (%d operations)\n", report.SaveID[:8], len(report.Operations))
		return
	}

	color.Red("Save %s failed\n", report.SaveID[:8])
	for _, op := range report.Failed() {
		fmt.Printf("  %s %s: %v\n", op.Kind, op.Target, op.Err)
	}
}
