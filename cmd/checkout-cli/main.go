package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/liushuochen/gotable"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/internal/app"
	"github.com/goliatone/go-checkoutform/internal/config"
	"github.com/goliatone/go-checkoutform/internal/logging"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/orchestrator"
	"github.com/goliatone/go-checkoutform/pkg/renderers/tui"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
)

const usage = `usage: checkout-cli <command> [flags]

commands:
  render   write the checkout form HTML
  regions  list provinces and their reconciled cities
  fill     fill the checkout interactively in the terminal
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:], os.Stdout)
	case "regions":
		err = runRegions(os.Args[2:], os.Stdout)
	case "fill":
		err = runFill(os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logrus.Fatalf("%s: %v", os.Args[1], err)
	}
}

type common struct {
	config string
	level  string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "YAML configuration file")
	fs.StringVar(&c.level, "log-level", "warn", "log level")
}

func (c *common) load() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.config)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(logging.Options{Level: c.level, Format: cfg.Log.Format})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func runRender(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var opts common
	opts.register(fs)
	output := fs.String("output", "", "output file (stdout if empty)")
	state := fs.String("state", "", "preselected province code")
	user := fs.String("user", "", "customer id used for profile prefill")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	userID, err := usermeta.ParseUserID(*user)
	if err != nil {
		return err
	}
	orch, err := app.Orchestrator(cfg, logger)
	if err != nil {
		return err
	}

	req := orchestrator.Request{UserID: userID}
	if *state != "" {
		req.RenderOptions.Values = map[string]string{checkout.FieldState: strings.ToUpper(*state)}
	}
	html, err := orch.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = fmt.Fprintln(stdout, string(html))
		return err
	}
	if err := os.WriteFile(*output, html, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "Form written to %s\n", *output)
	return nil
}

func runRegions(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	var opts common
	opts.register(fs)
	region := fs.String("region", "", "show only this province code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	snapshot := app.Geo(cfg, logger).Load(context.Background())
	table, err := regionsTable(snapshot, strings.ToUpper(strings.TrimSpace(*region)))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%v", table)
	return err
}

// regionsTable renders the reconciled mapping; gotable prints through %v.
func regionsTable(snapshot geo.Snapshot, only string) (any, error) {
	table, err := gotable.Create("code", "province", "cities", "names")
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	for _, r := range snapshot.Regions {
		if only != "" && r.Code != only {
			continue
		}
		cities := snapshot.Cities.Cities(r.Code)
		row := []string{r.Code, r.Name, strconv.Itoa(len(cities)), strings.Join(cities, "، ")}
		if err := table.AddRow(row); err != nil {
			return nil, fmt.Errorf("add row: %w", err)
		}
	}
	return table, nil
}

func runFill(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	var opts common
	opts.register(fs)
	format := fs.String("format", string(tui.OutputFormatPrettyText), "output format: json, form, or pretty")
	user := fs.String("user", "", "customer id used for profile prefill and save")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	userID, err := usermeta.ParseUserID(*user)
	if err != nil {
		return err
	}

	var collected map[string]string
	terminal, err := tui.New(
		tui.WithOutputFormat(tui.OutputFormat(*format)),
		tui.WithSubmitTransformer(func(values map[string]string) (map[string]string, error) {
			collected = values
			return values, nil
		}),
	)
	if err != nil {
		return err
	}
	orch, err := app.Orchestrator(cfg, logger, terminal)
	if err != nil {
		return err
	}

	ctx := context.Background()
	out, err := orch.Generate(ctx, orchestrator.Request{UserID: userID, Renderer: terminal.Name()})
	if err != nil {
		return err
	}

	result, err := orch.Submit(ctx, orchestrator.Submission{UserID: userID, Values: collected})
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("submission rejected: %v", result.Errors.Fields)
	}
	_, err = stdout.Write(out)
	return err
}
