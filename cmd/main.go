package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"landlords/internal/address"
	"landlords/internal/api"
	"landlords/internal/config"
	"landlords/internal/database"
	"landlords/internal/dataset"
	"landlords/internal/geo"
	"landlords/internal/loader"
	"landlords/internal/owners"
	"landlords/internal/types"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	source     string
	path       string
	logLevel   string
}

// app is a loaded dataset plus everything needed to query and render it.
type app struct {
	cfg      *config.Config
	store    *dataset.Store
	resolver *owners.Resolver
	proj     geo.Projection
	logger   *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "landlords",
		Short:        "Find every unit owned by the landlord of an address",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			interactiveLoop(a)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv("LANDLORDS_CONFIG"), "YAML config file")
	flags.StringVar(&opts.source, "source", "", "dataset source: delimited, shapefile, oracle or postgres")
	flags.StringVar(&opts.path, "path", "", "dataset file for delimited and shapefile sources")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newSearchCmd(opts), newNormalizeCmd(), newServeCmd(opts))
	return root
}

func newSearchCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <address>",
		Short: "List the other addresses held by the owner of <address>",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			input := strings.Join(args, " ")
			if asJSON {
				return printJSON(a, input)
			}
			lookupAndRender(a, input, false)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the match and map markers as JSON")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [address]",
		Short: "Print the canonical form of an address (reads lines from stdin without arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				fmt.Fprintln(out, address.Normalize(strings.Join(args, " ")))
				return nil
			}
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				fmt.Fprintln(out, address.Normalize(scanner.Text()))
			}
			return scanner.Err()
		},
	}
}

// setup loads configuration, installs the logger and loads the dataset.
func setup(ctx context.Context, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.source != "" {
		cfg.Source = opts.source
	}
	if opts.path != "" {
		cfg.Path = opts.path
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	proj, err := geo.ProjectionByName(cfg.Projection)
	if err != nil {
		return nil, err
	}

	ds, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	store := dataset.NewStore(ds)
	return &app{
		cfg:      cfg,
		store:    store,
		resolver: owners.NewResolver(store, logger),
		proj:     proj,
		logger:   logger,
	}, nil
}

// loadDataset reads the configured source and builds the indexed dataset.
func loadDataset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dataset.Dataset, error) {
	start := time.Now()

	var (
		records []types.Property
		err     error
	)
	switch cfg.Source {
	case config.SourceDelimited:
		records, err = loader.ReadDelimited(cfg.Path, cfg.Separator(), cfg.Columns)
	case config.SourceShapefile:
		records, err = loader.ReadShapefile(cfg.Path, cfg.Columns)
	case config.SourceOracle:
		var db *database.Database
		db, err = database.NewDatabase(ctx, cfg.Oracle)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		records, err = db.LoadProperties(ctx, cfg.Table, cfg.Columns)
	case config.SourcePostgres:
		var pg *database.Postgres
		pg, err = database.NewPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		defer pg.Close()
		records, err = pg.LoadProperties(ctx, cfg.Table, cfg.Columns)
	default:
		err = fmt.Errorf("unknown source %q", cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	ds := dataset.New(records)
	logger.Info("dataset loaded",
		"source", cfg.Source,
		"records", ds.Len(),
		"addresses", len(ds.Addresses()),
		"elapsed", time.Since(start).Truncate(time.Millisecond))
	return ds, nil
}

// interactiveLoop prompts for addresses until a blank line.
func interactiveLoop(a *app) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter address (blank to quit): ")
		input, err := reader.ReadString('\n')
		addrInput := strings.TrimSpace(input)
		if addrInput == "" {
			return
		}
		lookupAndRender(a, addrInput, true)
		if err != nil {
			return
		}
	}
}

// lookupAndRender resolves the landlord of input and prints the other
// addresses they hold. With browse set, the list can be walked with the
// arrow keys to show each record.
func lookupAndRender(a *app, input string, browse bool) {
	m, ds, err := a.resolver.Resolve(input)
	if errors.Is(err, owners.ErrNotFound) {
		fmt.Printf("No address found matching '%s'.\n", input)
		return
	}

	fmt.Printf("Owner Name: %s\n", m.OwnerName)
	if m.Empty() {
		fmt.Printf("No other addresses found associated with '%s'.\n", input)
		return
	}

	markers := make(map[string]geo.Marker)
	for _, mk := range geo.BuildMap(ds, m.Addresses, a.proj).Markers {
		markers[mk.Address] = mk
	}

	fmt.Printf("Addresses with same landlord as '%s':\n", input)
	lines := make([]string, 0, len(m.Addresses))
	for _, addr := range m.Addresses {
		line := addr
		if mk, ok := markers[addr]; ok {
			line = fmt.Sprintf("%-50s | %9.5f, %10.5f", addr, mk.Lat, mk.Lon)
		}
		lines = append(lines, line)
		fmt.Println(line)
	}

	if browse {
		fmt.Println("Use ↑/↓ and Enter for details, Esc to exit.")
		interactiveSelect(lines, func(i int) {
			renderProperty(ds, m.Addresses[i], a.proj)
		})
	}
}

// renderProperty prints every record at a canonical address.
func renderProperty(ds *dataset.Dataset, canonical string, proj geo.Projection) {
	fmt.Println(strings.Repeat("-", 80))
	for _, p := range ds.Lookup(canonical) {
		fmt.Printf("Address           : %s\n", p.CanonicalAddress)
		fmt.Printf("As recorded       : %s\n", p.RawAddress)
		fmt.Printf("Owner             : %s\n", p.OwnerName)
		ownerAddr := p.OwnerAddress
		if p.OwnerCityState != "" || p.OwnerZip != "" {
			ownerAddr = fmt.Sprintf("%s, %s %s", p.OwnerAddress, p.OwnerCityState, p.OwnerZip)
		}
		fmt.Printf("Owner Address     : %s\n", ownerAddr)
		if p.AccountNum != "" {
			fmt.Printf("Account           : %s\n", p.AccountNum)
		}
	}
	m := geo.BuildMap(ds, []string{canonical}, proj)
	if len(m.Markers) > 0 {
		fmt.Printf("Location          : %.6f, %.6f\n", m.Markers[0].Lat, m.Markers[0].Lon)
	} else {
		fmt.Println("Location unavailable")
	}
	fmt.Println(strings.Repeat("-", 80))
}

// printJSON writes the search result in the same shape the HTTP API uses.
func printJSON(a *app, input string) error {
	m, ds, err := a.resolver.Resolve(input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(api.SearchResult{Match: m, Map: geo.BuildMap(ds, m.Addresses, a.proj)})
}
