package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/divlens/api"
	"github.com/seenimoa/divlens/internal/config"
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// withApp wires the process for a command run and tears it down afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Run the full dividend analysis on a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		periodFlag, _ := cmd.Flags().GetString("period")
		refresh, _ := cmd.Flags().GetBool("refresh")
		asJSON, _ := cmd.Flags().GetBool("json")

		period, err := provider.ParsePeriod(periodFlag)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app) error {
			analysis, err := a.orch.Analyze(ctx, args[0], period, refresh)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(analysis)
			}
			printAnalysis(analysis)
			return nil
		})
	},
}

func init() {
	analyzeCmd.Flags().String("period", "annual", "statement period (annual, quarterly)")
	analyzeCmd.Flags().Bool("refresh", false, "clear the symbol's cache before fetching")
	analyzeCmd.Flags().Bool("json", false, "print the full analysis as JSON")
}

func printAnalysis(a *models.StockAnalysis) {
	ov := a.Overview
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  %s  %s\n", a.Symbol, ov.Name)
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  Sector:          %s / %s\n", orDash(ov.Sector), orDash(ov.Industry))
	fmt.Printf("  Price:           %s\n", num(ov.CurrentPrice))
	fmt.Printf("  Market Cap:      %s\n", num(ov.MarketCap))
	fmt.Println()

	if dm := a.DividendMetrics; dm != nil {
		fmt.Println("  Dividends:")
		fmt.Printf("    Yield:            %s%%\n", num(dm.CurrentYield))
		fmt.Printf("    Annual Dividend:  %s\n", num(dm.AnnualDividend))
		fmt.Printf("    Payout Ratio:     %s%%\n", num(dm.PayoutRatio))
		fmt.Printf("    Payments:         %d (latest ex-date %s)\n", dm.PaymentCount, orDash(dm.LatestExDate))
		fmt.Printf("    Growth Streak:    %d\n", dm.ConsecutiveGrowthYears)
		fmt.Printf("    FCF Coverage:     %s\n", num(dm.FCFCoverage))
		fmt.Printf("    Consistency:      %s\n", dm.Consistency)
		fmt.Println()
	}

	if g := a.GrowthMetrics; g != nil {
		fmt.Println("  Growth (CAGR %, 3Y / 5Y):")
		fmt.Printf("    Revenue:   %s / %s\n", num(g.RevenueCAGR3Y), num(g.RevenueCAGR5Y))
		fmt.Printf("    EPS:       %s / %s\n", num(g.EPSCAGR3Y), num(g.EPSCAGR5Y))
		fmt.Printf("    FCF:       %s / %s\n", num(g.FCFCAGR3Y), num(g.FCFCAGR5Y))
		fmt.Printf("    Dividend:  %s / %s\n", num(g.DividendCAGR3Y), num(g.DividendCAGR5Y))
		fmt.Println()
	}

	if r := a.RiskFactors; r != nil {
		fmt.Printf("  Risk:            %.2f (%s, grade %s)\n", r.OverallScore, r.Level, r.Grade)
	}
	if s := a.AnalystSentiment; s != nil {
		fmt.Printf("  Analysts:        %s (%d ratings, %.2f%% buy, upside %s%%)\n",
			s.Consensus, s.TotalRatings, s.BuyPercent, num(s.Upside))
	}
	fmt.Println()

	fmt.Println("  Data Sources:")
	cats := make([]string, 0, len(a.DataFreshness))
	for c := range a.DataFreshness {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		f := a.DataFreshness[c]
		fmt.Printf("    %-10s %-15s %s\n", c, f.Status, orDash(f.Source))
	}
	fmt.Println("═══════════════════════════════════════")
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [category] [ticker]",
	Short: "Fetch one data category through the provider chain",
	Long: `Fetch one category (overview, dividends, income, balance, cashflow,
earnings) for a ticker and print the classified result as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := provider.ParseCategory(args[0])
		if err != nil {
			return err
		}
		symbol, err := utils.ValidateTicker(args[1])
		if err != nil {
			return err
		}
		periodFlag, _ := cmd.Flags().GetString("period")
		period, err := provider.ParsePeriod(periodFlag)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app) error {
			res := a.orch.Fetch(ctx, provider.Request{Category: cat, Symbol: symbol, Period: period})
			if err := printJSON(res); err != nil {
				return err
			}
			if res.Status == provider.StatusProviderError {
				return fmt.Errorf("%s %s: %s", cat, symbol, res.Error)
			}
			return nil
		})
	},
}

func init() {
	fetchCmd.Flags().String("period", "annual", "statement period (annual, quarterly)")
}

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show the provider chain and each provider's health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(_ context.Context, a *app) error {
			statuses := a.orch.ProvidersStatus()
			if len(statuses) == 0 {
				fmt.Println("No providers configured.")
				return nil
			}
			fmt.Printf("%-4s %-14s %-10s %-12s %s\n", "PRI", "PROVIDER", "AVAILABLE", "CALLS", "BLOCKED")
			for _, st := range statuses {
				calls := strconv.Itoa(st.DailyCalls)
				if st.DailyLimit != nil {
					calls += "/" + strconv.Itoa(*st.DailyLimit)
				}
				fmt.Printf("%-4d %-14s %-10t %-12s %d\n", st.Priority, st.Name, st.Available, calls, st.BlockedEndpointCount)
			}
			return nil
		})
	},
}

// --- Cache Commands ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the disk cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(_ context.Context, a *app) error {
			return printJSON(a.orch.CacheStats())
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cache entries (all, or by --category / --symbol)",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		symbol, _ := cmd.Flags().GetString("symbol")
		if category != "" && symbol != "" {
			return fmt.Errorf("use either --category or --symbol, not both")
		}

		return withApp(func(_ context.Context, a *app) error {
			var n int
			switch {
			case category != "":
				cat, err := provider.ParseCategory(category)
				if err != nil {
					return err
				}
				n = a.orch.ClearCacheCategory(cat)
			case symbol != "":
				sym, err := utils.ValidateTicker(symbol)
				if err != nil {
					return err
				}
				n = a.orch.ClearCacheSymbol(sym)
			default:
				n = a.orch.ClearCache()
			}
			fmt.Printf("Removed %d cache entries.\n", n)
			return nil
		})
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Load fresh disk entries into memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(_ context.Context, a *app) error {
			fmt.Printf("Warmed %d cache entries.\n", a.orch.WarmCache())
			return nil
		})
	},
}

func init() {
	cacheClearCmd.Flags().String("category", "", "only clear this category")
	cacheClearCmd.Flags().String("symbol", "", "only clear this symbol")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheWarmCmd)
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show recent headlines for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withApp(func(ctx context.Context, a *app) error {
			if a.news == nil {
				return fmt.Errorf("headlines are disabled (news.enabled=false)")
			}
			items, err := a.news.Headlines(ctx, args[0], limit)
			if err != nil {
				return err
			}
			for _, h := range items {
				fmt.Printf("%s  %s\n    %s\n", orDash(h.PublishedAt), h.Title, h.URL)
			}
			return nil
		})
	},
}

func init() {
	newsCmd.Flags().Int("limit", 0, "maximum headlines (default from config)")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var headlines api.Headlines
		if a.news != nil {
			headlines = a.news
		}
		srv := api.NewServer(cfg, a.orch, headlines, version, a.log)
		addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  divlens: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Cache:         %s (enabled: %t)\n", cfg.Cache.Dir, cfg.Cache.Enabled)
		fmt.Printf("    Negative TTL:  %dh\n", cfg.Cache.NegativeTTLHours)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Headlines:     %t\n", cfg.News.Enabled)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
