package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/EvanZhouDev/scope-search/client"
	"golang.org/x/sync/errgroup"
)

// CLI flags
var (
	apiURL      = flag.String("api-url", client.DefaultBaseURL, "scope-search base URL")
	apiKey      = flag.String("api-key", "", "API key for authenticated requests")
	engine      = flag.String("engine", "browser", "fetch engine: browser or http")
	runs        = flag.Int("runs", 3, "Number of runs per query")
	concurrency = flag.Int("concurrency", 4, "Number of searches in flight at once")
	output      = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Queries covering a few result-page shapes.
var testQueries = []struct {
	Label string
	Query string
}{
	{"Short", "golang"},
	{"Phrase", "how does a headless browser work"},
	{"Entity", "Eiffel Tower"},
	{"Code", "context.WithTimeout example"},
	{"Rare", "zxqv systems design lecture notes"},
}

// --- Benchmark result types ---

type runResult struct {
	Run       int    `json:"run"`
	LatencyMs int64  `json:"latency_ms"`
	Results   int    `json:"results"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

type queryResult struct {
	Query string      `json:"query"`
	Label string      `json:"label"`
	Runs  []runResult `json:"runs"`
	P50Ms int64       `json:"p50_ms"`
	P95Ms int64       `json:"p95_ms"`
	AvgN  float64     `json:"avg_results"`
}

type benchmarkReport struct {
	Timestamp   string        `json:"timestamp"`
	APIURL      string        `json:"api_url"`
	Engine      string        `json:"engine"`
	RunsPerItem int           `json:"runs_per_query"`
	Concurrency int           `json:"concurrency"`
	WallMs      int64         `json:"wall_ms"`
	Results     []queryResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== scope-search Benchmark ===")
	fmt.Printf("API URL:      %s\n", *apiURL)
	fmt.Printf("Engine:       %s\n", *engine)
	fmt.Printf("Runs/query:   %d\n", *runs)
	fmt.Printf("Concurrency:  %d\n", *concurrency)
	fmt.Printf("Output:       %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure scope is running (e.g. go run ./cmd/scope)\n")
		os.Exit(1)
	}

	opts := []client.Option{client.WithEngine(*engine)}
	if *apiKey != "" {
		opts = append(opts, client.WithAPIKey(*apiKey))
	}
	c := client.New(*apiURL, opts...)

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		Engine:      *engine,
		RunsPerItem: *runs,
		Concurrency: *concurrency,
		Results:     make([]queryResult, len(testQueries)),
	}
	for i, q := range testQueries {
		report.Results[i] = queryResult{Query: q.Query, Label: q.Label, Runs: make([]runResult, *runs)}
	}

	var printMu sync.Mutex
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*concurrency, 1))

	start := time.Now()
	for qi := range testQueries {
		for run := 1; run <= *runs; run++ {
			g.Go(func() error {
				rr := benchmarkQuery(ctx, c, testQueries[qi].Query, run)
				report.Results[qi].Runs[run-1] = rr

				printMu.Lock()
				defer printMu.Unlock()
				if rr.Success {
					fmt.Printf("  [%s] run %d: OK  %dms  %d results\n", testQueries[qi].Label, run, rr.LatencyMs, rr.Results)
				} else {
					fmt.Printf("  [%s] run %d: FAILED %s\n", testQueries[qi].Label, run, rr.Error)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	report.WallMs = time.Since(start).Milliseconds()

	for i := range report.Results {
		summarize(&report.Results[i])
	}

	fmt.Println()
	printTable(report.Results)
	fmt.Printf("Wall time: %dms\n", report.WallMs)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	hc := &http.Client{Timeout: 10 * time.Second}
	resp, err := hc.Get(strings.TrimRight(baseURL, "/") + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkQuery(ctx context.Context, c *client.Client, query string, run int) runResult {
	rr := runResult{Run: run}

	start := time.Now()
	results, err := c.Search(ctx, query)
	rr.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			rr.ErrorCode = apiErr.Code
		}
		rr.Error = err.Error()
		return rr
	}

	rr.Success = true
	rr.Results = len(results)
	return rr
}

// summarize fills the latency percentiles and mean result count from the
// successful runs.
func summarize(q *queryResult) {
	var latencies []int64
	var total int
	for _, r := range q.Runs {
		if !r.Success {
			continue
		}
		latencies = append(latencies, r.LatencyMs)
		total += r.Results
	}
	if len(latencies) == 0 {
		return
	}
	slices.Sort(latencies)
	q.P50Ms = percentile(latencies, 50)
	q.P95Ms = percentile(latencies, 95)
	q.AvgN = float64(total) / float64(len(latencies))
}

func percentile(sorted []int64, p int) int64 {
	idx := (len(sorted)*p + 99) / 100
	if idx < 1 {
		idx = 1
	}
	return sorted[idx-1]
}

func printTable(results []queryResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Query\tp50\tp95\tAvg Results\tFailures\n")
	fmt.Fprintf(w, "─────\t───\t───\t───────────\t────────\n")

	for _, r := range results {
		failures := 0
		for _, run := range r.Runs {
			if !run.Success {
				failures++
			}
		}
		if failures == len(r.Runs) {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t%s\n", truncate(r.Query, 40), dominantError(r.Runs))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%.1f\t%d\n",
			truncate(r.Query, 40), r.P50Ms, r.P95Ms, r.AvgN, failures)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantError(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if !r.Success && r.ErrorCode != "" {
			counts[r.ErrorCode]++
		}
	}
	best, bestCount := "unknown", 0
	for code, count := range counts {
		if count > bestCount {
			best = code
			bestCount = count
		}
	}
	return best
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
