package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

func newStatsCmd() *cobra.Command {
	var server string
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Show cache statistics of a running daemon",
		Example: "  scened stats --server http://localhost:8080",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			var st types.PerformanceStats
			if err := getJSON(ctx, server, "/stats", &st); err != nil {
				return err
			}
			var status types.StatusResponse
			if err := getJSON(ctx, server, "/status", &status); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"stats": st, "status": status})
			}
			return renderStats(out, st, status, time.Now())
		},
	}
	cmd.Flags().StringVar(&server, "server", envOr("SCENED_URL", "http://localhost:8080"), "Base URL of the daemon")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func getJSON(ctx context.Context, base, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e types.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("GET %s: status %d %s", path, resp.StatusCode, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// renderStats prints a human summary of the cache. Times are relative to now.
func renderStats(w io.Writer, st types.PerformanceStats, status types.StatusResponse, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "state\t%s\n", status.State)
	fmt.Fprintf(tw, "uptime\t%s\n", humanize.RelTime(now.Add(-time.Duration(status.UptimeSeconds)*time.Second), now, "", ""))
	fmt.Fprintf(tw, "warm scenes\t%d / %d\n", st.TotalWarmScenes, st.MaxWarmScenes)
	fmt.Fprintf(tw, "memory units\t%s\n", humanize.Comma(int64(st.MemoryUsage)))
	fmt.Fprintf(tw, "rendered\t%s\n", humanize.Bytes(uint64(st.RenderedBytes)))
	if st.TotalWarmScenes > 0 {
		avg := now.Add(-time.Duration(st.AverageAgeMs) * time.Millisecond)
		fmt.Fprintf(tw, "average access\t%s\n", humanize.RelTime(avg, now, "ago", "from now"))
	}
	if len(st.ByState) > 0 {
		states := make([]string, 0, len(st.ByState))
		for k := range st.ByState {
			states = append(states, k)
		}
		sort.Strings(states)
		parts := make([]string, 0, len(states))
		for _, k := range states {
			parts = append(parts, fmt.Sprintf("%s=%d", k, st.ByState[k]))
		}
		fmt.Fprintf(tw, "by state\t%s\n", strings.Join(parts, " "))
	}
	fmt.Fprintf(tw, "warms / evictions\t%s / %s\n", humanize.Comma(int64(status.WarmsTotal)), humanize.Comma(int64(status.EvictionsTotal)))
	if status.LastError != "" {
		fmt.Fprintf(tw, "last error\t%s\n", status.LastError)
	}
	if len(status.Scenes) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SCENE\tTYPE\tSTATE\tSIZE\tACCESSED\tEXPIRES")
		for _, s := range status.Scenes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.SceneID, s.Type, s.RenderState, humanize.Bytes(uint64(s.RenderedBytes)),
				humanize.RelTime(time.Unix(s.LastAccessed, 0), now, "ago", "from now"),
				humanize.RelTime(time.Unix(s.WarmUntil, 0), now, "ago", "from now"))
		}
	}
	return tw.Flush()
}
