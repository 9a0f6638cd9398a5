package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcb"
	"github.com/spf13/cobra"
)

var netsCmd = &cobra.Command{
	Use:   "nets <board_file> [net_name]",
	Short: "List clusters of connected copper",
	Long: `Build the connectivity of a board and list every cluster of connected
copper items, grouped per net as the ratsnest sees them. Copper without a net
forms its own clusters.

Without net_name: Lists the clusters of all nets
With net_name: Lists the copper of that net and its clusters; more than one
cluster means the net is not fully routed`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
}

func runNets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	mode, single := connectivity.ClusterRatsnest, connectivity.AnyNet
	var info *pcb.NetInfo
	if len(args) >= 2 {
		if info = s.board.GetNetInfo(args[1]); info == nil {
			return fmt.Errorf("net '%s' not found", args[1])
		}
		mode, single = connectivity.ClusterConnectivity, info.Net.Number
	}

	clusters, err := s.engine.SearchClusters(ctx, mode, false, single)
	if err != nil {
		return err
	}
	report := connectivity.NewReport(mode, clusters, s.board.NetName)

	out := cmd.OutOrStdout()
	if outputJSON {
		data, err := report.ExportJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if bbox := s.board.GetBoundingBox(); !bbox.IsEmpty() {
		fmt.Fprintf(out, "Board size: %.2f x %.2f mm\n", bbox.Width(), bbox.Height())
	}
	if info != nil {
		fmt.Fprintf(out, "Net: %s (number %d): %d pads, %d tracks, %d arcs, %d vias, %d zones\n",
			info.Net.Name, info.Net.Number,
			len(info.Pads), len(info.Tracks), len(info.Arcs), len(info.Vias), len(info.Zones))
	}
	fmt.Fprintf(out, "Board: %d clusters, %d conflicting, %d without net\n\n",
		len(report.Clusters), report.Conflicting, report.Orphaned)
	fmt.Fprintf(out, "%4s %-24s %-12s %6s  %s\n", "ID", "Net", "State", "Items", "Kinds")
	fmt.Fprintln(out, strings.Repeat("─", 72))
	for _, c := range report.Clusters {
		fmt.Fprintf(out, "%4d %-24s %-12s %6d  %s\n",
			c.ID, s.netLabel(c.OriginNet), c.State, c.Items, formatKinds(c.Kinds))
	}
	return nil
}

// formatKinds renders kind counts as "pad:2 track:1", sorted by kind.
func formatKinds(kinds map[string]int) string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s:%d", k, kinds[k])
	}
	return strings.Join(parts, " ")
}
