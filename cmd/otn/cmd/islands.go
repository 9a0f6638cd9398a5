package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcbconn"
	"github.com/spf13/cobra"
)

var islandsCmd = &cobra.Command{
	Use:   "islands <board_file>",
	Short: "Find zone fill islands that connect to nothing",
	Long: `Build the connectivity of a board and classify the filled islands of
every zone. Isolated islands touch no other copper of their net and are
usually removed by the fill; single-connection islands hang off exactly one
item. Islands are numbered in file order per zone and layer.`,
	Args: cobra.ExactArgs(1),
	RunE: runIslands,
}

func init() {
	rootCmd.AddCommand(islandsCmd)
}

// ZoneIslands is the island classification of one zone on one layer.
type ZoneIslands struct {
	Zone             string `json:"zone"`
	Net              string `json:"net"`
	Layer            string `json:"layer"`
	Islands          int    `json:"islands"`
	Isolated         []int  `json:"isolated"`
	SingleConnection []int  `json:"single_connection"`
}

func runIslands(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	islands := make(connectivity.ZoneIslandMap, len(s.adapter.Zones))
	for _, z := range s.adapter.Zones {
		islands[z] = nil
	}
	if err := s.engine.FillIsolatedIslandsMap(ctx, islands, true); err != nil {
		return err
	}

	var results []ZoneIslands
	for _, z := range s.adapter.Zones {
		for _, layer := range z.Layers().Layers() {
			set := islands[z][layer]
			if set == nil {
				continue
			}
			results = append(results, ZoneIslands{
				Zone:             pcbconn.Describe(z),
				Net:              s.netLabel(z.NetCode()),
				Layer:            s.adapter.LayerName(layer),
				Islands:          len(z.FilledPolygons(layer)),
				Isolated:         nonNil(set.Isolated),
				SingleConnection: nonNil(set.SingleConnection),
			})
		}
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No filled zones")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%s (%s) on %s: %d island(s)\n", r.Zone, r.Net, r.Layer, r.Islands)
		fmt.Fprintf(out, "  isolated:          %v\n", r.Isolated)
		fmt.Fprintf(out, "  single connection: %v\n", r.SingleConnection)
	}
	return nil
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
