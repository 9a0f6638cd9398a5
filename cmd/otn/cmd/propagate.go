package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcbconn"
	"github.com/spf13/cobra"
)

var propagateCmd = &cobra.Command{
	Use:   "propagate <board_file>",
	Short: "Show the nets connected copper would inherit",
	Long: `Build the connectivity of a board and propagate nets from pads to the
copper touching them, such as tracks drawn without a net. Every proposed
change is printed; the board file is left untouched.

Clusters joining different pad nets are skipped and reported by 'otn nets'.`,
	Args: cobra.ExactArgs(1),
	RunE: runPropagate,
}

func init() {
	rootCmd.AddCommand(propagateCmd)
}

// NetChange is one proposed net rewrite.
type NetChange struct {
	Item string `json:"item"`
	From string `json:"from"`
	To   string `json:"to"`
}

// changeRecorder is a CommitSink remembering each item's net before
// propagation rewrites it.
type changeRecorder struct {
	items []connectivity.BoardItem
	nets  []int
}

func (r *changeRecorder) Modify(item connectivity.BoardItem) {
	r.items = append(r.items, item)
	r.nets = append(r.nets, item.NetCode())
}

func runPropagate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	rec := &changeRecorder{}
	changed, err := s.engine.PropagateNets(ctx, rec)
	if err != nil {
		return err
	}

	changes := make([]NetChange, len(rec.items))
	for i, item := range rec.items {
		changes[i] = NetChange{
			Item: pcbconn.Describe(item),
			From: s.netLabel(rec.nets[i]),
			To:   s.netLabel(item.NetCode()),
		}
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		data, err := json.MarshalIndent(changes, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%d item(s) would change net\n", changed)
	for _, c := range changes {
		fmt.Fprintf(out, "  %-40s %s -> %s\n", c.Item, c.From, c.To)
	}
	return nil
}
