package savectl

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List save slots in the selected backend",
		Args:  cobra.NoArgs,
		RunE:  runList,
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	slots, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}
	if len(slots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no save slots")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tSAVED\tSIZE")
	for _, slot := range slots {
		fmt.Fprintf(w, "%s\t%s\t%d\n", slot.SlotID, slot.Timestamp.UTC().Format(time.RFC3339), slot.Size)
	}
	return w.Flush()
}
