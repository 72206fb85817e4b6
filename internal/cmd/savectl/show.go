package savectl

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/value"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <slot>",
		Short: "Print a save slot's envelope",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	cmd.Flags().Bool("raw", false, "dump the raw payload instead of a summary")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load slot %s: %w", args[0], err)
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	env, err := envelope.Decode(data)
	if err != nil {
		return fmt.Errorf("decode slot %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "slot:    %s\n", args[0])
	fmt.Fprintf(out, "version: %s\n", env.Version)
	fmt.Fprintf(out, "saved:   %s\n", env.Timestamp.UTC().Format(time.RFC3339))
	if env.CurrentSceneID != "" {
		fmt.Fprintf(out, "scene:   %s\n", env.CurrentSceneID)
	}
	if len(env.Metadata) > 0 {
		metaKeys := make([]string, 0, len(env.Metadata))
		for key := range env.Metadata {
			metaKeys = append(metaKeys, key)
		}
		sort.Strings(metaKeys)
		fmt.Fprintln(out, "metadata:")
		for _, key := range metaKeys {
			encoded, err := value.Encode(env.Metadata[key])
			if err != nil {
				continue
			}
			fmt.Fprintf(out, "  %s: %s\n", key, encoded)
		}
	}

	keys := make([]string, 0, len(env.Systems))
	for key := range env.Systems {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Fprintf(out, "systems: %d\n", len(keys))
	for _, key := range keys {
		encoded, err := value.Encode(env.Systems[key])
		if err != nil {
			fmt.Fprintf(out, "  %s: <unencodable: %v>\n", key, err)
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", key, encoded)
	}
	return nil
}
