package savectl

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/value"
)

func init() {
	cmd := &cobra.Command{
		Use:   "verify <slot>",
		Short: "Check that a save slot decodes cleanly",
		Long: `Reads the slot, decodes the envelope and re-encodes every system payload.
A slot that verifies cleanly is structurally sound; whether its version can
be migrated depends on the migrations the running game registers.`,
		Args: cobra.ExactArgs(1),
		RunE: runVerify,
	}
	cmd.Flags().String("target", "", "version to compare against (default CONTINUITY_GAME_VERSION)")
	rootCmd.AddCommand(cmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load slot %s: %w", args[0], err)
	}
	env, err := envelope.Decode(data)
	if err != nil {
		return fmt.Errorf("decode slot %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if !semver.IsValid("v" + env.Version) {
		fmt.Fprintf(out, "warning: version %q is not valid semver; migrations will fall back to a direct path\n", env.Version)
	}
	for key, v := range env.Systems {
		if _, err := value.Encode(v); err != nil {
			return fmt.Errorf("system %s does not re-encode: %w", key, err)
		}
	}

	target, _ := cmd.Flags().GetString("target")
	if target == "" {
		target = cfg.GameVersion
	}
	if target != "" {
		switch semver.Compare("v"+env.Version, "v"+target) {
		case 0:
			fmt.Fprintf(out, "version %s matches target\n", env.Version)
		case -1:
			fmt.Fprintf(out, "version %s is older than target %s; a migration path is required\n", env.Version, target)
		default:
			fmt.Fprintf(out, "version %s is newer than target %s\n", env.Version, target)
		}
	}

	fmt.Fprintf(out, "ok: %d systems, version %s\n", len(env.Systems), env.Version)
	return nil
}
