package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/ui"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index database status",
		Long: `Show the index database's verse, chunk and term score counts and the
parameters it was built with.`,
		Example: `  versio status
  versio status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, root, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, root *rootOptions, jsonOutput bool) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	st, err := openIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	info := ui.StatusInfo{DBPath: st.Path()}
	if fi, err := os.Stat(st.Path()); err == nil {
		info.SizeBytes = fi.Size()
	}

	if info.Verses, err = st.CountVerses(ctx); err != nil {
		return verrors.StoreError("failed to count verses", err)
	}
	if info.Chunks, err = st.ChunkCount(ctx); err != nil {
		return verrors.StoreError("failed to count chunks", err)
	}
	if info.TermScores, err = st.TermScoreCount(ctx); err != nil {
		return verrors.StoreError("failed to count term scores", err)
	}

	state, err := st.States(ctx)
	if err != nil {
		return err
	}
	info = ui.StatusFromState(info, state)

	r := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()))
	if jsonOutput {
		return r.RenderJSON(info)
	}
	return r.Render(info)
}
