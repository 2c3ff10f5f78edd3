package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"tools.zach/dev/vlccord/internal/artwork"
	"tools.zach/dev/vlccord/internal/clean"
	"tools.zach/dev/vlccord/internal/config"
	"tools.zach/dev/vlccord/internal/logger"
	"tools.zach/dev/vlccord/internal/paths"
	"tools.zach/dev/vlccord/internal/presence"
	"tools.zach/dev/vlccord/internal/vlc"
)

// ///////////////////////////////////////////////
// inspect
// ///////////////////////////////////////////////

func newInspectCmd(dataDir *string) *cobra.Command {
	var withArtwork bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Fetch VLC's status once and print the presence it would produce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*dataDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return inspect(cmd.Context(), cmd.OutOrStdout(), cfg, withArtwork)
		},
	}
	cmd.Flags().BoolVar(&withArtwork, "artwork", false, "resolve cover art (uploads or searches)")
	return cmd
}

// inspect prints one snapshot and the activity built from it.
func inspect(ctx context.Context, w io.Writer, cfg *config.Config, withArtwork bool) error {
	source := newStatusClient(cfg)
	snap, err := source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch status from %s: %w", cfg.StatusURL(), err)
	}

	fmt.Fprintf(w, "state:      %s\n", snap.State)
	fmt.Fprintf(w, "position:   %ds / %ds\n", snap.Time, snap.Length)
	fmt.Fprintf(w, "filename:   %s\n", snap.Meta.Filename)
	if cfg.IsIgnored(snap.Meta.Filename) {
		fmt.Fprintln(w, "ignored:    yes (privacy.ignore)")
	}

	builder := presence.NewBuilder(presence.BuilderOptionsFromConfig(cfg))
	if !snap.Active() || cfg.IsIgnored(snap.Meta.Filename) {
		return printActivity(w, builder.Idle())
	}

	d := builder.Describe(snap)
	fmt.Fprintf(w, "activity:   %s\n", d.Class.Activity)
	fmt.Fprintf(w, "quality:    %s\n", d.Class.Quality)
	fmt.Fprintf(w, "languages:  %s\n", strings.Join(d.Class.Languages, ", "))
	fmt.Fprintf(w, "search:     %q / %q\n", d.Artwork.Title, d.Artwork.Secondary)

	image := builder.DefaultImage()
	if withArtwork && cfg.Display.ShowCoverArt {
		image = newArtworkResolver(cfg).Resolve(ctx, d.Artwork, image)
	}
	// Position zero keeps the output stable; the daemon anchors to the clock.
	start := -snap.Time * 1000
	return printActivity(w, builder.Activity(d, image, snap.State == vlc.StatePlaying, start, start+snap.Length*1000))
}

func printActivity(w io.Writer, a any) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	fmt.Fprintf(w, "presence:\n%s\n", b)
	return nil
}

// ///////////////////////////////////////////////
// clean
// ///////////////////////////////////////////////

func newCleanCmd() *cobra.Command {
	var junk []string
	cmd := &cobra.Command{
		Use:   "clean TEXT...",
		Short: "Print each argument as the metadata cleaner sees it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, raw := range args {
				out := clean.Clean(raw, junk)
				if year := clean.ExtractYear(raw); year != "" {
					fmt.Fprintf(w, "%s\t(%s)\n", out, year)
					continue
				}
				fmt.Fprintln(w, out)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&junk, "junk", nil, "extra junk word to remove (repeatable)")
	return cmd
}

// ///////////////////////////////////////////////
// logs
// ///////////////////////////////////////////////

func newLogsCmd(dataDir *string) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := paths.DataDir{Root: *dataDir}
			tail, err := logger.ReadTail(dir.Log(), lines)
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}
			if tail != "" {
				fmt.Fprintln(cmd.OutOrStdout(), tail)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show")
	return cmd
}

// ///////////////////////////////////////////////
// version
// ///////////////////////////////////////////////

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", paths.BinaryName, resolveVersion())
		},
	}
}

// ///////////////////////////////////////////////
// Wiring
// ///////////////////////////////////////////////

func newStatusClient(cfg *config.Config) *vlc.Client {
	return vlc.NewClient(cfg.StatusURL(), cfg.VLC.Password, ms(cfg.VLC.TimeoutMS))
}

func newArtworkResolver(cfg *config.Config) *artwork.Resolver {
	return artwork.New(artwork.Options{
		UploadURL:     cfg.Artwork.UploadURL,
		SearchURL:     cfg.Artwork.SearchURL,
		ThumbnailURL:  cfg.Artwork.ThumbnailURL,
		UploadTimeout: ms(cfg.Artwork.UploadTimeoutMS),
		SearchTimeout: ms(cfg.Artwork.SearchTimeoutMS),
		UserAgent:     paths.BinaryName + "/" + resolveVersion(),
	})
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
