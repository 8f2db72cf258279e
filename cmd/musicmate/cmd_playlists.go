package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
	"github.com/ewilliams-labs/musicmate/internal/core/services"
)

var (
	assumeYes bool
	fromLast  int
	newTrack  domain.Track
)

var playlistsCmd = &cobra.Command{
	Use:     "playlists",
	Aliases: []string{"pl"},
	Short:   "Manage playlists",
	Args:    cobra.NoArgs,
	RunE:    listPlaylists,
}

var playlistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists",
	Args:  cobra.NoArgs,
	RunE:  listPlaylists,
}

var playlistsShowCmd = &cobra.Command{
	Use:   "show [playlist]",
	Short: "Show the tracks of a playlist (by name or id)",
	Args:  cobra.ExactArgs(1),
	RunE:  showPlaylist,
}

var playlistsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an empty playlist",
	Args:  cobra.MinimumNArgs(1),
	RunE:  createPlaylist,
}

var playlistsDeleteCmd = &cobra.Command{
	Use:   "delete [playlist]",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  deletePlaylist,
}

var playlistsAddCmd = &cobra.Command{
	Use:   "add [playlist]",
	Short: "Add a track to a playlist",
	Long: `Adds a track to a playlist, either one of the last recommendations or
one you describe yourself.`,
	Example: `  musicmate playlists add Focus --from-last 2
  musicmate playlists add Focus --title "Nuvole Bianche" --artist "Ludovico Einaudi"`,
	Args: cobra.ExactArgs(1),
	RunE: addTrack,
}

var playlistsRemoveCmd = &cobra.Command{
	Use:   "remove [playlist] [position]",
	Short: "Remove the track at a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE:  removeTrack,
}

func init() {
	playlistsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	playlistsAddCmd.Flags().IntVar(&fromLast, "from-last", 0, "Position of a track in the last recommendations")
	playlistsAddCmd.Flags().StringVar(&newTrack.Title, "title", "", "Track title")
	playlistsAddCmd.Flags().StringVar(&newTrack.Artist, "artist", "", "Track artist")
	playlistsAddCmd.Flags().StringVar(&newTrack.Genre, "genre", "", "Track genre")
	playlistsAddCmd.Flags().StringVar(&newTrack.Source, "source", "", "Where the track is hosted")
	playlistsAddCmd.Flags().StringVar(&newTrack.URL, "url", "", "Link to the track")
	playlistsAddCmd.Flags().StringVar(&newTrack.Description, "description", "", "Short description")
	playlistsAddCmd.MarkFlagsMutuallyExclusive("from-last", "title")

	playlistsCmd.AddCommand(playlistsListCmd)
	playlistsCmd.AddCommand(playlistsShowCmd)
	playlistsCmd.AddCommand(playlistsCreateCmd)
	playlistsCmd.AddCommand(playlistsDeleteCmd)
	playlistsCmd.AddCommand(playlistsAddCmd)
	playlistsCmd.AddCommand(playlistsRemoveCmd)
}

func listPlaylists(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprint(cmd.OutOrStdout(), a.renderer.Playlists(a.store.Playlists()))
	return nil
}

func showPlaylist(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := findPlaylist(a.store, args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), a.renderer.Playlist(p))
	return nil
}

func createPlaylist(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.CreatePlaylist(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), a.renderer.Notice(fmt.Sprintf("Playlist %q created (%s)", p.Name, p.ID)))
	return nil
}

func deletePlaylist(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := findPlaylist(a.store, args[0])
	if err != nil {
		return err
	}

	if !assumeYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and its %d tracks?", p.Name, len(p.Tracks))).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}

	if err := a.store.DeletePlaylist(cmd.Context(), p.ID); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), a.renderer.Notice(fmt.Sprintf("Playlist %q deleted", p.Name)))
	return nil
}

func addTrack(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := findPlaylist(a.store, args[0])
	if err != nil {
		return err
	}

	track := newTrack
	if fromLast > 0 {
		last := a.store.LastKnownTracks()
		if fromLast > len(last) {
			return fmt.Errorf("there are only %d recent recommendations", len(last))
		}
		track = last[fromLast-1]
	} else if strings.TrimSpace(track.Title) == "" || strings.TrimSpace(track.Artist) == "" {
		return errors.New("give --from-last or both --title and --artist")
	}

	updated, err := a.store.AddTrackManually(cmd.Context(), p.ID, track)
	if errors.Is(err, domain.ErrDuplicateTrack) {
		return fmt.Errorf("%q by %s is already in %q", track.Title, track.Artist, p.Name)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), a.renderer.Playlist(updated))
	return nil
}

func removeTrack(cmd *cobra.Command, args []string) error {
	position, err := strconv.Atoi(args[1])
	if err != nil || position < 1 {
		return fmt.Errorf("position must be a number starting at 1, got %q", args[1])
	}

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := findPlaylist(a.store, args[0])
	if err != nil {
		return err
	}

	updated, err := a.store.RemoveTrackManually(cmd.Context(), p.ID, position-1)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), a.renderer.Playlist(updated))
	return nil
}

// findPlaylist resolves ref as an id first, then as a case-insensitive name.
func findPlaylist(store *services.Store, ref string) (domain.Playlist, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Playlist{}, errors.New("name a playlist")
	}
	if p, err := store.Playlist(ref); err == nil {
		return p, nil
	}
	playlists := store.Playlists()
	if i := domain.FindByName(playlists, ref); i >= 0 {
		return playlists[i], nil
	}
	return domain.Playlist{}, fmt.Errorf("no playlist named %q: %w", ref, domain.ErrNotFound)
}
