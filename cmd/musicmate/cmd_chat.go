package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/musicmate/internal/core/services"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation with the music discovery agent.

Type a mood, a genre or a playlist request. Commands:
  /playlists        list your playlists
  /show <playlist>  show one playlist by name or id
  /tracks           show the last recommendations
  /quit             leave the chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [utterance]",
	Short: "Send a single message and print the reply",
	Example: `  musicmate ask "some calm piano for reading"
  musicmate ask "add 1 and 3 to Reading"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, a.renderer.Notice("MusicMate is ready. Type /quit to leave."))
	for _, turn := range a.store.Turns() {
		fmt.Fprintln(out, a.renderer.Turn(turn))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := a.command(out, line); quit {
				return nil
			}
			continue
		}
		a.send(ctx, out, line)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.send(ctx, cmd.OutOrStdout(), strings.Join(args, " ")) {
		return errors.New("the agent did not answer")
	}
	return nil
}

// send runs one turn and prints the outcome. It reports whether the agent
// produced a reply.
func (a *app) send(ctx context.Context, out io.Writer, utterance string) bool {
	var reply services.Reply
	action := func(ctx context.Context) error {
		var err error
		reply, err = a.orch.Send(ctx, utterance)
		return err
	}

	var err error
	if plain {
		err = action(ctx)
	} else {
		err = spinner.New().Title("Finding music...").Context(ctx).ActionWithErr(action).Run()
	}

	switch {
	case errors.Is(err, services.ErrSampleMode):
		fmt.Fprint(out, a.renderer.Error("chat is unavailable with --sample; browse the demo with `musicmate playlists --sample`"))
		return false
	case err != nil:
		fmt.Fprint(out, a.renderer.Error(err.Error()))
		return false
	}

	fmt.Fprintln(out, a.renderer.Turn(reply.Turn))
	if reply.Notice != "" {
		fmt.Fprint(out, a.renderer.Notice(reply.Notice))
	}
	if reply.Error != "" {
		fmt.Fprint(out, a.renderer.Error(reply.Error))
		return false
	}
	return true
}

// command handles a chat slash command and reports whether to quit.
func (a *app) command(out io.Writer, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true
	case "/playlists":
		fmt.Fprint(out, a.renderer.Playlists(a.store.Playlists()))
	case "/show":
		p, err := findPlaylist(a.store, arg)
		if err != nil {
			fmt.Fprint(out, a.renderer.Error(err.Error()))
			return false
		}
		fmt.Fprint(out, a.renderer.Playlist(p))
	case "/tracks":
		tracks := a.store.LastKnownTracks()
		if len(tracks) == 0 {
			fmt.Fprint(out, a.renderer.Notice("No recommendations yet."))
			return false
		}
		fmt.Fprint(out, a.renderer.Tracks(tracks))
	default:
		fmt.Fprint(out, a.renderer.Error("unknown command "+name))
	}
	return false
}
