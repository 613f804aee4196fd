package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zellij-org/zellij-go/internal/input"
	"github.com/zellij-org/zellij-go/internal/ipc"
	"github.com/zellij-org/zellij-go/internal/screen"
)

func newAttachCmd() *cobra.Command {
	var create bool
	var pluginPath string

	cmd := &cobra.Command{
		Use:   "attach <name>",
		Short: "Attach to a session, creating it if --new is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttach(args[0], create, pluginPath)
		},
	}
	cmd.Flags().BoolVar(&create, "new", false, "create the session if it doesn't already exist")
	cmd.Flags().StringVar(&pluginPath, "plugin", "", "load a WebAssembly plugin by path once attached")
	return cmd
}

func runAttach(name string, create bool, pluginPath string) error {
	fd := int(os.Stdin.Fd())
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		cols, rows = 80, 24
	}

	kind := ipc.MsgAttachClient
	if create {
		kind = ipc.MsgNewClient
	}
	client, err := ipc.Dial(name, ipc.ClientMessage{
		Kind:  kind,
		Attrs: ipc.ClientAttrs{Rows: rows, Cols: cols},
	})
	if err != nil {
		return fmt.Errorf("attach to session %q: %w", name, err)
	}
	defer client.Close()

	reportTerminalColors(client)

	if pluginPath != "" {
		client.Send(ipc.ClientMessage{
			Kind:   ipc.MsgAction,
			Action: screen.Action{Kind: screen.ActionLoadPlugin, PluginPath: pluginPath},
		})
	}

	restore, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(fd, restore)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	go watchAttachResize(client, fd, sigCh)

	go pipeStdinToSession(client)

	return pipeSessionToStdout(client)
}

// watchAttachResize forwards the attaching terminal's size to the
// session on every SIGWINCH, so the server's tabs relayout to match a
// resized window.
func watchAttachResize(client *ipc.Client, fd int, sigCh <-chan os.Signal) {
	for range sigCh {
		cols, rows, err := term.GetSize(fd)
		if err != nil {
			continue
		}
		client.Send(ipc.ClientMessage{
			Kind:       ipc.MsgTerminalResize,
			ResizeRows: rows,
			ResizeCols: cols,
		})
	}
}

// pipeStdinToSession decodes the raw bytes typed at this terminal into
// Keys and runs them through a Router to get screen.Actions, then sends
// each Action to the session. Mode (normal/pane/tab/...) is client-side
// state (matching input.Mode's own doc comment), so the Router runs
// here rather than in the session; the session only ever sees the
// Actions it produces.
func pipeStdinToSession(client *ipc.Client) {
	var decoder input.Decoder
	router := input.NewRouter(screen.ClientId(0))

	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			for _, key := range decoder.Feed(buf[:n]) {
				for _, action := range router.HandleKey(key) {
					if sendErr := client.Send(ipc.ClientMessage{Kind: ipc.MsgAction, Action: action}); sendErr != nil {
						return
					}
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// pipeSessionToStdout reads server frames until Exit, writing Render
// frames to stdout and printing the final exit reason once the
// session tears down the connection.
func pipeSessionToStdout(client *ipc.Client) error {
	for {
		msg, err := client.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch msg.Kind {
		case ipc.MsgRender:
			os.Stdout.Write(msg.RenderBytes)
		case ipc.MsgExit:
			fmt.Fprintf(os.Stderr, "\r\nsession exited: %s\r\n", msg.ExitReason)
			if msg.ExitBacktrace != "" {
				fmt.Fprintln(os.Stderr, msg.ExitBacktrace)
			}
			return nil
		}
	}
}
