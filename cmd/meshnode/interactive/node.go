// Package interactive provides the interactive command-line interface for
// the meshnode test client.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/node"
	"github.com/btmesh-tools/meshnode-go/pkg/onoff"
	"github.com/btmesh-tools/meshnode-go/pkg/service"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Node handles interactive mode for meshnode.
type Node struct {
	svc    *service.NodeService
	client *onoff.Client
	server *onoff.Server
	rl     *readline.Instance

	// Current client destination and app key.
	dest wire.Address
	key  wire.KeyIndex
}

// New creates a new interactive node handler. client and server are the
// models on element 0 the menu drives.
func New(svc *service.NodeService, client *onoff.Client, server *onoff.Server) (*Node, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "meshnode> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	n := &Node{
		svc:    svc,
		client: client,
		server: server,
		rl:     rl,
	}

	svc.OnStateChange(func(old, new node.State) {
		fmt.Fprintf(rl.Stdout(), "node state: %s -> %s\n", old, new)
	})
	svc.Manager().OnJoinFailed(func(reason string) {
		fmt.Fprintf(rl.Stdout(), "join failed: %s\n", reason)
	})
	svc.Manager().OnAttachError(func(err error) {
		fmt.Fprintf(rl.Stdout(), "attach failed: %v (token kept, retry with 'attach')\n", err)
	})
	svc.Manager().OnRemoveError(func(err error) {
		fmt.Fprintf(rl.Stdout(), "remove failed: %v\n", err)
	})

	return n, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid clobbering the input line.
func (n *Node) Stdout() io.Writer {
	return n.rl.Stdout()
}

// Run starts the interactive command loop.
func (n *Node) Run(ctx context.Context, cancel context.CancelFunc) {
	defer n.rl.Close()

	n.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := n.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(n.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			n.printHelp()

		case "state", "s":
			n.cmdState()

		case "token", "t":
			n.cmdToken(args)

		case "join", "j":
			n.cmdJoin()

		case "attach", "a":
			n.cmdAttach()

		case "remove":
			n.cmdRemove()

		case "dest", "d":
			n.cmdDest(args)

		case "key", "k":
			n.cmdKey(args)

		case "get", "g":
			n.cmdGet()

		case "set":
			n.cmdSet(args)

		case "pub", "p":
			n.cmdPub(args)

		case "quit", "exit", "q":
			fmt.Fprintln(n.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(n.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (n *Node) printHelp() {
	fmt.Fprintln(n.rl.Stdout(), `
Mesh Node Commands:
  Lifecycle:
    state              - Show node state and token
    token <hex16>      - Set the node token (exactly 16 hex digits)
    join               - Provision a new node (requires no token)
    attach             - Attach the node to the daemon (requires token)
    remove             - Remove the node; PERMANENTLY destroys the
                         daemon's configuration for this token

  OnOff Client:
    dest <addr>        - Set destination address (4 hex digits)
    key <index>        - Set application key index (decimal)
    get                - Query the remote OnOff state
    set <0|1>          - Set the remote OnOff state

  OnOff Server:
    pub <ms>           - Set publication period in ms (>=1000, 0 stops)

  General:
    help               - Show this help
    quit               - Exit`)
}

func (n *Node) cmdState() {
	mgr := n.svc.Manager()
	out := n.rl.Stdout()

	fmt.Fprintf(out, "state:  %s\n", mgr.State())
	if mgr.State().TokenBearing() {
		fmt.Fprintf(out, "token:  %s\n", mgr.Token())
	}
	if mgr.State() == node.StateAttached {
		fmt.Fprintf(out, "addr:   %s\n", mgr.NodeAddr())
	}
	fmt.Fprintf(out, "dest:   %s  key: %d\n", n.dest, n.key)
	fmt.Fprintf(out, "local:  %s\n", onoff.StateLabel(n.server.State()))
}

func (n *Node) cmdToken(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(n.rl.Stdout(), "Usage: token <hex16>")
		return
	}
	if !n.svc.Manager().SetToken(args[0]) {
		fmt.Fprintln(n.rl.Stdout(), "Invalid token: need exactly 16 hex digits, and no token already set")
		return
	}
	fmt.Fprintf(n.rl.Stdout(), "Token set: %s\n", n.svc.Manager().Token())
}

func (n *Node) cmdJoin() {
	if err := n.svc.Manager().Join(); err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Cannot join: %v\n", err)
	}
}

func (n *Node) cmdAttach() {
	if err := n.svc.Manager().Attach(); err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Cannot attach: %v\n", err)
	}
}

func (n *Node) cmdRemove() {
	if err := n.svc.Manager().Remove(); err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Cannot remove: %v\n", err)
	}
}

func (n *Node) cmdDest(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(n.rl.Stdout(), "Usage: dest <addr> (4 hex digits)")
		return
	}
	addr, err := wire.ParseAddress(args[0])
	if err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Invalid address: %v\n", err)
		return
	}
	n.dest = addr
	fmt.Fprintf(n.rl.Stdout(), "Destination set: %s\n", n.dest)
}

func (n *Node) cmdKey(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(n.rl.Stdout(), "Usage: key <index>")
		return
	}
	key, err := wire.ParseKeyIndex(args[0])
	if err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Invalid key index: %v\n", err)
		return
	}
	n.key = key
	fmt.Fprintf(n.rl.Stdout(), "App key index set: %d\n", n.key)
}

func (n *Node) cmdGet() {
	if n.dest == wire.Unassigned {
		fmt.Fprintln(n.rl.Stdout(), "No destination set (use 'dest')")
		return
	}
	if err := n.client.Get(n.dest, n.key); err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Get failed: %v\n", err)
	}
}

func (n *Node) cmdSet(args []string) {
	if n.dest == wire.Unassigned {
		fmt.Fprintln(n.rl.Stdout(), "No destination set (use 'dest')")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(n.rl.Stdout(), "Usage: set <0|1>")
		return
	}
	value, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Invalid state value: %v\n", err)
		return
	}
	if err := n.client.Set(n.dest, n.key, byte(value)); err != nil {
		fmt.Fprintf(n.rl.Stdout(), "Set failed: %v\n", err)
	}
}

func (n *Node) cmdPub(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(n.rl.Stdout(), "Usage: pub <ms>")
		return
	}
	ms, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || ms < 0 {
		fmt.Fprintln(n.rl.Stdout(), "Invalid period: need milliseconds >= 0")
		return
	}

	n.svc.App().Element(0).Configure(onoff.ServerModelID, model.Config{
		PublicationPeriod: time.Duration(ms) * time.Millisecond,
		HasPeriod:         true,
	})

	switch {
	case ms == 0:
		fmt.Fprintln(n.rl.Stdout(), "Publication stopped")
	case ms < 1000:
		fmt.Fprintln(n.rl.Stdout(), "Period below 1000 ms not supported; unchanged")
	default:
		fmt.Fprintf(n.rl.Stdout(), "Publishing every %d ms\n", ms)
	}
}
