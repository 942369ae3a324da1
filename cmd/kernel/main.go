package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/repl-bridge/kernel/comm"
	"github.com/repl-bridge/kernel/relay"
	"github.com/repl-bridge/kernel/repl"
	"github.com/repl-bridge/kernel/session"
	"github.com/repl-bridge/kernel/target"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to kernel config JSON file")
		signingKey = flag.String("key", "", "Session signing key (overrides config)")
		relayURL   = flag.String("relay", "", "Websocket URL to publish display frames to (default: print to stdout)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := repl.DefaultConfig()
	if *configFile != "" {
		loaded, err := repl.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *signingKey != "" {
		cfg.Session.Key = *signingKey
	}

	sess, err := session.New(&cfg.Session)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	communicator, err := comm.New(sess, comm.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create communicator: %v", err)
	}

	tgt := target.NewInProcess(
		communicator,
		newScriptRunner(communicator),
		target.WithInterruptWait(cfg.Eval.InterruptWait.Std()),
	)

	opts := []repl.Option{repl.WithTarget(tgt), repl.WithLogger(logger)}
	if *relayURL != "" {
		conn, _, err := websocket.DefaultDialer.Dial(*relayURL, nil)
		if err != nil {
			log.Fatalf("Failed to dial relay: %v", err)
		}
		defer conn.Close()
		opts = append(opts, repl.WithPublisher(relay.NewWebsocket(conn)))
	}

	ctrl, err := repl.New(&cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if frames := ctrl.Frames(); frames != nil {
		go printFrames(frames)
	}

	runConsole(ctx, ctrl, sess)
}

// runConsole reads one fragment per line from stdin and submits it, tagging
// each with a synthetic causing request so display attribution is visible.
func runConsole(ctx context.Context, ctrl *repl.Controller, sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("kernel console; one fragment per line, statements separated by ';'")

	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			return
		}
		code := scanner.Text()
		if code == "" {
			continue
		}

		result, err := ctrl.Submit(ctx, code, executeRequest(sess))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}

		switch result.State {
		case repl.StateSucceeded:
			if result.Value != "" {
				fmt.Println(result.Value)
			}
			if result.Displays > 0 {
				fmt.Printf("[%d display message(s) relayed]\n", result.Displays)
			}
		case repl.StateFailed:
			fmt.Printf("failed: %s\n", result.Diagnostic)
		case repl.StateCrashed:
			fmt.Printf("crashed: %s\n", result.Diagnostic)
			return
		}
	}
}

// executeRequest fabricates the request object a front end would have sent.
func executeRequest(sess *session.Session) string {
	request := map[string]any{
		"header": map[string]any{
			"msg_id":   uuid.Must(uuid.NewV7()).String(),
			"username": sess.Username,
			"session":  sess.ID,
			"msg_type": "execute_request",
		},
	}
	data, _ := json.Marshal(request)
	return string(data)
}

func printFrames(frames <-chan relay.Frame) {
	for frame := range frames {
		sizes := make([]int, len(frame))
		for i, part := range frame {
			sizes[i] = len(part)
		}
		fmt.Printf("[frame] type=%s parts=%v\n", frame[0], sizes)
	}
}
