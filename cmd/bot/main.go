package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"gridware.ai/internal/protocol"
)

// A random-policy learner: connects to the server, runs a few episodes
// with uniform random joint actions and reports returns. Useful as a
// smoke driver and as a reference client for real learner bridges.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "random-bot", "client name")
		episodes = flag.Int("episodes", 3, "episodes to run")
		seed     = flag.Int64("seed", 1, "policy seed")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	rng := rand.New(rand.NewSource(*seed))

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := readMsg(conn, protocol.TypeWelcome, &welcome); err != nil {
		logger.Fatalf("WELCOME: %v", err)
	}
	env := welcome.Env
	logger.Printf("connected: scenario=%s agents=%d actions=%d obs=%d state=%d limit=%d",
		env.Scenario, env.NumAgents, env.NumActions, env.ObsSize, env.StateSize, env.EpisodeLimit)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for ep := 0; ep < *episodes; ep++ {
		select {
		case <-stop:
			return
		default:
		}

		if err := conn.WriteJSON(protocol.ResetMsg{Type: protocol.TypeReset, ProtocolVersion: protocol.Version}); err != nil {
			logger.Fatalf("RESET: %v", err)
		}
		var obs protocol.ObsMsg
		if err := readMsg(conn, protocol.TypeObs, &obs); err != nil {
			logger.Fatalf("initial OBS: %v", err)
		}

		returns := make([]float64, env.NumAgents)
		steps := 0
		for {
			actions := make([]int, env.NumAgents)
			for i := range actions {
				actions[i] = rng.Intn(env.NumActions)
			}
			if err := conn.WriteJSON(protocol.StepMsg{Type: protocol.TypeStep, ProtocolVersion: protocol.Version, Actions: actions}); err != nil {
				logger.Fatalf("STEP: %v", err)
			}
			if err := readMsg(conn, protocol.TypeObs, &obs); err != nil {
				logger.Fatalf("OBS: %v", err)
			}
			for i, r := range obs.Rewards {
				returns[i] += r
			}
			steps++
			if obs.Done {
				break
			}
		}

		total := 0.0
		for _, r := range returns {
			total += r
		}
		delivered := 0
		if obs.Info != nil {
			delivered = obs.Info.DeliveredTotal
		}
		logger.Printf("episode %d: steps=%d delivered=%d team_return=%.3f", ep+1, steps, delivered, total)
	}
}

// readMsg reads until a message of the wanted type arrives, failing on
// protocol errors.
func readMsg(conn *websocket.Conn, want string, v any) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		if base.Type == protocol.TypeError {
			var e protocol.ErrorMsg
			_ = json.Unmarshal(msg, &e)
			return &protocolError{Code: e.Code, Message: e.Message}
		}
		if base.Type != want {
			continue
		}
		return json.Unmarshal(msg, v)
	}
}

type protocolError struct {
	Code    string
	Message string
}

func (e *protocolError) Error() string {
	return e.Code + ": " + e.Message
}
