package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gridware.ai/internal/protocol"
	"gridware.ai/internal/sim/warehouse"
)

// SessionSink receives everything a session produces: per-step tick
// entries (it is the env's TickLogger) and per-episode summaries.
type SessionSink interface {
	warehouse.TickLogger
	EpisodeDone(episode, steps, deliveries int, returns []float64, completed bool)
	Close() error
}

// SinkFactory builds the sink for a new session. May return nil to
// disable recording.
type SinkFactory func(sessionID string, cfg warehouse.Config) SessionSink

// Server bridges one external learner per connection to its own kernel
// instance. The kernel is synchronous and single-writer; the bridge
// preserves that by serving each connection with a plain request/reply
// loop on the reader goroutine.
type Server struct {
	cfg  warehouse.Config
	log  *log.Logger
	sink SinkFactory

	upgrader websocket.Upgrader
}

func NewServer(cfg warehouse.Config, logger *log.Logger, sink SinkFactory) *Server {
	return &Server{
		cfg:  cfg,
		log:  logger,
		sink: sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		s.serve(conn)
	}
}

func (s *Server) serve(conn *websocket.Conn) {
	env, sessionID, ok := s.handshake(conn)
	if !ok {
		return
	}

	var sink SessionSink
	if s.sink != nil {
		sink = s.sink(sessionID, s.cfg)
	}
	if sink != nil {
		env.SetTickLogger(sink)
		defer sink.Close()
	}
	s.log.Printf("session %s: learner connected (agents=%d obs=%d state=%d)",
		sessionID, env.NumAgents(), env.ObsSize(), env.StateSize())

	// Per-episode return accounting lives here: the kernel resets its own
	// counters as soon as an episode terminates.
	returns := make([]float64, env.NumAgents())

	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.log.Printf("session %s: closed: %v", sessionID, err)
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.ProtocolVersion != protocol.Version {
			s.writeError(conn, protocol.ErrProtoBadRequest, "bad protocol_version")
			continue
		}

		switch base.Type {
		case protocol.TypeReset:
			obs, state := env.Reset()
			for i := range returns {
				returns[i] = 0
			}
			s.writeJSON(conn, protocol.ObsMsg{
				Type:            protocol.TypeObs,
				ProtocolVersion: protocol.Version,
				Tick:            env.Tick(),
				Episode:         env.Episode(),
				Step:            0,
				Obs:             obs,
				State:           state,
			})

		case protocol.TypeStep:
			var step protocol.StepMsg
			if err := json.Unmarshal(msg, &step); err != nil {
				s.writeError(conn, protocol.ErrBadRequest, "malformed STEP")
				continue
			}
			res, err := env.Step(step.Actions)
			if err != nil {
				// Caller contract violation: fatal for this call only.
				s.writeError(conn, protocol.ErrBadAction, err.Error())
				continue
			}
			for i, r := range res.Rewards {
				returns[i] += r
			}
			if res.Done && sink != nil {
				sink.EpisodeDone(res.Info.Episode, res.Info.Step, res.Info.DeliveredTotal,
					append([]float64(nil), returns...), res.Info.Completed)
			}
			if res.Done {
				for i := range returns {
					returns[i] = 0
				}
			}
			info := protocol.StepInfo{
				Pickups:        res.Info.Pickups,
				Deliveries:     res.Info.Deliveries,
				Drops:          res.Info.Drops,
				Collisions:     res.Info.Collisions,
				QueueDepth:     res.Info.QueueDepth,
				DeliveredTotal: res.Info.DeliveredTotal,
				Completed:      res.Info.Completed,
			}
			s.writeJSON(conn, protocol.ObsMsg{
				Type:            protocol.TypeObs,
				ProtocolVersion: protocol.Version,
				Tick:            env.Tick(),
				Episode:         res.Info.Episode,
				Step:            res.Info.Step,
				Obs:             res.Obs,
				State:           res.State,
				Rewards:         res.Rewards,
				Done:            res.Done,
				Info:            &info,
			})

		default:
			s.writeError(conn, protocol.ErrProtoBadRequest, "unexpected message type "+base.Type)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (*warehouse.Env, string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil, "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil, "", false
	}

	env, err := warehouse.New(s.cfg)
	if err != nil {
		s.writeError(conn, protocol.ErrInternal, err.Error())
		return nil, "", false
	}

	sessionID := uuid.NewString()
	s.writeJSON(conn, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		Env: protocol.EnvInfo{
			Scenario:     env.Config().ID,
			NumAgents:    env.NumAgents(),
			NumActions:   env.NumActions(),
			ObsSize:      env.ObsSize(),
			StateSize:    env.StateSize(),
			EpisodeLimit: env.MaxSteps(),
			Seed:         env.Config().Seed,
		},
	})
	return env, sessionID, true
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) writeError(conn *websocket.Conn, code, message string) {
	s.writeJSON(conn, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}
