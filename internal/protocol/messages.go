package protocol

// HELLO (learner -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> learner): declared env shapes. All sizes are fixed
// for the lifetime of the session; the learner may allocate buffers once.
type WelcomeMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	SessionID       string  `json:"session_id"`
	Env             EnvInfo `json:"env"`
}

type EnvInfo struct {
	Scenario     string `json:"scenario"`
	NumAgents    int    `json:"n_agents"`
	NumActions   int    `json:"n_actions"`
	ObsSize      int    `json:"obs_size"`
	StateSize    int    `json:"state_size"`
	EpisodeLimit int    `json:"episode_limit"`
	Seed         int64  `json:"seed"`
}

// RESET (learner -> server)
type ResetMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// STEP (learner -> server): one action index per agent.
type StepMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Actions         []int  `json:"actions"`
}

// OBS (server -> learner): the result of a RESET or STEP. Rewards/Done/
// Info are omitted in the RESET reply.
type ObsMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	Episode         int         `json:"episode"`
	Step            int         `json:"step"`
	Obs             [][]float64 `json:"obs"`
	State           []float64   `json:"state"`
	Rewards         []float64   `json:"rewards,omitempty"`
	Done            bool        `json:"done"`
	Info            *StepInfo   `json:"info,omitempty"`
}

type StepInfo struct {
	Pickups        int  `json:"pickups"`
	Deliveries     int  `json:"deliveries"`
	Drops          int  `json:"drops"`
	Collisions     int  `json:"collisions"`
	QueueDepth     int  `json:"queue_depth"`
	DeliveredTotal int  `json:"delivered_total"`
	Completed      bool `json:"completed,omitempty"`
}

// ERROR (server -> learner)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
