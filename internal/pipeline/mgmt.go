package pipeline

// MgmtKind identifies the topology mutation carried by a MgmtMsg.
type MgmtKind int

const (
	MgmtConnectSink MgmtKind = iota
	MgmtConnectPipeline
	MgmtConnectSource
	MgmtDisconnectOutput
	MgmtDisconnectInput
	MgmtStop
)

// MgmtMsg mutates a pipeline task's destination/source tables. A MgmtStop
// message is accepted but the task takes no action on it. Only the fields
// relevant to Kind are populated.
type MgmtMsg struct {
	Kind MgmtKind
	Port string
	ID   uint64

	Sink     *Sender[Event]
	Pipeline *Address
	Source   *Sender[Insight]
}

// ConnectSinkMsg builds a ConnectSink management message.
func ConnectSinkMsg(port string, id uint64, sink *Sender[Event]) MgmtMsg {
	return MgmtMsg{Kind: MgmtConnectSink, Port: port, ID: id, Sink: sink}
}

// ConnectPipelineMsg builds a ConnectPipeline management message.
func ConnectPipelineMsg(port string, id uint64, addr *Address) MgmtMsg {
	return MgmtMsg{Kind: MgmtConnectPipeline, Port: port, ID: id, Pipeline: addr}
}

// ConnectSourceMsg builds a ConnectSource management message.
func ConnectSourceMsg(id uint64, src *Sender[Insight]) MgmtMsg {
	return MgmtMsg{Kind: MgmtConnectSource, ID: id, Source: src}
}

// DisconnectOutputMsg builds a DisconnectOutput management message.
func DisconnectOutputMsg(port string, id uint64) MgmtMsg {
	return MgmtMsg{Kind: MgmtDisconnectOutput, Port: port, ID: id}
}

// DisconnectInputMsg builds a DisconnectInput management message.
func DisconnectInputMsg(id uint64) MgmtMsg {
	return MgmtMsg{Kind: MgmtDisconnectInput, ID: id}
}
