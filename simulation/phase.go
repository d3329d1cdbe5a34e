package simulation

// Phase is the stage a Simulator is in.
type Phase int32

// The phases of a run, in order.
const (
	Initializing Phase = iota
	LoadingTraffic
	LoadingContacts
	Dispatching
	Finalizing
	Finished
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case LoadingTraffic:
		return "loading traffic"
	case LoadingContacts:
		return "loading contacts"
	case Dispatching:
		return "dispatching"
	case Finalizing:
		return "finalizing"
	case Finished:
		return "done"
	default:
		return "unknown"
	}
}
