package methodarea

// Status is a class's position in the load → link → initialize
// pipeline (spec section 3). It only ever moves forward: once a class
// reaches a status, it is never observed at a lower one again.
type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusLinking
	StatusLinked
	StatusInitializing
	StatusInitialized
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading"
	case StatusLoaded:
		return "Loaded"
	case StatusLinking:
		return "Linking"
	case StatusLinked:
		return "Linked"
	case StatusInitializing:
		return "Initializing"
	case StatusInitialized:
		return "Initialized"
	default:
		return "Unknown"
	}
}
