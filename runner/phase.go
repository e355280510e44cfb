package runner

// Phase is the state of one benchmark run. Any failure jumps to Released.
type Phase int

const (
	Idle Phase = iota
	Acquired
	Staged
	WarmedUp
	Timing
	Retrieved
	Verified
	Reported
	Released
)

var phaseNames = [...]string{
	Idle:      "idle",
	Acquired:  "acquired",
	Staged:    "staged",
	WarmedUp:  "warmed-up",
	Timing:    "timing",
	Retrieved: "retrieved",
	Verified:  "verified",
	Reported:  "reported",
	Released:  "released",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}
