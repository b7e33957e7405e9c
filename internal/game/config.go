package game

// Camera.
const (
	DefaultZoom     = 6.0
	MinZoom         = 2.0
	MaxZoom         = 12.0
	CameraLead      = 25.0 // world units ahead of the runner
	CameraStiffness = 4.0  // 1/s
)

// Runner and pursuer.
const (
	RunnerAccel     = 60.0 // units/s², towards the tier speed
	CatchDistance   = 4.0  // trail distance at which the pursuer catches
	PursuerCloseIn  = 1.0  // pursuer speed as a share of the tier runner speed
	PursuerLunge    = 1.1  // share used while the runner stands at a junction
	TrailSampleStep = 2.0  // minimum spacing of trail points on a straight
)

// Autopilot.
const (
	AutopilotMinThink = 0.15 // seconds at a junction before choosing
	AutopilotMaxThink = 0.6
)

// Scenery.
const (
	PropSpacingMin = 60.0
	PropSpacingMax = 140.0
	PropSize       = 3.0
	PropOnTrack    = 0.3 // share of props dropped on the road centre line
	PropLateralMin = 15.0
	PropLateralMax = 40.0
)

// Effects.
const (
	CommitShake      = 0.6
	CommitShakeTime  = 0.25
	CaughtShake      = 2.0
	CaughtShakeTime  = 0.6
	PathSampleTicks  = 10 // headless map path spacing
	JournalFlushTick = 600
)
