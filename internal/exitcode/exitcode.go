package exitcode

const (
	Success        = 0
	RuntimeFailure = 1
	InvalidUsage   = 2
	InvalidConfig  = 3
	MissingTool    = 4
	PartialFailure = 5
	Interrupted    = 130
)
