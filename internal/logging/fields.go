package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies a single batch run.
	FieldRunID = "run_id"
	// FieldInput is the path of the video being processed.
	FieldInput = "input"
	// FieldOutputDir is the keyframe directory derived for an input.
	FieldOutputDir = "output_dir"
	// FieldStatus is the task outcome (success, skipped, failed).
	FieldStatus = "status"
	// FieldExitStatus is the decoder process exit code.
	FieldExitStatus = "exit_status"
)
