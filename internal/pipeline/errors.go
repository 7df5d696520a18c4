package pipeline

import "fmt"

// Stage names a step of the build.
type Stage string

// Build stages, in execution order.
const (
	StageInit          Stage = "init"
	StageCleanOutput   Stage = "clean-output"
	StageEnumerate     Stage = "enumerate"
	StageProcessFiles  Stage = "process-files"
	StageCopyAssets    Stage = "copy-assets"
	StageBuildManifest Stage = "build-manifest"
	StageWriteManifest Stage = "write-manifest"
	StageReport        Stage = "report"
)

// StageError reports the stage and path at which a build failed.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, path string, err error) error {
	return &StageError{Stage: stage, Path: path, Err: err}
}
