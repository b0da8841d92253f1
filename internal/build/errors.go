package build

import "errors"

// Sentinel stage errors. A failed Run returns one of them wrapped around the cause.
var (
	ErrLoad     = errors.New("bookbuilder: load error")
	ErrSnapshot = errors.New("bookbuilder: snapshot error")
	ErrAssemble = errors.New("bookbuilder: assemble error")
)

// Stage names used for metrics, logs and history events.
const (
	StageLoad     = "load"
	StageSnapshot = "snapshot"
	StageRender   = "render"
	StageAssemble = "assemble"
)
