package state

import (
	"time"

	"hbc/common"
)

// newLocalEnv creates environment with values used when command line does
// not say otherwise.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		Format:      common.OutputFmtYaml,
		Input:       common.InputFmtHtml,
		DetectInput: true,
		start:       time.Now(),
	}
}
