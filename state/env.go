// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"hbc/common"
	"hbc/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by convert subcommand
	NoDirs    bool
	Overwrite bool
	Format    common.OutputFmt
	Input     common.InputFmt
	// DetectInput selects supplier by looking at the content of every file
	// instead of using Input.
	DetectInput bool
	BaseURL     *url.URL
	CodePage    encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}

// ForceInput makes every source parsed as in, regardless of its content.
func (e *LocalEnv) ForceInput(in common.InputFmt) {
	e.Input = in
	e.DetectInput = false
}

// InputFor returns supplier kind for a source detected as detected.
func (e *LocalEnv) InputFor(detected common.InputFmt) common.InputFmt {
	if e.DetectInput {
		return detected
	}
	return e.Input
}

// ApplyConversion takes values from conversion configuration which are
// needed in parsed form.
func (e *LocalEnv) ApplyConversion(conv *config.ConversionConfig) error {
	u, err := conv.ParsedBaseURL()
	if err != nil {
		return err
	}
	e.BaseURL = u
	return nil
}

// SetCodePage selects encoding for non UTF-8 names of archive entries by
// its IANA name. Returns canonical name of selected encoding.
func (e *LocalEnv) SetCodePage(name string) (string, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return "", fmt.Errorf("unknown character set %q: %w", name, err)
	}
	if enc == nil {
		return "", fmt.Errorf("unsupported character set %q", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	e.CodePage = enc
	return canonical, nil
}
