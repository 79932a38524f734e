package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"hbc/config"
	"hbc/state"
)

// buildOutputPath returns constructed output file path/name based on various
// input parameters. It uses either default naming scheme or user-defined
// template and takes into account whether to preserve source directory
// structure on the output. It cleans up path and if requested transliterates
// it.
func buildOutputPath(r *Result, dst string, env *state.LocalEnv) string {
	outDir := determineOutputDir(r.SrcName, dst, env)
	defaultFile := buildDefaultFileName(r.SrcName, r.Format.Ext(), env)

	if env.Cfg.Conversion.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	// fallback to default name if template expansion failed or produced
	// nothing usable
	if expandedName := expandOutputNameTemplate(r, env); expandedName != "" {
		if name := assemblePathWithSubdirs(outDir, expandedName, r.Format.Ext(), env); name != "" {
			return name
		}
	}
	return filepath.Join(outDir, defaultFile)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildDefaultFileName(src, ext string, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if env.Cfg.Conversion.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + ext
}

func expandOutputNameTemplate(r *Result, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(r, config.OutputNameTemplateFieldName, env.Cfg.Conversion.OutputNameTemplate)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed. Empty string is returned
// when name has no usable segments.
func assemblePathWithSubdirs(outDir, expandedName, outExt string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)

	if len(pathSegments) == 0 {
		return ""
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + outExt
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

// splitAndCleanPath splits path into non empty segments, "." and ".." are
// dropped so template could not escape output directory.
func splitAndCleanPath(path string) []string {
	segments := make([]string, 0, 8)
	for segment := range strings.SplitSeq(path, string(os.PathSeparator)) {
		segment = strings.TrimSpace(segment)
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Conversion.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
