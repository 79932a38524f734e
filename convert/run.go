package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	fixzip "github.com/hidez8891/zip"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"hbc/archive"
	"hbc/common"
	"hbc/content"
	"hbc/draft"
	"hbc/dom"
	"hbc/state"
)

// maxSourceSize limits single markup file read into memory.
const maxSourceSize = 64 << 20

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format, err = common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to yaml", zap.Error(err))
		env.Format = common.OutputFmtYaml
	}

	if in := cmd.String("input"); in != "" && in != "auto" {
		forced, err := common.ParseInputFmt(in)
		if err != nil {
			return fmt.Errorf("unknown input format requested: %w", err)
		}
		env.ForceInput(forced)
	}

	// command line overwrites configuration
	conv := &env.Cfg.Conversion
	if cmd.IsSet("tree") {
		conv.TreeHierarchy = cmd.Bool("tree")
	}
	if cmd.IsSet("hoist") {
		conv.HoistContainers = cmd.Bool("hoist")
	}
	if cmd.IsSet("stable-keys") {
		conv.StableKeys = cmd.Bool("stable-keys")
	}
	if cmd.IsSet("base-url") {
		conv.BaseURL = cmd.String("base-url")
	}
	if err = env.ApplyConversion(conv); err != nil {
		return err
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		if n, err := env.SetCodePage(cp); err != nil {
			log.Warn("Forced code page ignored", zap.Error(err))
		} else {
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		markup, in, enc, err := isMarkupFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if markup && len(tail) == 0 {
			// single file cannot have tail
			data, err := readSource(head)
			if err != nil {
				return err
			}
			if err := processFile(ctx, data, in, enc, filepath.Base(head), dst, log); err != nil {
				return fmt.Errorf("unable to process file (%s): %w", head, err)
			}
			break
		}
		return fmt.Errorf("input was not recognized as HTML document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

func readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read source (%s): %w", path, err)
	}
	if len(data) > maxSourceSize {
		return nil, fmt.Errorf("source is too large (%s)", path)
	}
	return data, nil
}

// processDir walks directory tree finding markup files and archives and
// processes them. Failures of individual files are logged and collected.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	var count int
	var errs error
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				errs = multierr.Append(errs, err)
			}
			return nil
		}

		markup, in, enc, err := isMarkupFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !markup {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			return nil
		}

		count++

		data, err := readSource(path)
		if err == nil {
			src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
			err = processFile(ctx, data, in, enc, src, dst, log)
		}
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errs
}

// processArchive walks all files inside archive, finds markup files under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	var count int
	var errs error
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	err = archive.Walk(path, pathIn, func(name string, f *fixzip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		markup, in, enc, err := isMarkupInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", name), zap.String("path", f.Name), zap.Error(err))
			return nil
		}
		if !markup {
			log.Debug("Skipping file, not recognized as document", zap.String("archive", name), zap.String("file", f.Name))
			return nil
		}

		count++

		data, err := archive.ReadEntry(f, maxSourceSize)
		if err == nil {
			err = processFile(ctx, data, in, enc, filepath.Join(pathOut, entryName(ctx, f.Name, log)), dst, log)
		}
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", name), zap.String("file", f.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errs
}

// entryName returns archive entry name usable as relative file path. Names
// which are not valid UTF-8 are decoded with forced code page, if any.
func entryName(ctx context.Context, name string, log *zap.Logger) string {
	cp := state.EnvFromContext(ctx).CodePage
	if cp != nil && !utf8.ValidString(name) {
		if n, err := cp.NewDecoder().String(name); err == nil {
			name = n
		} else {
			cpName, _ := ianaindex.IANA.Name(cp)
			log.Warn("Unable to convert archive name from specified encoding",
				zap.String("charset", cpName), zap.String("path", name), zap.Error(err))
		}
	}
	return filepath.FromSlash(name)
}

// conversionOptions turns configuration into document builder options.
func conversionOptions(env *state.LocalEnv, in common.InputFmt, log *zap.Logger) []content.Option {
	opts := []content.Option{
		content.WithRenderMap(env.Cfg.Conversion.RenderMap()),
		content.WithTreeHierarchy(env.Cfg.Conversion.TreeHierarchy),
		content.WithHoistContainers(env.Cfg.Conversion.HoistContainers),
		content.WithBaseURL(env.BaseURL),
		content.WithLogger(log),
	}
	if in == common.InputFmtXhtml {
		opts = append(opts, content.WithSupplier(dom.ParseXHTML))
	}
	if env.Cfg.Conversion.StableKeys {
		opts = append(opts, content.WithKeys(draft.NewSequentialKeys("b")))
	}
	return opts
}

// processFile converts single markup document. "src" is part of the source
// path (always including file name) relative to the original path. When
// actual file was specified it will be just base file name without a path.
// When looking inside archive or directory it will be relative path inside
// archive or directory (including base file name). "dst" is the destination
// directory where the converted file should be written.
func processFile(ctx context.Context, data []byte, in common.InputFmt, enc srcEncoding, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string
	var blocks int

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// one broken document should not stop processing of others
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.Int("blocks", blocks))
		}
	}(time.Now())

	in = env.InputFor(in)

	markup, err := decodeMarkup(data, in, enc)
	if err != nil {
		return err
	}

	doc, err := content.Convert(markup, conversionOptions(env, in, log)...)
	if err != nil {
		return fmt.Errorf("unable to convert %s source (%s): %w", in, src, err)
	}
	blocks = len(doc.Blocks)

	r := &Result{Doc: doc, SrcName: src, Format: env.Format}

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(r, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := r.Save(outputName); err != nil {
		return fmt.Errorf("unable to save result: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		base := filepath.Base(outputName)
		env.Rpt.StoreData("source-"+base+filepath.Ext(src), data)
		env.Rpt.StoreData("tree-"+base+".txt", []byte(doc.String()))
		if err := env.Rpt.StoreCopy("result-"+base, outputName); err != nil {
			log.Warn("Unable to store result in report", zap.String("file", outputName), zap.Error(err))
		}
	}
	return nil
}
