package convert

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amazon-ion/ion-go/ion"
	yaml "gopkg.in/yaml.v3"

	"hbc/common"
	"hbc/draft"
)

// Result is converted document together with what we know about its source.
type Result struct {
	Doc     *draft.Document
	SrcName string
	Format  common.OutputFmt
}

// Headers returns texts of header blocks in document order.
func (r *Result) Headers() []string {
	var headers []string
	for _, b := range r.Doc.Blocks {
		if strings.HasPrefix(b.Type, "header-") {
			if text := strings.TrimSpace(b.Text); text != "" {
				headers = append(headers, text)
			}
		}
	}
	return headers
}

// Title is the text of the first header block, if any.
func (r *Result) Title() string {
	if headers := r.Headers(); len(headers) > 0 {
		return headers[0]
	}
	return ""
}

// Encode encodes document in requested format.
func (r *Result) Encode(w io.Writer) error {
	switch r.Format {
	case common.OutputFmtYaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(draft.ToRaw(r.Doc)); err != nil {
			return fmt.Errorf("unable to encode yaml: %w", err)
		}
		return enc.Close()
	case common.OutputFmtIon:
		data, err := ion.MarshalText(draft.ToRaw(r.Doc))
		if err != nil {
			return fmt.Errorf("unable to encode ion: %w", err)
		}
		_, err = w.Write(data)
		return err
	case common.OutputFmtTree:
		_, err := io.WriteString(w, r.Doc.String())
		return err
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Save writes encoded document into the file at path.
func (r *Result) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := r.Encode(w); err != nil {
		return err
	}
	return w.Flush()
}
