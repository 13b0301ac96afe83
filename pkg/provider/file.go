package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type (
	FileOption   func(*FileProvider)
	FileProvider struct {
		dir  string
		json JSONOptions
		l    *log.Logger
	}
)

func WithJSONOptions(opts JSONOptions) FileOption {
	return func(p *FileProvider) {
		p.json = opts
	}
}

func WithFileLogger(l *log.Logger) FileOption {
	return func(p *FileProvider) {
		p.l = l
	}
}

// NewFileProvider serves sessions from files named <SessionKey.Slug()>.csv
// or .json inside dir.
func NewFileProvider(dir string, opts ...FileOption) *FileProvider {
	ret := &FileProvider{
		dir:  dir,
		json: JSONOptions{Path: DefaultJSONPath, NumericScale: 0.001},
		l:    log.Default().Named("provider.file"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *FileProvider) Laps(ctx context.Context, key SessionKey) ([]model.LapRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	for _, ext := range []string{".csv", ".json"} {
		name := filepath.Join(p.dir, key.Slug()+ext)
		if _, err := os.Stat(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		p.l.Debug("reading session file", log.String("file", name))
		return ReadFile(name, p.json)
	}
	return nil, fmt.Errorf("%w: %s (no file in %s)", ErrNotAvailable, key, p.dir)
}

// ReadFile reads a csv or json lap file, the format is chosen by extension.
func ReadFile(name string, jsonOpts JSONOptions) ([]model.LapRecord, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch filepath.Ext(name) {
	case ".csv":
		return ReadCSV(f)
	case ".json":
		return ReadJSON(f, jsonOpts)
	}
	return nil, model.ValidationError("unsupported file type %s", name)
}
