package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itsatony/go-temple"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to stdout or atomically replaces a file
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// loadData parses params from a file or an inline JSON string
func loadData(jsonStr, filePath string) (map[string]any, error) {
	var jsonData []byte

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		jsonData = data
	} else if jsonStr != "" {
		jsonData = []byte(jsonStr)
	} else {
		return make(map[string]any), nil
	}

	var result map[string]any
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// loadRows parses a JSON array of row objects
func loadRows(filePath string) ([]map[string]any, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// loadJSONFile parses an optional JSON object file; empty path yields nil
func loadJSONFile(filePath string) (map[string]any, error) {
	if filePath == "" {
		return nil, nil
	}
	return loadData("", filePath)
}

// ambientFiles names the JSON files of the ambient contexts
type ambientFiles struct {
	session string
	server  string
	cookie  string
	request string
}

func (f ambientFiles) load() (temple.Ambient, error) {
	var a temple.Ambient
	var err error
	if a.Session, err = loadJSONFile(f.session); err != nil {
		return a, err
	}
	if a.Server, err = loadJSONFile(f.server); err != nil {
		return a, err
	}
	if a.Cookie, err = loadJSONFile(f.cookie); err != nil {
		return a, err
	}
	if a.Request, err = loadJSONFile(f.request); err != nil {
		return a, err
	}
	return a, nil
}

// newLogger logs to w when verbose, otherwise discards
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	return newConsoleLogger(w, zapcore.DebugLevel)
}

func newConsoleLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

// buildEngine loads the optional config file, opens its source and creates
// the engine. The returned source may be nil.
func buildEngine(configPath string, logger *zap.Logger, extra ...temple.Option) (*temple.Engine, temple.TemplateSource, string, error) {
	cfg := &temple.Config{}
	if configPath != "" {
		loaded, err := temple.LoadConfig(configPath)
		if err != nil {
			return nil, nil, ErrMsgConfigFailed, err
		}
		cfg = loaded
	}

	source, err := cfg.OpenSource(logger)
	if err != nil {
		return nil, nil, ErrMsgSourceFailed, err
	}

	opts := append(cfg.Options(), temple.WithLogger(logger))
	if source != nil {
		opts = append(opts, temple.WithSource(source))
	}
	opts = append(opts, extra...)

	engine, err := temple.New(opts...)
	if err != nil {
		if source != nil {
			_ = source.Close()
		}
		return nil, nil, ErrMsgEngineFailed, err
	}
	return engine, source, "", nil
}
