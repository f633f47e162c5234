// Package loader parses textual LLVM IR with llir and converts it into the
// qir program model.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"

	"qirkit/internal/qir"
)

var bitcodeMagic = []byte{'B', 'C', 0xC0, 0xDE}

// LoadFile reads and converts the module at path.
func LoadFile(path string) (*qir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return LoadBytes(path, data)
}

// LoadBytes converts an in-memory module. name is used for diagnostics and
// as the module name.
func LoadBytes(name string, data []byte) (*qir.Module, error) {
	if bytes.HasPrefix(data, bitcodeMagic) || strings.EqualFold(filepath.Ext(name), ".bc") {
		return nil, loadErr(name, "bitcode is not supported; disassemble it with llvm-dis first")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, loadErr(name, "empty module")
	}
	src, err := asm.ParseBytes(name, data)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	m, err := Convert(name, src)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	if err := qir.Validate(m); err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("verify: %w", err)}
	}
	return m, nil
}

// Convert translates a parsed llir module into the program model.
func Convert(name string, src *ir.Module) (*qir.Module, error) {
	m := qir.NewModule(moduleName(name))
	m.SourceFile = src.SourceFilename
	c := &converter{m: m, src: src}
	if err := c.run(); err != nil {
		return nil, err
	}
	return m, nil
}

func moduleName(path string) string {
	if path == "" {
		return "module"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
