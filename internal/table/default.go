package table

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/changeprob/internal/assets"
	"github.com/roach88/changeprob/internal/compiler"
)

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the table compiled into the binary.
// It is built once; later calls return the same *Table.
// Panics if the embedded table is invalid, which tests rule out.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = FromCUE(assets.MustRead(assets.DefaultTable), assets.DefaultTable)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded scene table: %v", defaultErr))
	}
	return defaultTable
}

// FromCUE compiles CUE source and builds a Table from it.
// filename is only used in error positions.
func FromCUE(src []byte, filename string) (*Table, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	t, err := compiler.CompileTable(v)
	if err != nil {
		return nil, err
	}
	return New(t)
}
