// Package target implements the build-target engine: a minimal task
// system based on Starlark for the target specification and mvdan.cc/sh
// for the shell runtime. Built-in targets carry Go actions, targets
// declared in the targets file carry shell command lines; both share
// the same dependency, skip, and freshness semantics.
package target

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	starsyntax "go.starlark.net/syntax"
	"mvdan.cc/sh/v3/syntax"
)

// CmdScript is a shell command line attached to a target.
type CmdScript struct {
	TargetName string
	Content    string
	Index      int
}

func (s CmdScript) ToTarget() (*Target, error) {
	return nil, nil
}

func (s CmdScript) ToShellStmts(parser *syntax.Parser) ([]*syntax.Stmt, error) {
	reader := strings.NewReader(s.Content)
	result, err := parser.Parse(reader, fmt.Sprintf("%s:%d", s.TargetName, s.Index))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse command %s", s.Content)
	}

	return result.Stmts, nil
}

// CmdTargetRef is a reference to another target used as a command.
type CmdTargetRef struct {
	Target *Target
}

func (t CmdTargetRef) ToTarget() (*Target, error) {
	return t.Target, nil
}

func (t CmdTargetRef) ToShellStmts(*syntax.Parser) ([]*syntax.Stmt, error) {
	return nil, nil
}

// Cmd is a single command within a target, either a shell line or a
// reference to another target.
type Cmd interface {
	ToTarget() (*Target, error)
	ToShellStmts(*syntax.Parser) ([]*syntax.Stmt, error)
}

// Action is the Go implementation of a built-in target.
type Action func(ctx context.Context) error

// Target describes one runnable build target.
type Target struct {
	Env          map[string]string
	Name         string
	Desc         string
	Base         string
	Inputs       []string
	Deps         []string
	SkipIfExists []string
	Outputs      []string
	Cmds         []Cmd
	Action       Action
	Hidden       bool
}

// List maps names to each known target.
type List map[string]*Target

// MergeInto adds the file-declared targets to the built-in set. File
// targets may not shadow built-ins.
func (l List) MergeInto(builtin List) error {
	for name, t := range l {
		if _, ok := builtin[name]; ok {
			return eris.Errorf("target %s shadows a built-in target", name)
		}
		builtin[name] = t
	}
	return nil
}

// ScriptOption is an option declared by the targets file.
type ScriptOption struct {
	DefaultValue starlark.String
	Help         string
}

func (o ScriptOption) Default() string {
	return o.DefaultValue.GoString()
}

// Implement starlark.Value for *Target

// String returns a string representation of the target
func (t *Target) String() string {
	return fmt.Sprintf("<Target %s: %s>", t.Name, t.Desc)
}

// Type always returns "target" to indicate this type
func (t *Target) Type() string {
	return "target"
}

// Freeze doesn't do anything since targets are immutable anyway
func (t *Target) Freeze() {}

// Truth always returns true since a target can't be nil or None
func (t *Target) Truth() starlark.Bool {
	return starlark.True
}

// Hash always returns an error since targets are not hashable
func (t *Target) Hash() (uint32, error) {
	return 0, eris.New("target is not a hashable type")
}

// Path is a project path value exposed to the targets file.
type Path string

func (p Path) String() string {
	return starlark.String(p).String()
}

func (p Path) Type() string {
	return "path"
}

func (p Path) Freeze() {}

func (p Path) Truth() starlark.Bool {
	return p != ""
}

func (p Path) Hash() (uint32, error) {
	return starlark.String(p).Hash()
}

func (p Path) CompareSameType(op starsyntax.Token, y_ starlark.Value, depth int) (bool, error) {
	y := y_.(Path)

	switch op {
	case starsyntax.EQL:
		return p == y, nil
	case starsyntax.NEQ:
		return p != y, nil
	case starsyntax.LT:
		return p < y, nil
	case starsyntax.LE:
		return p <= y, nil
	case starsyntax.GT:
		return p > y, nil
	case starsyntax.GE:
		return p >= y, nil
	}

	return false, eris.Errorf("unknown operator %v", op)
}

func (p Path) Index(i int) starlark.Value {
	return starlark.String(p[i])
}

func (p Path) Len() int {
	return len(p)
}

func (p Path) Slice(start, end, step int) starlark.Value {
	return starlark.String(p).Slice(start, end, step)
}
