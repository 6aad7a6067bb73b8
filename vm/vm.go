// Package vm implements the VM façade (spec C12): the single
// entry point that binds the class path, method area, heap, static
// area, native registry, and interpreter into one object and exposes
// the handful of operations a host program (the CLI, or a future
// embedder) needs — add a class path entry, resolve and run a main
// class, and the object/array/string/class-mirror factories.
package vm

import (
	"os"
	"strings"

	"github.com/z-yn/litejvm/internal/classpath"
	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/interp"
	"github.com/z-yn/litejvm/internal/methodarea"
	"github.com/z-yn/litejvm/internal/natives"
	"github.com/z-yn/litejvm/internal/statics"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

const (
	defaultHeapSize   = 64 * 1024 * 1024
	defaultCallDepth  = 1024
)

// VM is the single owner of every subsystem, matching Jacobin's
// classloader/Init()-and-friends wiring: one method area, one heap,
// one static area, one native registry, one interpreter.
type VM struct {
	ClassPath *classpath.ClassPath
	MA        *methodarea.MethodArea
	Heap      *heap.Heap
	Statics   *statics.Table
	Natives   *natives.Registry
	Interp    *interp.Interp
}

// Option configures a VM at construction time.
type Option func(*config)

type config struct {
	heapSize  int
	callDepth int
}

// WithHeapSize overrides the default 64MiB heap arena size.
func WithHeapSize(bytes int) Option {
	return func(c *config) { c.heapSize = bytes }
}

// WithCallStackDepth overrides the default 1024-frame call stack cap.
func WithCallStackDepth(depth int) Option {
	return func(c *config) { c.callDepth = depth }
}

// New wires a fresh VM: empty class path, empty heap, empty method
// area and static area, and a native registry pre-loaded with the
// built-in java.lang natives.
func New(opts ...Option) *VM {
	cfg := config{heapSize: defaultHeapSize, callDepth: defaultCallDepth}
	for _, o := range opts {
		o(&cfg)
	}

	cp := classpath.New()
	h := heap.New(cfg.heapSize)
	st := statics.New()
	nat := natives.New()
	ma := methodarea.New(cp, st, h)
	it := interp.New(ma, h, st, nat, cfg.callDepth)

	return &VM{
		ClassPath: cp,
		MA:        ma,
		Heap:      h,
		Statics:   st,
		Natives:   nat,
		Interp:    it,
	}
}

// AddClassPath registers one class path entry: a directory of loose
// .class files, or a .jar/.zip archive, detected by stat'ing path.
func (v *VM) AddClassPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		v.ClassPath.Add(classpath.NewDirProvider(path))
		return nil
	}
	archive, err := classpath.NewArchiveProvider(path)
	if err != nil {
		return err
	}
	v.ClassPath.Add(archive)
	return nil
}

// LookupClassAndInitialize loads, links, and initializes name (and its
// superclass chain) if not already done, per C12.
func (v *VM) LookupClassAndInitialize(name string) (*methodarea.Class, error) {
	return v.MA.LookupClassAndInitialize(name)
}

// InvokeMethod runs one method to completion, per C12.
func (v *VM) InvokeMethod(owner *methodarea.Class, m *methodarea.Method, receiver *types.Value, args []types.Value) (*types.Value, error) {
	return v.Interp.InvokeMethod(owner, m, receiver, args)
}

// NewObject allocates a zero-initialized instance of class, per C12.
func (v *VM) NewObject(class *methodarea.Class) (types.Value, error) {
	return v.Interp.NewObject(class)
}

// NewArray allocates a primitive array from a newarray atype tag, per
// C12.
func (v *VM) NewArray(atype uint8, length int) (types.Value, error) {
	return v.Interp.NewArray(atype, length)
}

// NewString interns a Go string as a UTF-16 char[] array reference,
// per C12/spec section 7 (S6).
func (v *VM) NewString(s string) (types.Value, error) {
	return v.Interp.InternString(s)
}

// NewClassMirror interns a java/lang/Class instance for className, per
// C12.
func (v *VM) NewClassMirror(className string) (types.Value, error) {
	return v.Interp.ClassMirror(className)
}

// GetStatic reads a static field, per C12.
func (v *VM) GetStatic(className, fieldName string) (types.Value, error) {
	return v.Interp.GetStatic(className, fieldName)
}

// SetStatic writes a static field, per C12.
func (v *VM) SetStatic(className, fieldName string, val types.Value) error {
	return v.Interp.SetStatic(className, fieldName, val)
}

// Run resolves mainClass's `public static void main(String[])` and
// invokes it with args materialized as an array of interned strings —
// the supplemented end-to-end entry point a CLI needs, which spec.md's
// component table leaves implicit in "public operations" but the
// original lite_jvm driver (original_source/lite_jvm/src/main.rs) spells
// out explicitly as its own run loop.
func (v *VM) Run(mainClassName string, args []string) error {
	mainClassName = strings.TrimSuffix(strings.ReplaceAll(mainClassName, ".", "/"), ".class")

	class, err := v.LookupClassAndInitialize(mainClassName)
	if err != nil {
		return err
	}
	method, owner, err := v.MA.ResolveMethod(class, "main", "([Ljava/lang/String;)V")
	if err != nil {
		return vmerrors.New(vmerrors.MethodNotFound, "no main([Ljava/lang/String;)V in %s", mainClassName)
	}
	if !method.IsStatic() {
		return vmerrors.New(vmerrors.MethodNotFound, "%s.main is not static", mainClassName)
	}

	argv, err := v.NewObjectArray(len(args))
	if err != nil {
		return err
	}
	for i, a := range args {
		s, err := v.NewString(a)
		if err != nil {
			return err
		}
		if err := v.Heap.SetElement(argv.Ref, i, s); err != nil {
			return err
		}
	}

	_, err = v.InvokeMethod(owner, method, nil, []types.Value{argv})
	return err
}

// NewObjectArray allocates a reference-element array (anewarray /
// argv construction), per C12.
func (v *VM) NewObjectArray(length int) (types.Value, error) {
	return v.Interp.NewObjectArray(length)
}
