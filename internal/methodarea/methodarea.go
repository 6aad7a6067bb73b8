// Package methodarea implements the method area and loading pipeline
// (spec C6): a registry of loaded classes, a three-phase load → link →
// initialize state machine with cycle-safe status tracking, field
// layout assignment, and method resolution (exact and virtual/
// interface chain search).
package methodarea

import (
	"strings"
	"sync"

	"github.com/z-yn/litejvm/internal/classfile"
	"github.com/z-yn/litejvm/internal/classpath"
	"github.com/z-yn/litejvm/internal/statics"
	"github.com/z-yn/litejvm/internal/trace"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

const ObjectClassName = types.ObjectClassName

// ClinitInvoker runs a loaded class's <clinit>. It is implemented by
// internal/interp and wired in after construction via SetInvoker,
// rather than imported directly, so that internal/interp (which
// depends on methodarea) and methodarea do not form an import cycle.
type ClinitInvoker interface {
	InvokeClinit(class *Class, method *Method) error
}

// ClassRegistrar assigns a class its heap class ID at load time. It is
// implemented by internal/heap.Heap; methodarea depends only on this
// one-method interface so it never has to import internal/heap.
type ClassRegistrar interface {
	RegisterClass(layout interface {
		ClassName() string
		TotalInstanceFields() int
	}) uint32
}

// MethodArea owns the lifetime of every loaded class.
type MethodArea struct {
	mu      sync.RWMutex
	classes map[string]*Class

	classPath *classpath.ClassPath
	statics   *statics.Table
	registrar ClassRegistrar
	invoker   ClinitInvoker
}

// New returns an empty method area backed by cp for class bytes, st
// for static-field storage, and reg for assigning heap class IDs to
// newly loaded classes.
func New(cp *classpath.ClassPath, st *statics.Table, reg ClassRegistrar) *MethodArea {
	return &MethodArea{
		classes:   make(map[string]*Class),
		classPath: cp,
		statics:   st,
		registrar: reg,
	}
}

// SetInvoker wires the component that can run <clinit> methods through
// the interpreter. Must be called before the first Initialize.
func (ma *MethodArea) SetInvoker(inv ClinitInvoker) { ma.invoker = inv }

// Lookup returns an already-registered class without triggering a
// load, or false if no class of that name has been seen yet.
func (ma *MethodArea) Lookup(name string) (*Class, bool) {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	c, ok := ma.classes[name]
	return c, ok
}

// Load implements the Load phase of section 4.6. If name is already
// registered — at any status, including mid-load — the existing
// stable reference is returned immediately; this is what makes
// self-referential super/interface graphs safe (spec section 9).
func (ma *MethodArea) Load(name string) (*Class, error) {
	ma.mu.Lock()
	if c, ok := ma.classes[name]; ok {
		ma.mu.Unlock()
		return c, nil
	}
	c := &Class{Name: name, status: StatusLoading, fieldsByName: make(map[string]*Field)}
	ma.classes[name] = c
	ma.mu.Unlock()

	if isArrayClassName(name) {
		return ma.loadArrayClass(c, name)
	}
	return ma.loadOrdinaryClass(c, name)
}

func (ma *MethodArea) loadArrayClass(c *Class, name string) (*Class, error) {
	object, err := ma.Load(ObjectClassName)
	if err != nil {
		return nil, err
	}
	c.Super = object
	c.methods = make(map[string]*Method)
	c.totalInstanceFields = object.totalInstanceFields
	c.status = StatusLoaded
	if ma.registrar != nil {
		c.HeapClassID = ma.registrar.RegisterClass(c)
	}
	trace.Fine("methodarea: array class " + name + " canonicalized to " + ObjectClassName + "'s method table")
	return c, nil
}

func (ma *MethodArea) loadOrdinaryClass(c *Class, name string) (*Class, error) {
	data, ok, err := ma.classPath.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, vmerrors.New(vmerrors.ClassNotFound, "%s", name)
	}
	raw, err := classfile.Decode(data)
	if err != nil {
		return nil, err
	}
	pool, err := classfile.BuildRuntimeConstantPool(raw.ConstantPool)
	if err != nil {
		return nil, err
	}

	var super *Class
	if raw.SuperClass != "" {
		super, err = ma.Load(raw.SuperClass)
		if err != nil {
			return nil, err
		}
	}

	interfaces := make([]*Class, 0, len(raw.Interfaces))
	for _, iname := range raw.Interfaces {
		ic, err := ma.Load(iname)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, ic)
	}

	totalInstanceFields := 0
	if super != nil {
		totalInstanceFields = super.totalInstanceFields
	}

	fieldOrder := make([]string, 0, len(raw.Fields))
	fieldsByName := make(map[string]*Field, len(raw.Fields))
	for _, rf := range raw.Fields {
		fname, err := pool.GetUtf8(int(rf.NameIndex))
		if err != nil {
			return nil, err
		}
		fdesc, err := pool.GetUtf8(int(rf.DescIndex))
		if err != nil {
			return nil, err
		}
		f := &Field{AccessFlags: rf.AccessFlags, Name: fname, Descriptor: fdesc}
		if f.IsStatic() {
			f.Offset = 0
		} else {
			totalInstanceFields++
			f.Offset = totalInstanceFields
		}
		if cv, ok, err := constantValueOf(rf, pool); err != nil {
			return nil, err
		} else if ok {
			f.ConstantValue = cv
		}
		fieldOrder = append(fieldOrder, fname)
		fieldsByName[fname] = f
	}

	methods := make(map[string]*Method, len(raw.Methods))
	for _, rm := range raw.Methods {
		mname, err := pool.GetUtf8(int(rm.NameIndex))
		if err != nil {
			return nil, err
		}
		mdesc, err := pool.GetUtf8(int(rm.DescIndex))
		if err != nil {
			return nil, err
		}
		parsed, err := types.ParseMethodDescriptor(mdesc)
		if err != nil {
			return nil, err
		}
		m := &Method{AccessFlags: rm.AccessFlags, Name: mname, Descriptor: mdesc, Parsed: parsed}
		for _, a := range rm.Attributes {
			aname, err := pool.GetUtf8(int(a.NameIndex))
			if err != nil {
				return nil, err
			}
			switch aname {
			case "Code":
				code, err := classfile.ResolveCode(a.Info, pool)
				if err != nil {
					return nil, err
				}
				m.Code = code
			case "Exceptions":
				excs, err := classfile.ResolveExceptions(a.Info, pool)
				if err != nil {
					return nil, err
				}
				m.Exceptions = excs
			}
		}
		methods[methodKey(mname, mdesc)] = m
	}

	sourceFile := ""
	for _, a := range raw.Attributes {
		aname, err := pool.GetUtf8(int(a.NameIndex))
		if err != nil {
			return nil, err
		}
		if aname == "SourceFile" {
			r := classfile.NewReader(a.Info)
			idx, err := r.U2()
			if err != nil {
				return nil, err
			}
			sourceFile, err = pool.GetUtf8(int(idx))
			if err != nil {
				return nil, err
			}
		}
	}

	c.MajorVersion = int(raw.MajorVersion)
	c.AccessFlags = raw.AccessFlags
	c.Pool = pool
	c.Super = super
	c.Interfaces = interfaces
	c.fieldOrder = fieldOrder
	c.fieldsByName = fieldsByName
	c.methods = methods
	c.SourceFile = sourceFile
	c.totalInstanceFields = totalInstanceFields
	c.status = StatusLoaded
	if ma.registrar != nil {
		c.HeapClassID = ma.registrar.RegisterClass(c)
	}

	trace.Fine("methodarea: loaded " + name)
	return c, nil
}

func constantValueOf(rf classfile.RawField, pool *classfile.RuntimeConstantPool) (any, bool, error) {
	for _, a := range rf.Attributes {
		aname, err := pool.GetUtf8(int(a.NameIndex))
		if err != nil {
			return nil, false, err
		}
		if aname == "ConstantValue" {
			v, err := classfile.ResolveConstantValue(a.Info, pool)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
	}
	return nil, false, nil
}

func isArrayClassName(name string) bool { return strings.HasPrefix(name, "[") }

// Link implements the Link phase of section 4.6.
func (ma *MethodArea) Link(c *Class) error {
	if c.status >= StatusLinked {
		return nil
	}
	c.status = StatusLinking

	descs := make(map[string]string)
	for _, f := range c.Fields() {
		if f.IsStatic() {
			descs[f.Name] = f.Descriptor
		}
	}
	ma.statics.DefineClass(c.Name, descs)

	for _, f := range c.Fields() {
		if !f.IsStatic() {
			continue
		}
		v := types.ZeroFor(f.Descriptor)
		if f.ConstantValue != nil {
			v = valueFromConstant(f.Descriptor, f.ConstantValue)
		}
		if err := ma.statics.Set(c.Name, f.Name, v); err != nil {
			return err
		}
	}

	c.status = StatusLinked
	trace.Fine("methodarea: linked " + c.Name)
	return nil
}

func valueFromConstant(descriptor string, cv any) types.Value {
	switch descriptor[0] {
	case 'J':
		return types.Long(cv.(int64))
	case 'F':
		return types.Float(cv.(float32))
	case 'D':
		return types.Double(cv.(float64))
	case 'L':
		// only java/lang/String constants are legal ConstantValue
		// references. They are not materialized: the method area has
		// no access to the string intern table, so the slot is set to
		// Null and nothing later replaces it with the string.
		return types.Null()
	default:
		return types.Int(cv.(int32))
	}
}

// Initialize implements the Initialize phase of section 4.6: runs
// <clinit> at most once, short-circuiting re-entrant requests (cycles
// among static initializers) by returning as soon as Initializing is
// observed.
func (ma *MethodArea) Initialize(c *Class) error {
	if c.status == StatusInitialized || c.status == StatusInitializing {
		return nil
	}
	if err := ma.Link(c); err != nil {
		return err
	}
	c.status = StatusInitializing

	if c.Super != nil {
		if err := ma.Initialize(c.Super); err != nil {
			return err
		}
	}

	if m, ok := c.ExactMethod("<clinit>", "()V"); ok {
		if ma.invoker == nil {
			return vmerrors.New(vmerrors.InternalError, "methodarea: no ClinitInvoker wired")
		}
		if err := ma.invoker.InvokeClinit(c, m); err != nil {
			return err
		}
	}

	c.status = StatusInitialized
	trace.Fine("methodarea: initialized " + c.Name)
	return nil
}

// LookupClassAndInitialize runs the full load → link → initialize
// pipeline and returns the resulting class, per C12's façade
// operation of the same name.
func (ma *MethodArea) LookupClassAndInitialize(name string) (*Class, error) {
	c, err := ma.Load(name)
	if err != nil {
		return nil, err
	}
	if err := ma.Initialize(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ResolveMethod implements get_method_by_checking_super: search self,
// then the super chain, then interfaces in declaration order.
func (ma *MethodArea) ResolveMethod(c *Class, name, descriptor string) (*Method, *Class, error) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.ExactMethod(name, descriptor); ok {
			return m, cur, nil
		}
	}
	if m, owner, ok := searchInterfaces(c, name, descriptor); ok {
		return m, owner, nil
	}
	return nil, nil, vmerrors.New(vmerrors.MethodNotFound, "%s %s", name, descriptor)
}

func searchInterfaces(c *Class, name, descriptor string) (*Method, *Class, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		for _, iface := range cur.Interfaces {
			if m, ok := iface.ExactMethod(name, descriptor); ok {
				return m, iface, true
			}
			if m, owner, ok := searchInterfaces(iface, name, descriptor); ok {
				return m, owner, true
			}
		}
	}
	return nil, nil, false
}

// ResolveField searches self then the super chain for a declared
// field (JVM field resolution's class/superclass sequence).
func (ma *MethodArea) ResolveField(c *Class, name string) (*Field, *Class, error) {
	for cur := c; cur != nil; cur = cur.Super {
		if f, ok := cur.FieldByName(name); ok {
			return f, cur, nil
		}
	}
	return nil, nil, vmerrors.New(vmerrors.FieldNotFound, "%s", name)
}
