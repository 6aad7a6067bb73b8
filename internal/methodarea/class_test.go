package methodarea

import "testing"

func newTestClass(name string, super *Class, ifaces ...*Class) *Class {
	return &Class{
		Name:         name,
		Super:        super,
		Interfaces:   ifaces,
		fieldsByName: make(map[string]*Field),
		methods:      make(map[string]*Method),
		status:       StatusLoaded,
	}
}

func TestIsSubclassOf(t *testing.T) {
	object := newTestClass("java/lang/Object", nil)
	animal := newTestClass("demo/Animal", object)
	dog := newTestClass("demo/Dog", animal)

	if !dog.IsSubclassOf(animal) {
		t.Error("Dog should be a subclass of Animal")
	}
	if !dog.IsSubclassOf(object) {
		t.Error("Dog should be a subclass of Object (transitively)")
	}
	if !dog.IsSubclassOf(dog) {
		t.Error("a class is a subclass of itself")
	}
	if animal.IsSubclassOf(dog) {
		t.Error("Animal should not be a subclass of Dog")
	}
}

func TestImplementsTransitively(t *testing.T) {
	comparable := newTestClass("java/lang/Comparable", nil)
	serializable := newTestClass("java/io/Serializable", nil, comparable)
	object := newTestClass("java/lang/Object", nil)
	base := newTestClass("demo/Base", object, serializable)
	derived := newTestClass("demo/Derived", base)

	if !derived.Implements(serializable) {
		t.Error("Derived should implement Serializable via its superclass")
	}
	if !derived.Implements(comparable) {
		t.Error("Derived should implement Comparable transitively via Serializable's own interfaces")
	}
}

func TestIsInstanceOfCoversBothAxes(t *testing.T) {
	object := newTestClass("java/lang/Object", nil)
	runnable := newTestClass("java/lang/Runnable", nil)
	task := newTestClass("demo/Task", object, runnable)

	if !task.IsInstanceOf(object) {
		t.Error("Task should be an instance of Object (superclass axis)")
	}
	if !task.IsInstanceOf(runnable) {
		t.Error("Task should be an instance of Runnable (interface axis)")
	}
	unrelated := newTestClass("demo/Unrelated", object)
	if task.IsInstanceOf(unrelated) {
		t.Error("Task should not be an instance of an unrelated class")
	}
}

func TestFieldsPreserveDeclarationOrder(t *testing.T) {
	c := newTestClass("demo/Point", nil)
	c.fieldOrder = []string{"x", "y", "z"}
	c.fieldsByName["x"] = &Field{Name: "x", Descriptor: "I", Offset: 1}
	c.fieldsByName["y"] = &Field{Name: "y", Descriptor: "I", Offset: 2}
	c.fieldsByName["z"] = &Field{Name: "z", Descriptor: "I", Offset: 3}

	fields := c.Fields()
	if len(fields) != 3 {
		t.Fatalf("Fields() returned %d entries, want 3", len(fields))
	}
	for i, name := range []string{"x", "y", "z"} {
		if fields[i].Name != name {
			t.Errorf("Fields()[%d].Name = %q, want %q", i, fields[i].Name, name)
		}
	}
}

func TestExactMethodDoesNotSearchSuper(t *testing.T) {
	super := newTestClass("demo/Base", nil)
	super.methods[methodKey("greet", "()V")] = &Method{Name: "greet", Descriptor: "()V"}
	c := newTestClass("demo/Derived", super)

	if _, ok := c.ExactMethod("greet", "()V"); ok {
		t.Error("ExactMethod found an inherited method, want self-only lookup")
	}
	if _, ok := super.ExactMethod("greet", "()V"); !ok {
		t.Error("ExactMethod should find a method declared directly on the class")
	}
}
