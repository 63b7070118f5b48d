package binding

// A Context collects named top-level Bindings.
//
// A Context enforces name uniqueness among its members, rebroadcasts
// their notifications to ContextListeners, remembers which member's
// target was edited most recently, and supplies the shared Evaluator
// and converter Registry that members fall back to when they have
// none of their own.
//
// Child bindings never join a Context; their parent mediates.
type Context struct {
	bindings   []*Binding
	byName     map[string]*Binding
	listeners  []ContextListener
	evaluator  Evaluator
	converters *Registry
	lastEdited *Binding
}

func NewContext() *Context {
	return &Context{
		byName: make(map[string]*Binding),
	}
}

// SetEvaluator installs the shared expression Evaluator.  Members
// pick it up when they bind.
func (c *Context) SetEvaluator(e Evaluator) {
	c.evaluator = e
}

func (c *Context) Evaluator() Evaluator {
	return c.evaluator
}

// SetConverters installs the shared converter Registry.  Members
// without their own Registry consult it, and fall back to the
// package default when this is nil too.
func (c *Context) SetConverters(r *Registry) {
	c.converters = r
}

func (c *Context) Converters() *Registry {
	return c.converters
}

// Add makes b a member.  b must be unbound, nameless or uniquely
// named here, and not owned by a parent or another Context.
func (c *Context) Add(b *Binding) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	if b.parent != nil || b.context != nil {
		return &HasParent{b}
	}
	if b.name != "" {
		if _, taken := c.byName[b.name]; taken {
			return &DuplicateName{Name: b.name}
		}
		c.byName[b.name] = b
	}
	c.bindings = append(c.bindings, b)
	b.context = c
	return nil
}

// Remove takes an unbound member out of the Context.
func (c *Context) Remove(b *Binding) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	if b.context != c {
		return &NotAChild{b}
	}
	for i, have := range c.bindings {
		if have == b {
			c.bindings = append(c.bindings[:i:i], c.bindings[i+1:]...)
			break
		}
	}
	if b.name != "" {
		delete(c.byName, b.name)
	}
	if c.lastEdited == b {
		c.lastEdited = nil
	}
	b.context = nil
	return nil
}

// Binding returns the member with the given name, or nil.
func (c *Context) Binding(name string) *Binding {
	if name == "" {
		return nil
	}
	return c.byName[name]
}

// Bindings returns the members in the order they were added.
func (c *Context) Bindings() []*Binding {
	return append([]*Binding{}, c.bindings...)
}

// Bind binds every member that isn't bound yet, in order.  The first
// failure stops the pass and is returned.
func (c *Context) Bind() error {
	for _, b := range append([]*Binding{}, c.bindings...) {
		if b.bound {
			continue
		}
		if err := b.Bind(); err != nil {
			return err
		}
	}
	return nil
}

// Unbind unbinds every bound member.
func (c *Context) Unbind() error {
	for _, b := range append([]*Binding{}, c.bindings...) {
		if !b.bound {
			continue
		}
		if err := b.Unbind(); err != nil {
			return err
		}
	}
	return nil
}

// LastEdited returns the member whose target most recently diverged
// from its source, or nil.
func (c *Context) LastEdited() *Binding {
	return c.lastEdited
}

func (c *Context) Subscribe(l ContextListener) {
	for _, have := range c.listeners {
		if have == l {
			return
		}
	}
	c.listeners = append(c.listeners, l)
}

func (c *Context) Unsubscribe(l ContextListener) {
	for i, have := range c.listeners {
		if have == l {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Member bindings call the hooks below.

func (c *Context) becameBound(b *Binding) {
	if c.lastEdited == b {
		c.lastEdited = nil
	}
}

func (c *Context) becameUnbound(b *Binding) {
	if c.lastEdited == b {
		c.lastEdited = nil
	}
}

func (c *Context) stateChanged(b *Binding) {
	for _, l := range append([]ContextListener{}, c.listeners...) {
		l.BindingStateChanged(b)
	}
}

func (c *Context) targetEdited(b *Binding) {
	c.lastEdited = b
	for _, l := range append([]ContextListener{}, c.listeners...) {
		l.TargetEdited(b)
	}
}

func (c *Context) conversionFailed(b *Binding, err error) {
	for _, l := range append([]ContextListener{}, c.listeners...) {
		l.ConversionFailed(b, err)
	}
}

func (c *Context) validationFailed(b *Binding, r *ValidationResult) {
	for _, l := range append([]ContextListener{}, c.listeners...) {
		l.ValidationFailed(b, r)
	}
}
