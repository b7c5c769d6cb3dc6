package term

// Local is one entry of a binding context.
type Local struct {
	Term ID // the KindLocal node standing for the variable
	Name string
	Type ID
}

// Context is the ordered list of locals bound around the term being checked.
// It belongs to a single check call and is not safe for concurrent use.
type Context struct {
	locals []Local
	index  map[ID]int
}

func NewContext() *Context {
	return &Context{index: make(map[ID]int)}
}

// Push binds a fresh local of type ty and returns it.
func (c *Context) Push(a *Arena, name string, ty ID) ID {
	l := a.FreshLocal()
	c.index[l] = len(c.locals)
	c.locals = append(c.locals, Local{Term: l, Name: name, Type: ty})
	return l
}

// Len returns the number of bound locals.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.locals)
}

// Truncate drops every local bound after the first n.
func (c *Context) Truncate(n int) {
	if n >= len(c.locals) {
		return
	}
	for _, l := range c.locals[n:] {
		delete(c.index, l.Term)
	}
	c.locals = c.locals[:n]
}

// Lookup finds the entry for a KindLocal term.
func (c *Context) Lookup(l ID) (Local, bool) {
	if c == nil {
		return Local{}, false
	}
	i, ok := c.index[l]
	if !ok {
		return Local{}, false
	}
	return c.locals[i], true
}

// Locals returns the bound locals, outermost first. Do not modify.
func (c *Context) Locals() []Local {
	if c == nil {
		return nil
	}
	return c.locals
}

// Terms returns the local terms of entries [from, Len()).
func (c *Context) Terms(from int) []ID {
	out := make([]ID, 0, len(c.locals)-from)
	for _, l := range c.locals[from:] {
		out = append(out, l.Term)
	}
	return out
}
