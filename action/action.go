package action

import "fmt"

// Action is a reversible unit of document mutation. Perform must be safe
// to call again after a prior Undo (redo), re-deriving its effect rather
// than replaying a cached one, since intervening state may have shifted
// slot numbers or connection sets.
type Action interface {
	Perform() error
	Undo() error
}

// Transaction accumulates the undo closures recorded by a single
// Perform call of a Primitive. It implements document.Recorder so
// document mutators can call tx.Record(undo) without the document
// package importing action.
type Transaction struct {
	undos []func()
}

func (tx *Transaction) Record(undo func()) {
	tx.undos = append(tx.undos, undo)
}

// Rollback runs recorded undos in reverse order, as if Perform never
// happened.
func (tx *Transaction) Rollback() {
	for i := len(tx.undos) - 1; i >= 0; i-- {
		tx.undos[i]()
	}
	tx.undos = nil
}

// Primitive wraps a single document-mutating closure. do is invoked
// fresh on every Perform, recording its own undo; Undo just rolls back
// the transaction produced by the most recent Perform.
type Primitive struct {
	name string
	do   func(tx *Transaction) error
	tx   *Transaction
}

func NewPrimitive(name string, do func(tx *Transaction) error) *Primitive {
	return &Primitive{name: name, do: do}
}

func (p *Primitive) Perform() error {
	tx := &Transaction{}
	if err := p.do(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("action: %s: %w", p.name, err)
	}
	p.tx = tx
	return nil
}

func (p *Primitive) Undo() error {
	if p.tx == nil {
		return fmt.Errorf("action: %s: undo without a prior perform", p.name)
	}
	p.tx.Rollback()
	p.tx = nil
	return nil
}

// Composite performs an ordered list of child actions, rolling back
// whatever already succeeded if a later child fails. Undo runs children
// in reverse order, mirroring how a stack of nested edits unwinds.
type Composite struct {
	Name     string
	Children []Action
}

func NewComposite(name string, children ...Action) *Composite {
	return &Composite{Name: name, Children: children}
}

func (c *Composite) Perform() error {
	done := make([]Action, 0, len(c.Children))
	for _, child := range c.Children {
		if err := child.Perform(); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				done[i].Undo()
			}
			return fmt.Errorf("action: %s: %w", c.Name, err)
		}
		done = append(done, child)
	}
	return nil
}

func (c *Composite) Undo() error {
	for i := len(c.Children) - 1; i >= 0; i-- {
		if err := c.Children[i].Undo(); err != nil {
			return fmt.Errorf("action: %s: undo: %w", c.Name, err)
		}
	}
	return nil
}

// UndoManager owns the linear commit history: Do performs and pushes an
// action, Undo pops and reverses the most recent one, Redo re-performs
// the most recently undone one. Performing a new action after an undo
// discards the redo tail, matching ordinary editor undo stacks.
type UndoManager struct {
	history []Action
	cursor  int // number of entries in history that are currently "performed"
}

func NewUndoManager() *UndoManager {
	return &UndoManager{}
}

func (m *UndoManager) Do(a Action) error {
	if err := a.Perform(); err != nil {
		return err
	}
	m.history = m.history[:m.cursor]
	m.history = append(m.history, a)
	m.cursor++
	return nil
}

func (m *UndoManager) CanUndo() bool { return m.cursor > 0 }
func (m *UndoManager) CanRedo() bool { return m.cursor < len(m.history) }

func (m *UndoManager) Undo() error {
	if !m.CanUndo() {
		return fmt.Errorf("action: nothing to undo")
	}
	a := m.history[m.cursor-1]
	if err := a.Undo(); err != nil {
		return err
	}
	m.cursor--
	return nil
}

func (m *UndoManager) Redo() error {
	if !m.CanRedo() {
		return fmt.Errorf("action: nothing to redo")
	}
	a := m.history[m.cursor]
	if err := a.Perform(); err != nil {
		return err
	}
	m.cursor++
	return nil
}
