package salvage

// Confirmer is asked before an existing file is overwritten without force.
type Confirmer interface {
	ConfirmOverwrite(path string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(path string) bool

func (f ConfirmFunc) ConfirmOverwrite(path string) bool { return f(path) }

// AlwaysConfirm approves every overwrite.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// NeverConfirm declines every overwrite.
var NeverConfirm Confirmer = ConfirmFunc(func(string) bool { return false })
