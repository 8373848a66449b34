package extract

import "errors"

var (
	// ErrBindingUnusable means the binding's enumerator could not be read and
	// the binding should be discarded.
	ErrBindingUnusable   = errors.New("binding unusable")
	ErrItemFault         = errors.New("item accessor failed")
	ErrEnumeratorFault   = errors.New("enumerator failed")
	ErrNonFiniteQuantity = errors.New("quantity is not a finite number")
)
