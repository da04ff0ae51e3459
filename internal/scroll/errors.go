package scroll

import "errors"

var (
	// ErrNoInnerPanel indicates an update arrived while no inner panel is bound.
	ErrNoInnerPanel = errors.New("scroll: no inner panel bound")

	// ErrZeroTranslation indicates a release with no net translation, so no direction for momentum.
	ErrZeroTranslation = errors.New("scroll: zero translation at release")

	// ErrNotResizable indicates the outer panel has no Resize method.
	ErrNotResizable = errors.New("scroll: outer panel cannot be resized")
)
