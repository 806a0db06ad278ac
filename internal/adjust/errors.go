package adjust

import "errors"

// ErrIncompleteItem is returned by Commit when the selected item is
// missing one of the four core macros.
var ErrIncompleteItem = errors.New("adjust: item missing core macros")
