package mapper

import (
	"github.com/fsnotify/fsnotify"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// NotifyEventToFileEvent maps an fsnotify event to its LSP equivalent.
// Rename is reported as a deletion: the new path produces its own Create
// event when it lands inside the watched tree. Events that carry no relevant
// operation (e.g. chmod) return false.
func NotifyEventToFileEvent(event fsnotify.Event) (*protocol.FileEvent, bool) {
	var changeType protocol.FileChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = protocol.FileChangeTypeCreated
	case event.Has(fsnotify.Write):
		changeType = protocol.FileChangeTypeChanged
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changeType = protocol.FileChangeTypeDeleted
	default:
		return nil, false
	}

	return &protocol.FileEvent{
		URI:  uri.File(event.Name),
		Type: changeType,
	}, true
}
