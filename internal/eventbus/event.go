package eventbus

import "time"

// Kind identifies what happened.
type Kind string

const (
	// AssetChanged is published when a watched source file was created or written.
	AssetChanged Kind = "asset.changed"
	// AssetRemoved is published when a watched source file was removed or renamed away.
	AssetRemoved Kind = "asset.removed"
	// AssetCopied is published after a changed asset reached the output directory.
	AssetCopied Kind = "asset.copied"
	// StyleRebuilt is published after the style pipeline wrote a new stylesheet.
	StyleRebuilt Kind = "style.rebuilt"
)

// Event is a build event.
type Event struct {
	Kind      Kind      `json:"kind"`
	Path      string    `json:"path"`
	Dest      string    `json:"dest,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener handles an event.
type Listener func(Event)
