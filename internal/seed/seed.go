// Package seed provides the first-run data installed into empty carta
// namespaces: the built-in demo menu, or a CUE seed file validated against
// an embedded schema.
package seed

import (
	"github.com/roach88/carta/internal/menu"
)

// Data is a complete seed dataset. It implements menu.Seeds.
type Data struct {
	Categories []string                                `json:"categories"`
	Items      []menu.MenuItem                         `json:"menuItems"`
	Options    map[menu.PartySize][]menu.SharingOption `json:"groupOptions"`
}

var _ menu.Seeds = (*Data)(nil)

// MenuItems implements menu.Seeds.
func (d *Data) MenuItems() []menu.MenuItem { return d.Items }

// CategoryNames implements menu.Seeds.
func (d *Data) CategoryNames() []string { return d.Categories }

// GroupOptions implements menu.Seeds.
func (d *Data) GroupOptions() map[menu.PartySize][]menu.SharingOption { return d.Options }

// Empty returns a dataset with nothing in it, for namespaces that should
// start blank.
func Empty() *Data {
	return &Data{}
}
