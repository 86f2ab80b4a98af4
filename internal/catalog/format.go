package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/roach88/carta/internal/menu"
)

// FormatPrice renders a price in euros with two decimals, e.g. "16.50 €".
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f €", price)
}

// ShareURL builds a WhatsApp link whose prefilled message names the dish,
// its category title and price, followed by the description when present.
func ShareURL(item menu.MenuItem, categoryTitle string) string {
	lines := []string{
		"🍽 *" + item.Name + "*",
		categoryTitle + " · " + FormatPrice(item.Price),
	}
	if desc := strings.TrimSpace(item.Description); desc != "" {
		lines = append(lines, "", desc)
	}
	text := url.QueryEscape(strings.Join(lines, "\n"))
	return "https://wa.me/?text=" + strings.ReplaceAll(text, "+", "%20")
}
