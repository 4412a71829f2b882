package render

import (
	"fmt"
	"io"
	"strings"
)

// Print writes card as text. Collapsed blocks show only their title line.
func Print(w io.Writer, card *Card) {
	if card == nil {
		return
	}
	fmt.Fprintf(w, "== %s ==\n", card.Header)
	if card.RunID != nil {
		fmt.Fprintf(w, "run_id: %s   [result copy] [result replay]\n", card.RunID.RunID)
	}
	for _, b := range card.Blocks {
		if !b.Expanded {
			fmt.Fprintf(w, "[+] %s\n", b.Title)
			continue
		}
		fmt.Fprintf(w, "[-] %s\n", b.Title)
		fmt.Fprintln(w, b.Body)
	}
	if card.Error != "" {
		fmt.Fprintln(w, "error:")
		fmt.Fprintln(w, strings.TrimRight(card.Error, "\n"))
	}
}
