package console

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

func itoa(n int) string { return strconv.Itoa(n) }

// WriteProducts imprime la tabla de productos.
func WriteProducts(w io.Writer, c *Console) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tNOMBRE\tSTOCK")
	for _, p := range c.Products() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.SKU, p.Name, p.Stock)
	}
	return tw.Flush()
}

// WriteMovements imprime la tabla de movimientos recientes.
func WriteMovements(w io.Writer, c *Console) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FECHA\tSKU\tDELTA\tMOTIVO\tNOTA")
	for _, m := range c.Movements() {
		note := ""
		if m.Note != nil {
			note = *m.Note
		}
		fmt.Fprintf(tw, "%s\t%s\t%+d\t%s\t%s\n", m.CreatedAt.Local().Format("02/01 15:04:05"), m.SKU, m.Delta, m.Reason, note)
	}
	return tw.Flush()
}
